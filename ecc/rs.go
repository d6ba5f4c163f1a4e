// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package ecc implements a systematic Reed-Solomon block code over 8-bit
// symbols: each data block gets a separate parity segment allowing a bounded
// number of corrupted symbols to be detected and corrected.
package ecc

import (
	"errors"
	"fmt"

	"github.com/vivint/infectious"
)

// Default code geometry: 128-byte blocks with 16 parity bytes, correcting up
// to 8 corrupted symbols per block.
const (
	DefaultBlockSize  = 128
	DefaultParitySize = 16
)

// ErrUncorrectable is returned by Decode when a block has more corrupted
// symbols than the code can correct; the block content is left as-is.
var ErrUncorrectable = errors.New("uncorrectable block")

// Codec encodes and decodes one block at a time.
//
// Codec keeps internal scratch buffers to stay allocation-free per call, so
// it is not safe for concurrent use.
type Codec struct {
	fec *infectious.FEC

	// shares alias buf one byte each, pre-built once
	shares []infectious.Share
	buf    []byte
	prev   []byte

	blockSize  int
	paritySize int
}

// NewCodec builds a Reed-Solomon codec over blockSize data bytes plus
// paritySize parity bytes, correcting up to paritySize/2 corrupted symbols
// per block.
func NewCodec(blockSize, paritySize int) (*Codec, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size should be positive: %d", blockSize)
	}

	if paritySize <= 0 || paritySize%2 != 0 {
		return nil, fmt.Errorf("parity size should be positive and even: %d", paritySize)
	}

	total := blockSize + paritySize
	if total > 256 {
		return nil, fmt.Errorf("block and parity should fit in 256 8-bit symbols: %d", total)
	}

	fec, err := infectious.NewFEC(blockSize, total)
	if err != nil {
		return nil, err
	}

	c := &Codec{
		fec:        fec,
		buf:        make([]byte, total),
		prev:       make([]byte, total),
		shares:     make([]infectious.Share, total),
		blockSize:  blockSize,
		paritySize: paritySize,
	}

	for i := range c.shares {
		c.shares[i] = infectious.Share{Number: i, Data: c.buf[i : i+1]}
	}

	return c, nil
}

// NewDefaultCodec builds a codec with the default geometry.
func NewDefaultCodec() (*Codec, error) {
	return NewCodec(DefaultBlockSize, DefaultParitySize)
}

// BlockSize returns the number of data bytes covered by one parity segment.
func (c *Codec) BlockSize() int {
	return c.blockSize
}

// ParitySize returns the parity segment width in bytes.
func (c *Codec) ParitySize() int {
	return c.paritySize
}

// Encode computes the parity segment for a block.
//
// Blocks shorter than BlockSize are padded with zero bytes for the
// computation; Decode applies the same padding, so shortened blocks round
// trip.
func (c *Codec) Encode(data, parity []byte) error {
	if err := c.check(data, parity); err != nil {
		return err
	}

	n := copy(c.buf, data)
	clear(c.buf[n:c.blockSize])

	return c.fec.Encode(c.buf[:c.blockSize], func(s infectious.Share) {
		if s.Number >= c.blockSize {
			parity[s.Number-c.blockSize] = s.Data[0]
		}
	})
}

// Decode corrects a block in place using its parity segment and returns the
// number of corrected symbols.
//
// If the errors exceed the correction bound, ErrUncorrectable is returned
// and data is left untouched.
func (c *Codec) Decode(data, parity []byte) (int, error) {
	if err := c.check(data, parity); err != nil {
		return 0, err
	}

	n := copy(c.buf, data)
	clear(c.buf[n:c.blockSize])
	copy(c.buf[c.blockSize:], parity)

	copy(c.prev, c.buf)

	if err := c.fec.Correct(c.shares); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUncorrectable, err)
	}

	var corrected int

	for i, b := range c.buf {
		if b != c.prev[i] {
			corrected++
		}
	}

	copy(data, c.buf[:len(data)])

	return corrected, nil
}

func (c *Codec) check(data, parity []byte) error {
	if len(data) == 0 || len(data) > c.blockSize {
		return fmt.Errorf("block of %d bytes should be 1..%d bytes", len(data), c.blockSize)
	}

	if len(parity) != c.paritySize {
		return fmt.Errorf("parity segment of %d bytes, expected %d", len(parity), c.paritySize)
	}

	return nil
}
