// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package ramlog implements a persistent circular log store over a raw
// memory region.
//
// The store records sequential log text into a fixed-size backing region so
// that after a restart the previous run's log can be recovered, optionally
// tolerating partial memory corruption via a block error-correcting code.
package ramlog

import (
	"fmt"

	"github.com/siderolabs/gen/optional"
	"go.uber.org/zap"
)

// Store appends log text to a fixed-size region with circular semantics.
//
// The region is split into header | data | parity (parity only when a codec
// is configured). The data area is a circular buffer: once full, new writes
// overwrite the oldest bytes, so the region always holds the most recent
// Capacity() bytes ever written.
//
// Store assumes a single writer: Write is not safe for concurrent use, the
// caller serializes writes. The recovered log is an immutable snapshot taken
// at construction time and may be read concurrently with writes.
type Store struct {
	region []byte

	// data and parity alias sub-ranges of region
	data   []byte
	parity []byte

	old *RecoveredLog

	codec optional.Optional[Codec]

	hdr Header

	correctedBytes int
	badBlocks      int

	opt Options
}

// NewStore initializes a log store over region.
//
// Whatever the region held before is recovered first (see Recovered), then
// the header is destructively re-armed: after NewStore returns, the store is
// empty and ready for new writes regardless of whether recovery succeeded.
//
// The only fatal condition is a region too small to hold the header and
// parity reservation; every other problem degrades to best-effort recovery.
func NewStore(region []byte, opts ...OptionFunc) (*Store, error) {
	s := &Store{
		region: region,
		opt:    defaultOptions(),
	}

	for _, o := range opts {
		if err := o(&s.opt); err != nil {
			return nil, err
		}
	}

	if s.opt.Codec != nil {
		if s.opt.Codec.BlockSize() < HeaderSize {
			return nil, fmt.Errorf("codec block size (%d) should be at least the header size (%d)", s.opt.Codec.BlockSize(), HeaderSize)
		}

		s.codec = optional.Some(s.opt.Codec)
	}

	dataCapacity := len(region) - HeaderSize
	if dataCapacity <= 0 {
		return nil, fmt.Errorf("%w: region of %d bytes cannot hold the %d-byte header", ErrInsufficientCapacity, len(region), HeaderSize)
	}

	if codec, ok := s.codec.Get(); ok {
		blocks := (dataCapacity + codec.BlockSize() - 1) / codec.BlockSize()
		reserved := (blocks + 1) * codec.ParitySize()

		dataCapacity -= reserved
		if dataCapacity <= 0 {
			return nil, fmt.Errorf("%w: %d parity bytes leave no data capacity in a %d-byte region", ErrInsufficientCapacity, reserved, len(region))
		}
	}

	s.data = region[HeaderSize : HeaderSize+dataCapacity]
	s.parity = region[HeaderSize+dataCapacity:]

	s.decodeHeader()

	s.hdr.unmarshal(region[:HeaderSize])

	s.old = &RecoveredLog{}

	switch {
	case !s.hdr.sigValid():
		s.opt.Logger.Info("no valid data in region")
	case !s.hdr.Valid(dataCapacity):
		s.opt.Logger.Info("found existing invalid buffer",
			zap.Uint32("size", s.hdr.Size),
			zap.Uint32("start", s.hdr.Start))
	default:
		s.opt.Logger.Info("found existing buffer",
			zap.Uint32("size", s.hdr.Size),
			zap.Uint32("start", s.hdr.Start))

		s.recoverOld()
	}

	// destructive re-arm: the store always starts empty
	s.hdr = Header{Signature: Magic}
	s.writeHeader()

	if s.opt.ArchivePath != "" {
		s.archiveOldLog()
	}

	if s.opt.Sink != nil {
		s.opt.Sink.Register(s)
	}

	return s, nil
}

// Write implements io.Writer with circular semantics.
//
// Writes longer than the data capacity keep only their trailing capacity
// bytes. Write never fails; the error return exists to satisfy io.Writer.
func (s *Store) Write(p []byte) (int, error) {
	l := len(p)
	if l == 0 {
		return 0, nil
	}

	if l > len(s.data) {
		p = p[l-len(s.data):]
	}

	count := len(p)

	if rem := len(s.data) - int(s.hdr.Start); rem < count {
		s.update(p[:rem])

		p = p[rem:]
		count -= rem

		s.hdr.Start = 0
		s.hdr.Size = uint32(len(s.data))
	}

	s.update(p)

	s.hdr.Start = uint32((int(s.hdr.Start) + count) % len(s.data))
	s.hdr.Size = uint32(min(int(s.hdr.Size)+count, len(s.data)))

	// the header (and its parity) is refreshed after every write, so a crash
	// mid-write can only lose the in-flight bytes
	s.writeHeader()

	return l, nil
}

// update copies b to the current write position and refreshes the parity of
// every block the copy touches. The caller guarantees b fits without
// wrapping.
func (s *Store) update(b []byte) {
	if len(b) == 0 {
		return
	}

	start := int(s.hdr.Start)

	copy(s.data[start:], b)

	codec, ok := s.codec.Get()
	if !ok {
		return
	}

	bs, ps := codec.BlockSize(), codec.ParitySize()

	for block := start / bs * bs; block < start+len(b); block += bs {
		end := min(block+bs, len(s.data))

		if err := codec.Encode(s.data[block:end], s.parity[block/bs*ps:block/bs*ps+ps]); err != nil {
			s.opt.Logger.Error("failed to encode block parity", zap.Int("block", block/bs), zap.Error(err))
		}
	}
}

// decodeHeader corrects the raw header bytes using the dedicated parity
// segment. Decode problems are diagnostic only: initialization proceeds with
// whatever bytes are in the region.
func (s *Store) decodeHeader() {
	codec, ok := s.codec.Get()
	if !ok {
		return
	}

	switch n, err := codec.Decode(s.region[:HeaderSize], s.headerParity()); {
	case err != nil:
		s.badBlocks++
	case n > 0:
		s.correctedBytes += n
	}
}

func (s *Store) writeHeader() {
	s.hdr.marshal(s.region[:HeaderSize])

	codec, ok := s.codec.Get()
	if !ok {
		return
	}

	if err := codec.Encode(s.region[:HeaderSize], s.headerParity()); err != nil {
		s.opt.Logger.Error("failed to encode header parity", zap.Error(err))
	}
}

// headerParity returns the parity segment following the per-block segments.
// Only called with a codec configured.
func (s *Store) headerParity() []byte {
	codec := s.opt.Codec

	blocks := (len(s.data) + codec.BlockSize() - 1) / codec.BlockSize()
	off := blocks * codec.ParitySize()

	return s.parity[off : off+codec.ParitySize()]
}

// recoverOld materializes the previous contents of the region. The header
// has been validated: Start <= Size <= len(data).
func (s *Store) recoverOld() {
	oldSize := int(s.hdr.Size)

	if codec, ok := s.codec.Get(); ok {
		bs, ps := codec.BlockSize(), codec.ParitySize()

		for block := 0; block < oldSize; block += bs {
			end := min(block+bs, len(s.data))

			switch n, err := codec.Decode(s.data[block:end], s.parity[block/bs*ps:block/bs*ps+ps]); {
			case err != nil:
				s.badBlocks++
			case n > 0:
				s.correctedBytes += n
			}
		}
	}

	var trailer string

	if s.codec.IsPresent() {
		if s.correctedBytes > 0 || s.badBlocks > 0 {
			trailer = fmt.Sprintf("\n%d Corrected bytes, %d unrecoverable blocks\n", s.correctedBytes, s.badBlocks)
		} else {
			trailer = "\nNo errors detected\n"
		}
	}

	total := oldSize + len(trailer)

	dest := s.opt.RecoveryBuffer
	if dest == nil {
		dest = make([]byte, total)
	} else if len(dest) < total {
		s.opt.Logger.Warn("recovery buffer too small, skipping old log capture",
			zap.Int("need", total),
			zap.Int("have", len(dest)))

		return
	}

	dest = dest[:total]

	start := int(s.hdr.Start)

	n := copy(dest, s.data[start:oldSize])
	copy(dest[n:oldSize], s.data[:start])
	copy(dest[oldSize:], trailer)

	s.old = &RecoveredLog{data: dest}

	if s.codec.IsPresent() {
		s.opt.Logger.Info("recovered old log",
			zap.Int("size", total),
			zap.Int("corrected_bytes", s.correctedBytes),
			zap.Int("bad_blocks", s.badBlocks))
	} else {
		s.opt.Logger.Info("recovered old log", zap.Int("size", total))
	}
}

// Recovered returns the log contents found in the region before
// re-initialization. The returned log is empty if there was nothing valid to
// recover.
func (s *Store) Recovered() *RecoveredLog {
	return s.old
}

// Capacity returns the number of data bytes the store can hold.
func (s *Store) Capacity() int {
	return len(s.data)
}

// Start returns the current write offset within the data area.
func (s *Store) Start() int {
	return int(s.hdr.Start)
}

// Size returns the number of valid bytes in the data area.
func (s *Store) Size() int {
	return int(s.hdr.Size)
}

// CorrectedBytes returns the number of symbols corrected while decoding the
// previous contents of the region.
func (s *Store) CorrectedBytes() int {
	return s.correctedBytes
}

// BadBlocks returns the number of blocks which could not be corrected while
// decoding the previous contents of the region.
func (s *Store) BadBlocks() int {
	return s.badBlocks
}
