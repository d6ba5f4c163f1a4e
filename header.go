// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ramlog

import (
	"encoding/binary"
	"fmt"
)

// Magic marks a region holding a store in this exact format ("DBGC").
//
// Any other signature value means the region is uninitialized or holds
// foreign content.
const Magic uint32 = 0x43474244

// HeaderSize is the size of the accounting record at the front of a region.
const HeaderSize = 12

// Header is the accounting record stored at the front of a region:
// signature, offset of the next write within the data area, and count of
// valid bytes.
type Header struct {
	Signature uint32
	Start     uint32
	Size      uint32
}

// ParseHeader decodes the accounting record at the front of a region without
// modifying it.
func ParseHeader(region []byte) (Header, error) {
	if len(region) < HeaderSize {
		return Header{}, fmt.Errorf("%w: region of %d bytes cannot hold the %d-byte header", ErrInsufficientCapacity, len(region), HeaderSize)
	}

	var h Header

	h.unmarshal(region[:HeaderSize])

	return h, nil
}

// Valid reports whether the header describes consistent prior content for a
// data area of the given capacity.
func (h Header) Valid(dataCapacity int) bool {
	return h.sigValid() && int(h.Size) <= dataCapacity && h.Start <= h.Size
}

func (h Header) sigValid() bool {
	return h.Signature == Magic
}

func (h *Header) unmarshal(b []byte) {
	h.Signature = binary.LittleEndian.Uint32(b[0:4])
	h.Start = binary.LittleEndian.Uint32(b[4:8])
	h.Size = binary.LittleEndian.Uint32(b[8:12])
}

func (h Header) marshal(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], h.Signature)
	binary.LittleEndian.PutUint32(b[4:8], h.Start)
	binary.LittleEndian.PutUint32(b[8:12], h.Size)
}
