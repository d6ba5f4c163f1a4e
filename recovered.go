// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ramlog

import "io"

// RecoveredLog is the previous contents of the region, oldest bytes first,
// materialized once during store initialization and never mutated.
//
// With a codec configured, a short human-readable diagnostic line describing
// corrected/unrecoverable counts is appended to the recovered bytes.
//
// RecoveredLog is safe for concurrent readers.
type RecoveredLog struct {
	data []byte
}

// Size returns the recovered log length in bytes.
func (l *RecoveredLog) Size() int64 {
	return int64(len(l.data))
}

// Bytes returns the recovered bytes. Callers must not modify the returned
// slice.
func (l *RecoveredLog) Bytes() []byte {
	return l.data
}

// ReadAt implements io.ReaderAt over the recovered bytes: up to len(p) bytes
// starting at off, io.EOF at or past the end.
func (l *RecoveredLog) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, ErrInvalidOffset
	}

	if off >= int64(len(l.data)) {
		return 0, io.EOF
	}

	n := copy(p, l.data[off:])
	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

// Reader returns a reader over the recovered bytes for incremental,
// chunked consumption.
func (l *RecoveredLog) Reader() *io.SectionReader {
	return io.NewSectionReader(l, 0, l.Size())
}
