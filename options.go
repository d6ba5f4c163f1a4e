// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ramlog

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Options defines settings for Store.
type Options struct {
	Codec Codec

	Logger *zap.Logger

	Sink Sink

	// ArchivePath, if set, receives a copy of the recovered log right after
	// initialization (compressed when Compressor is set).
	ArchivePath string
	Compressor  Compressor

	// RecoveryBuffer is an optional pre-allocated destination for the
	// recovered log. If it is too small, old log capture is skipped but
	// initialization still proceeds.
	RecoveryBuffer []byte
}

// Codec is a systematic block error-correcting code protecting the log
// content and its header.
//
// Encode computes len(parity) parity bytes over data; data may be shorter
// than the codec block for the final partial block of the data area. Decode
// corrects data in place and returns the number of corrected symbols, or an
// error if the block has more corrupted symbols than the code can correct
// (content is left as-is).
//
// A Codec may keep internal scratch buffers, matching the store's
// single-writer model; it need not be safe for concurrent use.
type Codec interface {
	BlockSize() int
	ParitySize() int
	Encode(data, parity []byte) error
	Decode(data, parity []byte) (int, error)
}

// Sink is a line-oriented text sink registry the store attaches itself to,
// so that an external writer fan-out can drive the store.
type Sink interface {
	Register(w io.Writer)
}

// Compressor implements optional compression of the archived recovered log.
//
// Compress and Decompress append to the dest slice and return the result.
type Compressor interface {
	Compress(src, dest []byte) ([]byte, error)
	Decompress(src, dest []byte) ([]byte, error)
}

// defaultOptions returns default initial values.
func defaultOptions() Options {
	return Options{
		Logger: zap.NewNop(),
	}
}

// OptionFunc allows setting Store options.
type OptionFunc func(*Options) error

// WithECC protects the data area and the header with the given block codec.
//
// The parity reservation is carved out of the region capacity before the
// data capacity is finalized.
func WithECC(c Codec) OptionFunc {
	return func(opt *Options) error {
		if c == nil {
			return fmt.Errorf("codec should not be nil")
		}

		opt.Codec = c

		return nil
	}
}

// WithLogger sets logger for Store.
func WithLogger(logger *zap.Logger) OptionFunc {
	return func(opt *Options) error {
		opt.Logger = logger

		return nil
	}
}

// WithSink registers the store with the sink once initialization succeeds.
func WithSink(s Sink) OptionFunc {
	return func(opt *Options) error {
		if s == nil {
			return fmt.Errorf("sink should not be nil")
		}

		opt.Sink = s

		return nil
	}
}

// WithArchive writes the recovered log to path after initialization,
// compressed when c is non-nil. Archiving is best effort: failures are
// logged and never fail initialization.
func WithArchive(path string, c Compressor) OptionFunc {
	return func(opt *Options) error {
		if path == "" {
			return fmt.Errorf("archive path should be set")
		}

		opt.ArchivePath = path
		opt.Compressor = c

		return nil
	}
}

// WithRecoveryBuffer supplies a pre-allocated destination buffer for the
// recovered log, avoiding allocation during initialization.
func WithRecoveryBuffer(buf []byte) OptionFunc {
	return func(opt *Options) error {
		if len(buf) == 0 {
			return fmt.Errorf("recovery buffer should not be empty")
		}

		opt.RecoveryBuffer = buf

		return nil
	}
}
