// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ramlog

import (
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
)

// archiveOldLog writes the recovered log to the configured archive path.
// Best effort: any failure is logged and swallowed.
func (s *Store) archiveOldLog() {
	if s.old.Size() == 0 {
		s.opt.Logger.Debug("nothing recovered, skipping archive", zap.String("path", s.opt.ArchivePath))

		return
	}

	data := s.old.Bytes()

	if s.opt.Compressor != nil {
		compressed, err := s.opt.Compressor.Compress(data, nil)
		if err != nil {
			s.opt.Logger.Error("failed to compress recovered log", zap.String("path", s.opt.ArchivePath), zap.Error(err))

			return
		}

		data = compressed
	}

	if err := atomicWriteFile(s.opt.ArchivePath, data, 0o600); err != nil {
		s.opt.Logger.Error("failed to archive recovered log", zap.String("path", s.opt.ArchivePath), zap.Error(err))

		return
	}

	s.opt.Logger.Info("archived recovered log",
		zap.String("path", s.opt.ArchivePath),
		zap.Int64("recovered_bytes", s.old.Size()),
		zap.Int("archived_bytes", len(data)))
}

func atomicWriteFile(path string, data []byte, mode fs.FileMode) error {
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) //nolint:errcheck

		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
