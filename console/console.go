// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package console provides a minimal line-oriented sink multiplexer log
// stores register against.
package console

import (
	"io"
	"sync"
)

// Console fans out written text to every registered writer.
//
// Writer errors are swallowed: a console write must never fail the caller.
type Console struct {
	mu      sync.Mutex
	writers []io.Writer
}

// Register adds a writer to the fan-out set.
func (c *Console) Register(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.writers = append(c.writers, w)
}

// Write implements io.Writer, delivering p to every registered writer in
// registration order.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, w := range c.writers {
		w.Write(p) //nolint:errcheck
	}

	return len(p), nil
}
