// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package console_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/siderolabs/go-ramlog/console"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("sink failure")
}

func TestFanOut(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	var first, second bytes.Buffer

	cons := &console.Console{}

	cons.Register(&first)
	cons.Register(failingWriter{})
	cons.Register(&second)

	n, err := cons.Write([]byte("hello\n"))
	req.NoError(err)
	req.Equal(6, n)

	n, err = cons.Write([]byte("world\n"))
	req.NoError(err)
	req.Equal(6, n)

	req.Equal("hello\nworld\n", first.String())
	req.Equal("hello\nworld\n", second.String())
}

func TestConcurrentWriters(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	var sink bytes.Buffer

	cons := &console.Console{}
	cons.Register(&sink)

	var eg errgroup.Group

	for range 8 {
		eg.Go(func() error {
			for range 100 {
				if _, err := cons.Write([]byte("x")); err != nil {
					return err
				}
			}

			return nil
		})
	}

	req.NoError(eg.Wait())
	req.Equal(800, sink.Len())
}
