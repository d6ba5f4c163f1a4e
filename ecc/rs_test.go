// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ecc_test

import (
	"crypto/rand"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderolabs/go-ramlog/ecc"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	codec, err := ecc.NewDefaultCodec()
	require.NoError(t, err)

	for _, test := range []struct {
		size int
	}{
		{
			size: 1,
		},
		{
			size: 50,
		},
		{
			size: 128,
		},
	} {
		t.Run(strconv.Itoa(test.size), func(t *testing.T) {
			req := require.New(t)

			data, err := io.ReadAll(io.LimitReader(rand.Reader, int64(test.size)))
			req.NoError(err)

			original := append([]byte(nil), data...)

			parity := make([]byte, codec.ParitySize())

			req.NoError(codec.Encode(data, parity))

			corrected, err := codec.Decode(data, parity)
			req.NoError(err)
			req.Zero(corrected)
			req.Equal(original, data)
		})
	}
}

func TestCorrection(t *testing.T) {
	t.Parallel()

	codec, err := ecc.NewCodec(128, 16)
	require.NoError(t, err)

	data := make([]byte, 128)
	for i := range data {
		data[i] = byte(i)
	}

	original := append([]byte(nil), data...)

	parity := make([]byte, codec.ParitySize())

	require.NoError(t, codec.Encode(data, parity))

	// up to paritySize/2 = 8 corrupted symbols are corrected exactly
	for errors := 1; errors <= 8; errors++ {
		t.Run(strconv.Itoa(errors), func(t *testing.T) {
			req := require.New(t)

			block := append([]byte(nil), original...)

			for i := range errors {
				block[i*13] ^= 0xa5
			}

			corrected, err := codec.Decode(block, parity)
			req.NoError(err)
			req.Equal(errors, corrected)
			req.Equal(original, block)
		})
	}
}

func TestCorrectionInParity(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	codec, err := ecc.NewCodec(128, 16)
	req.NoError(err)

	data := make([]byte, 128)
	for i := range data {
		data[i] = byte(255 - i)
	}

	original := append([]byte(nil), data...)

	parity := make([]byte, codec.ParitySize())
	req.NoError(codec.Encode(data, parity))

	parity[0] ^= 0xff
	parity[7] ^= 0xff

	corrected, err := codec.Decode(data, parity)
	req.NoError(err)
	req.Equal(2, corrected)
	req.Equal(original, data)
}

func TestUncorrectable(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	codec, err := ecc.NewCodec(128, 16)
	req.NoError(err)

	data := make([]byte, 128)
	for i := range data {
		data[i] = byte(i * 7)
	}

	parity := make([]byte, codec.ParitySize())
	req.NoError(codec.Encode(data, parity))

	corrupted := append([]byte(nil), data...)

	// 12 corrupted symbols exceed the correction bound of 8
	for i := range 12 {
		corrupted[i*5] ^= 0x5a
	}

	input := append([]byte(nil), corrupted...)

	_, err = codec.Decode(input, parity)
	req.ErrorIs(err, ecc.ErrUncorrectable)

	// content is left as-is on decode failure
	req.Equal(corrupted, input)
}

func TestPartialBlock(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	codec, err := ecc.NewCodec(128, 16)
	req.NoError(err)

	data := []byte("short block with fewer bytes than the code width")
	original := append([]byte(nil), data...)

	parity := make([]byte, codec.ParitySize())
	req.NoError(codec.Encode(data, parity))

	data[3] ^= 0xff
	data[30] ^= 0xff

	corrected, err := codec.Decode(data, parity)
	req.NoError(err)
	req.Equal(2, corrected)
	req.Equal(original, data)
}

func TestGeometry(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name string

		blockSize  int
		paritySize int

		expectError bool
	}{
		{
			name: "defaults",

			blockSize:  ecc.DefaultBlockSize,
			paritySize: ecc.DefaultParitySize,
		},
		{
			name: "small code",

			blockSize:  16,
			paritySize: 4,
		},
		{
			name: "zero block",

			blockSize:  0,
			paritySize: 16,

			expectError: true,
		},
		{
			name: "odd parity",

			blockSize:  128,
			paritySize: 15,

			expectError: true,
		},
		{
			name: "exceeds symbol alphabet",

			blockSize:  250,
			paritySize: 16,

			expectError: true,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			codec, err := ecc.NewCodec(test.blockSize, test.paritySize)

			if test.expectError {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.blockSize, codec.BlockSize())
			assert.Equal(t, test.paritySize, codec.ParitySize())
		})
	}
}

func TestArgumentValidation(t *testing.T) {
	t.Parallel()

	req := require.New(t)

	codec, err := ecc.NewCodec(128, 16)
	req.NoError(err)

	parity := make([]byte, 16)

	req.Error(codec.Encode(nil, parity))
	req.Error(codec.Encode(make([]byte, 129), parity))
	req.Error(codec.Encode(make([]byte, 64), parity[:8]))

	_, err = codec.Decode(make([]byte, 129), parity)
	req.Error(err)
}
