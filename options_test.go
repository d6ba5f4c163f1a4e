// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ramlog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siderolabs/go-ramlog"
)

func TestInvalidOptions(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		name string

		option ramlog.OptionFunc

		expectedError string
	}{
		{
			name: "nil codec",

			option: ramlog.WithECC(nil),

			expectedError: "codec should not be nil",
		},
		{
			name: "nil sink",

			option: ramlog.WithSink(nil),

			expectedError: "sink should not be nil",
		},
		{
			name: "empty archive path",

			option: ramlog.WithArchive("", nil),

			expectedError: "archive path should be set",
		},
		{
			name: "empty recovery buffer",

			option: ramlog.WithRecoveryBuffer(nil),

			expectedError: "recovery buffer should not be empty",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			_, err := ramlog.NewStore(make([]byte, 1024), test.option)
			assert.EqualError(t, err, test.expectedError)
		})
	}
}
