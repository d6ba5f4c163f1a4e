// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package ramlog

import "errors"

// ErrInsufficientCapacity is returned by NewStore when the region cannot
// hold the header and parity reservation. The store stays inactive.
var ErrInsufficientCapacity = errors.New("insufficient region capacity")

// ErrInvalidOffset is returned by RecoveredLog.ReadAt for negative offsets.
var ErrInvalidOffset = errors.New("invalid read offset")
