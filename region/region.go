// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package region acquires backing memory for a log store: anonymous memory,
// a shared file mapping, or a reserved physical range exposed through a
// memory device node.
package region

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Region is a fixed-size byte-addressable backing store, mapped once and
// held for the lifetime of the process.
type Region struct {
	f *os.File

	data []byte

	mapped     bool
	unbuffered bool
}

// New returns an anonymous in-memory region of the given size.
func New(size int) *Region {
	return &Region{data: make([]byte, size)}
}

// MapFile maps size bytes of the file at path as a shared writable mapping,
// creating or extending the file as needed.
//
// With unbuffered set, the backing file is opened with O_SYNC and Sync waits
// for the data to reach the device.
func MapFile(path string, size int64, unbuffered bool) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("region size should be positive: %d", size)
	}

	flags := os.O_RDWR | os.O_CREATE
	if unbuffered {
		flags |= unix.O_SYNC
	}

	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return nil, err
	}

	fi, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck

		return nil, err
	}

	if fi.Size() < size {
		if err = f.Truncate(size); err != nil {
			f.Close() //nolint:errcheck

			return nil, err
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close() //nolint:errcheck

		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}

	return &Region{
		f:          f,
		data:       data,
		mapped:     true,
		unbuffered: unbuffered,
	}, nil
}

// MapPhys maps size bytes at physical address addr through a memory device
// node (usually /dev/mem), the way a reserved RAM range is handed to a
// crash-persistent log store.
func MapPhys(devPath string, addr int64, size int, unbuffered bool) (*Region, error) {
	if size <= 0 {
		return nil, fmt.Errorf("region size should be positive: %d", size)
	}

	flags := os.O_RDWR
	if unbuffered {
		flags |= unix.O_SYNC
	}

	f, err := os.OpenFile(devPath, flags, 0)
	if err != nil {
		return nil, err
	}

	data, err := unix.Mmap(int(f.Fd()), addr, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close() //nolint:errcheck

		return nil, fmt.Errorf("failed to map %s at %#x: %w", devPath, addr, err)
	}

	return &Region{
		f:          f,
		data:       data,
		mapped:     true,
		unbuffered: unbuffered,
	}, nil
}

// Bytes returns the mapped bytes. The slice stays valid until Close.
func (r *Region) Bytes() []byte {
	return r.data
}

// Size returns the region capacity in bytes.
func (r *Region) Size() int {
	return len(r.data)
}

// Sync flushes modified pages to the backing store. For unbuffered regions
// Sync waits for the flush to complete.
func (r *Region) Sync() error {
	if !r.mapped {
		return nil
	}

	flags := unix.MS_ASYNC
	if r.unbuffered {
		flags = unix.MS_SYNC
	}

	return unix.Msync(r.data, flags)
}

// Close flushes and unmaps the region and releases the backing file.
func (r *Region) Close() error {
	if !r.mapped {
		r.data = nil

		return nil
	}

	if err := unix.Msync(r.data, unix.MS_SYNC); err != nil {
		return err
	}

	if err := unix.Munmap(r.data); err != nil {
		return err
	}

	r.data = nil
	r.mapped = false

	return r.f.Close()
}
