// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

//go:build unix

package mem

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Mapped is a read-only memory-mapped file backend.
type Mapped struct {
	data []byte
}

// LoadMapped memory-maps the file at path read-only, applying flags as
// madvise/mmap hints (grounded on joshuapare-hivekit/internal/mmfile's
// mmfile_unix.go shape, extended from a bare syscall.Mmap call to
// golang.org/x/sys/unix so Flags can drive madvise).
func LoadMapped(path string, flags Flags) (*Mapped, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		return &Mapped{data: []byte{}}, nil
	}
	if size > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("epserde/mem: file too large to map (%d bytes)", size)
	}

	mapFlags := unix.MAP_PRIVATE
	if flags.Shared {
		mapFlags = unix.MAP_SHARED
	}
	if flags.HugePages {
		mapFlags |= unix.MAP_HUGETLB
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, mapFlags)
	if err != nil && flags.HugePages {
		data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, mapFlags&^unix.MAP_HUGETLB)
	}
	if err != nil {
		return nil, fmt.Errorf("epserde/mem: mmap: %w", err)
	}

	if flags.RandomizeAccess {
		_ = unix.Madvise(data, unix.MADV_RANDOM)
	}
	if flags.SequentialAccess {
		_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)
	}

	return &Mapped{data: data}, nil
}

func (m *Mapped) Bytes() []byte { return m.data }

func (m *Mapped) Close() error {
	if len(m.data) == 0 {
		return nil
	}
	return unix.Munmap(m.data)
}
