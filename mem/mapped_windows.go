// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

//go:build windows

package mem

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Mapped is a read-only memory-mapped file backend.
type Mapped struct {
	data    []byte
	handle  windows.Handle
	addr    uintptr
}

// LoadMapped memory-maps the file at path read-only. Flags are accepted
// for API parity with the Unix backend (spec.md §6.3) but Windows has no
// direct madvise equivalent reachable without a second syscall layer this
// package does not otherwise need, so they are presently no-ops here.
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

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READONLY, 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("epserde/mem: CreateFileMapping: %w", err)
	}

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, uintptr(size))
	if err != nil {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("epserde/mem: MapViewOfFile: %w", err)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
	return &Mapped{data: data, handle: h, addr: addr}, nil
}

func (m *Mapped) Bytes() []byte { return m.data }

func (m *Mapped) Close() error {
	if m.addr == 0 {
		return nil
	}
	if err := windows.UnmapViewOfFile(m.addr); err != nil {
		return err
	}
	return windows.CloseHandle(m.handle)
}
