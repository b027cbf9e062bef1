// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

//go:build !unix && !windows

package mem

import "os"

// Mapped falls back to an ordinary read on platforms with neither mmap
// nor the Windows mapping API (grounded on
// joshuapare-hivekit/internal/mmfile's mmfile_fallback.go).
type Mapped struct {
	data []byte
}

// LoadMapped reads the whole file into memory. flags is accepted for API
// parity and ignored.
func LoadMapped(path string, flags Flags) (*Mapped, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Mapped{data: data}, nil
}

func (m *Mapped) Bytes() []byte { return m.data }
func (m *Mapped) Close() error  { return nil }
