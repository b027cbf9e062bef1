// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

// SliceCursor is a byte slice plus an offset. It provides the same
// padding/reading contract as ReaderWithPos, but every read yields a
// sub-slice of the original backing array instead of a copy — the
// backbone of ε-copy deserialization (spec.md §4.3, §4.5).
type SliceCursor struct {
	buf []byte
	pos int
}

// NewSliceCursor wraps buf, starting at offset zero. The caller is
// responsible for buf's base-address alignment (see mem.LoadOwned/
// mem.LoadMapped for convenience backends that guarantee it).
func NewSliceCursor(buf []byte) *SliceCursor {
	return &SliceCursor{buf: buf}
}

// Pos returns the current offset into the backing slice.
func (c *SliceCursor) Pos() int { return c.pos }

// Len returns the number of unread bytes remaining.
func (c *SliceCursor) Len() int { return len(c.buf) - c.pos }

// PadAlign advances past alignment padding, failing with ErrAlignment if
// the resulting offset is not a multiple of align.
func (c *SliceCursor) PadAlign(align int) error {
	if align <= 1 {
		return nil
	}
	n := padLen(c.pos, align)
	if c.pos+n > len(c.buf) {
		return ErrRead
	}
	c.pos += n
	if c.pos%align != 0 {
		return ErrAlignment
	}
	return nil
}

// Take returns a borrowed sub-slice of n bytes starting at the current
// offset and advances past it. The returned slice aliases the backing
// array; it must not outlive it.
func (c *SliceCursor) Take(n int) ([]byte, error) {
	if n < 0 || c.pos+n > len(c.buf) {
		return nil, ErrRead
	}
	out := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return out, nil
}

// BaseAligned reports whether the backing array's base address satisfies
// align — the ε-copy precondition of spec.md §4.5. DeserializeEps checks
// it once, after reading the header and before reading the root value,
// against the strongest alignment transitively reachable from the root type.
func (c *SliceCursor) BaseAligned(align int) bool {
	if align <= 1 || len(c.buf) == 0 {
		return true
	}
	return baseAddr(c.buf)%uintptr(align) == 0
}
