// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

import (
	"encoding/binary"
	"math/bits"
	"strconv"
)

// VersionMajor/VersionMinor identify the on-disk format this build writes
// and the newest minor version it can read. Bumping VersionMajor is a
// breaking change; bumping VersionMinor must stay backwards-compatible
// with older readers of the same major version (spec.md §7).
const (
	VersionMajor uint16 = 1
	VersionMinor uint16 = 0
)

// pointerWidthBytes is this platform's native pointer/usize width, written
// into the header and checked on read (spec.md §6.1, §7 PointerWidth).
var pointerWidthBytes = strconv.IntSize / 8

// magic is a fixed 64-bit cookie written in native byte order. Reading it
// back byte-reversed (magicReversed) identifies a file written on an
// architecture with the opposite endianness; any other value means the
// stream is not an epserde stream at all.
var magic = binary.NativeEndian.Uint64([]byte("EPSRDEG\x01"))
var magicReversed = bits.ReverseBytes64(magic)

// checkMagic classifies the first 8 bytes of a stream.
func checkMagic(got uint64) error {
	switch got {
	case magic:
		return nil
	case magicReversed:
		return ErrEndianness
	default:
		return &MagicCookieError{Got: got}
	}
}

// checkVersion validates the major/minor version pair read from a stream.
func checkVersion(major, minor uint16) error {
	if major != VersionMajor {
		return &VersionError{Major: true, Got: major}
	}
	if minor > VersionMinor {
		return &VersionError{Major: false, Got: minor}
	}
	return nil
}

// checkPointerWidth validates the USIZE_BYTES field read from a stream.
func checkPointerWidth(got uint8) error {
	if int(got) != pointerWidthBytes {
		return &PointerWidthError{Got: int(got)}
	}
	return nil
}
