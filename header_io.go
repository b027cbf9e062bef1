// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

import (
	"encoding/binary"

	"github.com/epserde-go/epserde/internal/fingerprint"
)

// headerInfo is the parsed, validated content of a stream header
// (spec.md §6.1), minus MAGIC/VERSION/USIZE_BYTES which checkMagic/
// checkVersion/checkPointerWidth already validated by the time a caller
// needs the rest.
type headerInfo struct {
	Fingerprint fingerprint.Pair
	TypeName    string
}

// writeHeader emits the full header (spec.md §6.1): MAGIC, VERSION_MAJOR/
// MINOR, USIZE_BYTES, padding to 8-byte alignment, TYPE_HASH,
// TYPE_REPR_HASH, the length-prefixed TYPE_NAME, and finally padding to
// the root value's own alignment. The caller writes ROOT immediately
// after this returns.
func writeHeader(fw *FieldWriter, typeName string, fp fingerprint.Pair, rootAlign int) error {
	var buf [8]byte

	binary.NativeEndian.PutUint64(buf[:8], magic)
	if _, err := fw.Write(buf[:8]); err != nil {
		return err
	}

	var small [4]byte
	binary.NativeEndian.PutUint16(small[0:2], VersionMajor)
	binary.NativeEndian.PutUint16(small[2:4], VersionMinor)
	if _, err := fw.Write(small[:4]); err != nil {
		return err
	}

	if _, err := fw.Write([]byte{byte(pointerWidthBytes)}); err != nil {
		return err
	}

	if err := fw.PadTo(8); err != nil {
		return err
	}

	binary.NativeEndian.PutUint64(buf[:8], fp.TypeHash)
	if _, err := fw.Write(buf[:8]); err != nil {
		return err
	}
	binary.NativeEndian.PutUint64(buf[:8], fp.TypeReprHash)
	if _, err := fw.Write(buf[:8]); err != nil {
		return err
	}

	binary.NativeEndian.PutUint64(buf[:8], uint64(len(typeName)))
	if _, err := fw.Write(buf[:8]); err != nil {
		return err
	}
	if _, err := fw.Write([]byte(typeName)); err != nil {
		return err
	}

	return fw.PadTo(rootAlign)
}

// readHeaderReader parses a header from a positioned io.Reader (the
// full-copy path), validating MAGIC/VERSION/USIZE_BYTES as it goes.
func readHeaderReader(r *ReaderWithPos) (*headerInfo, error) {
	var buf [8]byte

	if err := r.ReadExact(buf[:8]); err != nil {
		return nil, err
	}
	if err := checkMagic(binary.NativeEndian.Uint64(buf[:8])); err != nil {
		return nil, err
	}

	var small [4]byte
	if err := r.ReadExact(small[:4]); err != nil {
		return nil, err
	}
	major := binary.NativeEndian.Uint16(small[0:2])
	minor := binary.NativeEndian.Uint16(small[2:4])
	if err := checkVersion(major, minor); err != nil {
		return nil, err
	}

	var one [1]byte
	if err := r.ReadExact(one[:]); err != nil {
		return nil, err
	}
	if err := checkPointerWidth(one[0]); err != nil {
		return nil, err
	}

	if err := r.PadAlignAndCheck(8); err != nil {
		return nil, err
	}

	if err := r.ReadExact(buf[:8]); err != nil {
		return nil, err
	}
	typeHash := binary.NativeEndian.Uint64(buf[:8])
	if err := r.ReadExact(buf[:8]); err != nil {
		return nil, err
	}
	typeReprHash := binary.NativeEndian.Uint64(buf[:8])

	if err := r.ReadExact(buf[:8]); err != nil {
		return nil, err
	}
	nameLen := binary.NativeEndian.Uint64(buf[:8])
	nameBuf := make([]byte, nameLen)
	if err := r.ReadExact(nameBuf); err != nil {
		return nil, err
	}

	return &headerInfo{
		Fingerprint: fingerprint.Pair{TypeHash: typeHash, TypeReprHash: typeReprHash},
		TypeName:    string(nameBuf),
	}, nil
}

// readHeaderCursor parses a header from a SliceCursor (the ε-copy path),
// borrowing TYPE_NAME directly out of the backing buffer instead of
// copying it.
func readHeaderCursor(c *SliceCursor) (*headerInfo, error) {
	magicBytes, err := c.Take(8)
	if err != nil {
		return nil, err
	}
	if err := checkMagic(binary.NativeEndian.Uint64(magicBytes)); err != nil {
		return nil, err
	}

	verBytes, err := c.Take(4)
	if err != nil {
		return nil, err
	}
	major := binary.NativeEndian.Uint16(verBytes[0:2])
	minor := binary.NativeEndian.Uint16(verBytes[2:4])
	if err := checkVersion(major, minor); err != nil {
		return nil, err
	}

	widthByte, err := c.Take(1)
	if err != nil {
		return nil, err
	}
	if err := checkPointerWidth(widthByte[0]); err != nil {
		return nil, err
	}

	if err := c.PadAlign(8); err != nil {
		return nil, err
	}

	hashBytes, err := c.Take(16)
	if err != nil {
		return nil, err
	}
	typeHash := binary.NativeEndian.Uint64(hashBytes[0:8])
	typeReprHash := binary.NativeEndian.Uint64(hashBytes[8:16])

	lenBytes, err := c.Take(8)
	if err != nil {
		return nil, err
	}
	nameLen := binary.NativeEndian.Uint64(lenBytes)
	nameBytes, err := c.Take(int(nameLen))
	if err != nil {
		return nil, err
	}

	return &headerInfo{
		Fingerprint: fingerprint.Pair{TypeHash: typeHash, TypeReprHash: typeReprHash},
		TypeName:    bytesToString(nameBytes),
	}, nil
}

func checkFingerprint(h *headerInfo, expected fingerprint.Pair, expectedName string) error {
	if h.Fingerprint.TypeHash != expected.TypeHash {
		return &TypeHashError{ExpectedName: expectedName, GotName: h.TypeName, Expected: expected.TypeHash, Got: h.Fingerprint.TypeHash}
	}
	if h.Fingerprint.TypeReprHash != expected.TypeReprHash {
		return &TypeReprHashError{ExpectedName: expectedName, GotName: h.TypeName, Expected: expected.TypeReprHash, Got: h.Fingerprint.TypeReprHash}
	}
	return nil
}
