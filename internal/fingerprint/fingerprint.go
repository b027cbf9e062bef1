// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

// Package fingerprint computes the two 64-bit type fingerprints the wire
// header carries (spec.md §4.2, L2): type_hash, a structural identity
// (names, field order and types, ignoring memory layout) and
// type_repr_hash, a representation identity (offsets, alignment, size) that
// additionally distinguishes two structurally identical types whose Go
// compiler happened to lay them out differently. Both are computed with a
// streaming non-cryptographic hash (xxhash) rather than a cryptographic
// digest: the fingerprint only needs to catch accidental mismatches
// between the writer's and reader's type definitions, not resist a
// malicious adversary (spec.md §4.2 rationale; grounded on the pooled
// streaming-hasher shape of the teacher's hasher.go, retargeted from
// Merkle hash-tree-root accumulation to flat fingerprint accumulation).
package fingerprint

import (
	"encoding/binary"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/epserde-go/epserde/internal/types"
)

var digestPool = sync.Pool{
	New: func() any { return xxhash.New() },
}

func getDigest() *xxhash.Digest {
	return digestPool.Get().(*xxhash.Digest)
}

func putDigest(d *xxhash.Digest) {
	d.Reset()
	digestPool.Put(d)
}

// Pair is the (type_hash, type_repr_hash) tuple a wire header carries.
type Pair struct {
	TypeHash     uint64
	TypeReprHash uint64
}

// Compute derives both fingerprints for d, one recursive walk per digest.
func Compute(d *types.Descriptor) Pair {
	structural := getDigest()
	repr := getDigest()
	defer putDigest(structural)
	defer putDigest(repr)

	writeStructural(structural, d)
	writeRepr(repr, d)

	return Pair{TypeHash: structural.Sum64(), TypeReprHash: repr.Sum64()}
}

func writeUint64(h *xxhash.Digest, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func writeString(h *xxhash.Digest, s string) {
	writeUint64(h, uint64(len(s)))
	_, _ = h.Write([]byte(s))
}

// writeStructural folds in everything that defines the type's logical
// shape: its name, kind, shape tag, and — recursively — its fields or
// elements by name and type. It deliberately omits Align/Size so that,
// say, a struct rebuilt with different field padding
// still reports the same type_hash (spec.md §4.2: "ignores layout").
// ArrayLen is structural (it changes the set of valid values), so it is
// included; Align/Size are representational only and are left to
// writeRepr.
func writeStructural(h *xxhash.Digest, d *types.Descriptor) {
	writeString(h, typeName(d.Type))
	writeUint64(h, uint64(d.Kind))
	writeUint64(h, uint64(d.Shape))
	writeUint64(h, uint64(d.ArrayLen))

	switch d.Shape {
	case types.ShapeArray, types.ShapeSlice, types.ShapePointer, types.ShapeString:
		if d.Elem != nil {
			writeStructural(h, d.Elem)
		}
	case types.ShapeStruct:
		writeUint64(h, uint64(len(d.Fields)))
		for _, f := range d.Fields {
			writeString(h, f.Name)
			writeStructural(h, f.Desc)
		}
	case types.ShapeUnion:
		writeUint64(h, uint64(len(d.Variants)))
		for i, v := range d.Variants {
			writeString(h, d.VariantNames[i])
			writeStructural(h, v)
		}
	}
}

// writeRepr folds in the concrete memory image: alignment and size at
// every level, so two structurally identical descriptors that the Go
// compiler (or a future field-reorder) laid out differently produce a
// distinct type_repr_hash (spec.md §4.2).
func writeRepr(h *xxhash.Digest, d *types.Descriptor) {
	writeUint64(h, uint64(d.Align))
	writeUint64(h, uint64(d.Size))
	writeUint64(h, uint64(d.Class))

	switch d.Shape {
	case types.ShapeArray, types.ShapeSlice, types.ShapePointer, types.ShapeString:
		if d.Elem != nil {
			writeRepr(h, d.Elem)
		}
	case types.ShapeStruct:
		for _, f := range d.Fields {
			// Field.Offset is the field's real byte offset within its
			// parent (reflect.StructField.Offset), so a reorder that
			// changes padding changes the hash even when every field's
			// own (Align, Size) is unchanged.
			writeUint64(h, uint64(f.Offset))
			writeRepr(h, f.Desc)
		}
	case types.ShapeUnion:
		for _, v := range d.Variants {
			writeRepr(h, v)
		}
	}
}

func typeName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
