// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

import (
	"io"
	"reflect"

	"github.com/epserde-go/epserde/internal/types"
)

// Coded is implemented by a type that supplies its own wire encoding,
// bypassing reflective classification entirely (spec.md §6.2). A Coded
// value is always treated as ClassFull: the engine never attempts to
// borrow any part of it during ε-copy deserialization, since it has no
// visibility into what MarshalEps/UnmarshalEps actually do with the bytes.
type Coded = types.CodedType

// ZeroCopyType is implemented by a type that asserts it is safe to
// reinterpret in place; the engine still verifies every field is itself
// zero-copy the first time the type is classified (spec.md §4.1).
type ZeroCopyType = types.ZeroCopyMarker

// FullCopyType is implemented by a type that opts out of the zero-copy
// optimization even though its layout might otherwise qualify.
type FullCopyType = types.FullCopyMarker

// UnionType is implemented by a generic sum-type wrapper such as
// sumtype.Union[T] (spec.md §4.1, §7).
type UnionType = types.UnionMarker

// asCoded returns v's CodedType interface (trying the addressable pointer
// if v itself does not implement it directly) and whether one was found.
func asCoded(v reflect.Value) (Coded, bool) {
	if c, ok := v.Interface().(Coded); ok {
		return c, true
	}
	if v.CanAddr() {
		if c, ok := v.Addr().Interface().(Coded); ok {
			return c, true
		}
	}
	return nil, false
}

func writeCoded(fw *FieldWriter, c Coded) error {
	_, err := c.MarshalEps(fw)
	return err
}

func readCoded(r io.Reader, c Coded) error {
	return c.UnmarshalEps(r)
}
