// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package types

import (
	"io"
	"reflect"
)

// ZeroCopyMarker, FullCopyMarker, CodedType, and UnionMarker are
// structural interfaces: the root epserde package re-exports each as a
// type alias (ZeroCopyType, FullCopyType, Coded, UnionType), and the
// sumtype package implements UnionMarker's method set without importing
// this package; this package never imports either of them (spec.md §6.2
// collaborator contracts, realized as Go marker interfaces instead of a
// derive macro — grounded on the teacher's interface-detection shape in
// fastssz.go).
type ZeroCopyMarker interface {
	EpserdeZeroCopy()
}

type FullCopyMarker interface {
	EpserdeFullCopy()
}

// CodedType is implemented by types that supply their own wire encoding,
// bypassing reflective classification entirely (spec.md §6.2).
type CodedType interface {
	MarshalEps(w io.Writer) (int, error)
	UnmarshalEps(r io.Reader) error
}

// UnionMarker is implemented by generic sum-type wrappers (sumtype.Union[T]).
type UnionMarker interface {
	EpserdeVariantTypes() []reflect.Type
	EpserdeVariantNames() []string
}

var (
	zeroCopyMarkerType = reflect.TypeOf((*ZeroCopyMarker)(nil)).Elem()
	fullCopyMarkerType = reflect.TypeOf((*FullCopyMarker)(nil)).Elem()
	codedType          = reflect.TypeOf((*CodedType)(nil)).Elem()
	unionMarkerType    = reflect.TypeOf((*UnionMarker)(nil)).Elem()
)

func implementsEither(t reflect.Type, iface reflect.Type) bool {
	if t.Implements(iface) {
		return true
	}
	return reflect.PointerTo(t).Implements(iface)
}

func declaresZeroCopy(t reflect.Type) bool { return implementsEither(t, zeroCopyMarkerType) }
func declaresFullCopy(t reflect.Type) bool { return implementsEither(t, fullCopyMarkerType) }
func isCoded(t reflect.Type) bool          { return implementsEither(t, codedType) }
func isUnion(t reflect.Type) bool          { return implementsEither(t, unionMarkerType) }
