// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

// Package sumtype implements the generic sum-type wrapper of spec.md §4.1/
// §7 (L7): a tagged union written as a one-byte discriminant followed by
// the active variant's payload. Grounded on the teacher's
// CompatibleUnion[T] (union.go): T is never instantiated, only used
// through reflection as a descriptor struct whose fields enumerate the
// possible variants in order.
package sumtype

import (
	"fmt"
	"reflect"
)

// Union holds one of the variants enumerated by the descriptor struct T.
// T's fields (in declaration order) give the variant types and, via the
// field name, the variant names; T itself is never instantiated.
//
//	type Shape = sumtype.Union[struct {
//	    Circle    CircleData
//	    Rectangle RectangleData
//	}]
type Union[T any] struct {
	Variant uint8
	Data    any
}

// New returns a Union holding data as variant variantIndex. It validates
// that data's type matches the descriptor's field at that index.
func New[T any](variantIndex uint8, data any) (*Union[T], error) {
	u := &Union[T]{Variant: variantIndex, Data: data}
	descType := u.descriptorType()
	if int(variantIndex) >= descType.NumField() {
		return nil, fmt.Errorf("epserde/sumtype: variant index %d out of range for %s (%d variants)",
			variantIndex, descType, descType.NumField())
	}
	want := descType.Field(int(variantIndex)).Type
	if got := reflect.TypeOf(data); got != want {
		return nil, fmt.Errorf("epserde/sumtype: variant %d of %s expects %s, got %s",
			variantIndex, descType, want, got)
	}
	return u, nil
}

func (u *Union[T]) descriptorType() reflect.Type {
	var zero *T
	return reflect.TypeOf(zero).Elem()
}

// EpserdeVariantTypes satisfies types.UnionMarker: the variant payload
// types in declaration order, read off the descriptor struct's fields.
func (u *Union[T]) EpserdeVariantTypes() []reflect.Type {
	descType := u.descriptorType()
	n := descType.NumField()
	out := make([]reflect.Type, n)
	for i := 0; i < n; i++ {
		out[i] = descType.Field(i).Type
	}
	return out
}

// EpserdeVariantNames satisfies types.UnionMarker: the variant names, the
// descriptor struct's field names in declaration order.
func (u *Union[T]) EpserdeVariantNames() []string {
	descType := u.descriptorType()
	n := descType.NumField()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = descType.Field(i).Name
	}
	return out
}

// DescriptorType returns the reflect.Type of the never-instantiated
// descriptor struct T, for callers building a Descriptor by hand.
func (u *Union[T]) DescriptorType() reflect.Type {
	return u.descriptorType()
}
