// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package types_test

import (
	"reflect"
	"testing"

	. "github.com/epserde-go/epserde/internal/types"
)

type plainTriple struct {
	A uint64
	B uint64
	C int32
}

type declaredZero struct {
	X, Y uint64
}

func (declaredZero) EpserdeZeroCopy() {}

type badZero struct {
	S string
}

func (badZero) EpserdeZeroCopy() {}

type bothDeclared struct{}

func (bothDeclared) EpserdeZeroCopy() {}
func (bothDeclared) EpserdeFullCopy() {}

func TestClassifyPrimitive(t *testing.T) {
	d, err := Classify(reflect.TypeOf(uint64(0)))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if d.Class != ClassZero || d.Shape != ShapePrimitive {
		t.Fatalf("got class=%v shape=%v", d.Class, d.Shape)
	}
	if d.Size != 8 || d.Align != 8 {
		t.Fatalf("got size=%d align=%d", d.Size, d.Align)
	}
}

func TestClassifyStructWithoutDeclaration(t *testing.T) {
	d, err := Classify(reflect.TypeOf(plainTriple{}))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if d.Class != ClassDeep {
		t.Fatalf("expected ClassDeep for an undeclared struct, got %v", d.Class)
	}
	if !d.ZeroCopyMismatch {
		t.Fatalf("expected ZeroCopyMismatch=true: every field qualifies but the type is undeclared")
	}
}

func TestClassifyDeclaredZeroCopy(t *testing.T) {
	d, err := Classify(reflect.TypeOf(declaredZero{}))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if d.Class != ClassZero {
		t.Fatalf("expected ClassZero, got %v", d.Class)
	}
	if d.Size != int(reflect.TypeOf(declaredZero{}).Size()) {
		t.Fatalf("size mismatch: got %d", d.Size)
	}
}

func TestClassifyZeroCopyViolation(t *testing.T) {
	_, err := Classify(reflect.TypeOf(badZero{}))
	if err == nil {
		t.Fatalf("expected an error: a string field cannot be zero-copy")
	}
}

func TestClassifyConflictingDeclaration(t *testing.T) {
	_, err := Classify(reflect.TypeOf(bothDeclared{}))
	if err == nil {
		t.Fatalf("expected ErrConflictingClass")
	}
}

func TestClassifySliceAndString(t *testing.T) {
	d, err := Classify(reflect.TypeOf([]uint32(nil)))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if d.Shape != ShapeSlice || d.Elem.Class != ClassZero {
		t.Fatalf("got shape=%v elemClass=%v", d.Shape, d.Elem.Class)
	}

	sd, err := Classify(reflect.TypeOf(""))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if sd.Shape != ShapeString {
		t.Fatalf("got shape=%v", sd.Shape)
	}
}

func TestClassifyFieldTagOverride(t *testing.T) {
	type overridden struct {
		A uint64 `epserde:"fullcopy"`
		B uint64
	}
	d, err := Classify(reflect.TypeOf(overridden{}))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !d.Fields[0].FullCopyOverride {
		t.Fatalf("expected field A to carry FullCopyOverride")
	}
	if d.Fields[0].Desc.Class != ClassFull {
		t.Fatalf("expected field A's class to be forced to ClassFull, got %v", d.Fields[0].Desc.Class)
	}
}

func TestClassifyCyclicType(t *testing.T) {
	type node struct {
		Next *node
	}
	_, err := Classify(reflect.TypeOf(node{}))
	if err == nil {
		t.Fatalf("expected ErrCyclicType for a self-referential pointer field")
	}
}
