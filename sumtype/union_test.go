// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package sumtype_test

import (
	"testing"

	"github.com/epserde-go/epserde/sumtype"
)

type circle struct{ Radius float64 }
type rectangle struct{ W, H float64 }

func TestNewValid(t *testing.T) {
	u, err := sumtype.New[struct {
		Circle    circle
		Rectangle rectangle
	}](0, circle{Radius: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if u.Variant != 0 {
		t.Fatalf("expected variant 0, got %d", u.Variant)
	}
}

func TestNewVariantOutOfRange(t *testing.T) {
	_, err := sumtype.New[struct {
		Circle    circle
		Rectangle rectangle
	}](2, circle{})
	if err == nil {
		t.Fatalf("expected an out-of-range error")
	}
}

func TestNewTypeMismatch(t *testing.T) {
	_, err := sumtype.New[struct {
		Circle    circle
		Rectangle rectangle
	}](0, rectangle{W: 1, H: 1})
	if err == nil {
		t.Fatalf("expected a type-mismatch error")
	}
}

func TestVariantTypesAndNames(t *testing.T) {
	u, err := sumtype.New[struct {
		Circle    circle
		Rectangle rectangle
	}](1, rectangle{W: 3, H: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	names := u.EpserdeVariantNames()
	if len(names) != 2 || names[0] != "Circle" || names[1] != "Rectangle" {
		t.Fatalf("unexpected variant names: %v", names)
	}
	types := u.EpserdeVariantTypes()
	if len(types) != 2 {
		t.Fatalf("expected 2 variant types, got %d", len(types))
	}
}
