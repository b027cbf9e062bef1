// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde_test

import (
	"bytes"
	"errors"
	"testing"
	"unsafe"

	. "github.com/epserde-go/epserde"
	"github.com/epserde-go/epserde/mem"
	"github.com/epserde-go/epserde/sumtype"
)

// scenario 1: fixed-size array of integers.
func TestRoundTripFixedArray(t *testing.T) {
	in := [5]uint64{1, 2, 3, 4, 5}

	var buf bytes.Buffer
	if _, err := Serialize(in, &buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	full, err := DeserializeFull[[5]uint64](bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DeserializeFull: %v", err)
	}
	if full != in {
		t.Fatalf("full-copy mismatch: got %v want %v", full, in)
	}

	backend := mem.WrapOwned(buf.Bytes())
	view, err := DeserializeEps[[5]uint64](backend)
	if err != nil {
		t.Fatalf("DeserializeEps: %v", err)
	}
	defer view.Close()
	if view.Value() != in {
		t.Fatalf("eps mismatch: got %v want %v", view.Value(), in)
	}
	assertAliasesBackend(t, unsafe.Pointer(view.Ptr()), unsafe.Sizeof(in), backend)
}

// assertAliasesBackend fails the test unless the memory at ptr (of size n
// bytes) falls entirely within backend's byte range, confirming the ε-copy
// result genuinely borrows rather than having been copied into a separate
// allocation.
func assertAliasesBackend(t *testing.T, ptr unsafe.Pointer, n uintptr, backend mem.Backend) {
	t.Helper()
	addr := uintptr(ptr)
	base := uintptr(unsafe.Pointer(&backend.Bytes()[0]))
	end := base + uintptr(len(backend.Bytes()))
	if addr < base || addr+n > end {
		t.Fatalf("expected address range [%#x, %#x) to lie within backend range [%#x, %#x)", addr, addr+n, base, end)
	}
}

// scenario 2: vector of vectors of integers.
func TestRoundTripNestedSlices(t *testing.T) {
	in := [][]uint64{{1, 2, 3}, {4, 5}}

	var buf bytes.Buffer
	if _, err := Serialize(in, &buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	full, err := DeserializeFull[[][]uint64](bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DeserializeFull: %v", err)
	}
	if len(full) != 2 || len(full[0]) != 3 || len(full[1]) != 2 {
		t.Fatalf("full-copy shape mismatch: %v", full)
	}

	backend := mem.WrapOwned(buf.Bytes())
	view, err := DeserializeEps[[][]uint64](backend)
	if err != nil {
		t.Fatalf("DeserializeEps: %v", err)
	}
	defer view.Close()
	if len(view.Value()) != 2 || len(view.Value()[0]) != 3 || len(view.Value()[1]) != 2 {
		t.Fatalf("eps shape mismatch: %v", view.Value())
	}
	canon := Canonicalize(view)
	for i := range in {
		if len(canon[i]) != len(in[i]) {
			t.Fatalf("canonicalize length mismatch at %d", i)
		}
		for j := range in[i] {
			if canon[i][j] != in[i][j] {
				t.Fatalf("canonicalize value mismatch at [%d][%d]", i, j)
			}
		}
	}
}

// scenario 3: vector of strings.
func TestRoundTripStringSlice(t *testing.T) {
	in := []string{"A", "V"}

	var buf bytes.Buffer
	if _, err := Serialize(in, &buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	full, err := DeserializeFull[[]string](bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DeserializeFull: %v", err)
	}
	if len(full) != 2 || full[0] != "A" || full[1] != "V" {
		t.Fatalf("full-copy mismatch: %v", full)
	}

	backend := mem.WrapOwned(buf.Bytes())
	view, err := DeserializeEps[[]string](backend)
	if err != nil {
		t.Fatalf("DeserializeEps: %v", err)
	}
	defer view.Close()
	if len(view.Value()) != 2 || view.Value()[0] != "A" || view.Value()[1] != "V" {
		t.Fatalf("eps mismatch: %v", view.Value())
	}
}

// scenario 4: zero-copy struct of three scalar fields.
type ScalarTriple struct {
	A uint64
	B uint64
	C int32
}

func (ScalarTriple) EpserdeZeroCopy() {}

func TestRoundTripZeroCopyStruct(t *testing.T) {
	in := ScalarTriple{A: 7, B: 9, C: -3}

	var buf bytes.Buffer
	n, err := Serialize(in, &buf)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	full, err := DeserializeFull[ScalarTriple](bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DeserializeFull: %v", err)
	}
	if full != in {
		t.Fatalf("full-copy mismatch: got %+v want %+v", full, in)
	}

	backend := mem.WrapOwned(buf.Bytes())
	view, err := DeserializeEps[ScalarTriple](backend)
	if err != nil {
		t.Fatalf("DeserializeEps: %v", err)
	}
	defer view.Close()
	if view.Value() != in {
		t.Fatalf("eps mismatch: got %+v want %+v", view.Value(), in)
	}
	if n == 0 {
		t.Fatalf("expected a non-zero byte count")
	}
	assertAliasesBackend(t, unsafe.Pointer(view.Ptr()), unsafe.Sizeof(in), backend)
}

// scenario 5: sum type with four variants.
type Unit struct{}
type Pair struct{ X, Y uint64 }
type Labeled struct {
	Name  string
	Value uint64
}

type fourVariants = sumtype.Union[struct {
	Unit
	Pair
	uint64
	Labeled
}]

func TestRoundTripUnionVariants(t *testing.T) {
	cases := []struct {
		variant uint8
		data    any
	}{
		{0, Unit{}},
		{1, Pair{X: 1, Y: 2}},
		{2, uint64(42)},
		{3, Labeled{Name: "n", Value: 5}},
	}

	for _, tc := range cases {
		u, err := sumtype.New[struct {
			Unit
			Pair
			uint64
			Labeled
		}](tc.variant, tc.data)
		if err != nil {
			t.Fatalf("variant %d: New: %v", tc.variant, err)
		}

		var buf bytes.Buffer
		if _, err := Serialize(u, &buf); err != nil {
			t.Fatalf("variant %d: Serialize: %v", tc.variant, err)
		}
		if got := buf.Bytes(); len(got) == 0 {
			t.Fatalf("variant %d: empty output", tc.variant)
		}

		full, err := DeserializeFull[fourVariants](bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("variant %d: DeserializeFull: %v", tc.variant, err)
		}
		if full.Variant != tc.variant {
			t.Fatalf("variant %d: tag mismatch, got %d", tc.variant, full.Variant)
		}
	}
}

func TestInvalidTag(t *testing.T) {
	u, err := sumtype.New[struct {
		Unit
		Pair
		uint64
		Labeled
	}](0, Unit{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var buf bytes.Buffer
	if _, err := Serialize(u, &buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	raw := buf.Bytes()
	corrupted := append([]byte(nil), raw...)
	// The payload for variant 0 (Unit{}) is zero bytes, so the tag byte is
	// the very last byte written.
	corrupted[len(corrupted)-1] = 4

	_, err = DeserializeFull[fourVariants](bytes.NewReader(corrupted))
	if err == nil {
		t.Fatalf("expected InvalidTag error")
	}
	var tagErr *InvalidTagError
	if !errors.As(err, &tagErr) {
		t.Fatalf("expected *InvalidTagError, got %T: %v", err, err)
	}
	if tagErr.Tag != 4 {
		t.Fatalf("expected tag 4, got %d", tagErr.Tag)
	}
}

// scenario 6: type-mismatch detection.
func TestWrongTypeHash(t *testing.T) {
	in := []uint32{1, 2, 3}

	var buf bytes.Buffer
	if _, err := Serialize(in, &buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	_, err := DeserializeFull[[]uint64](bytes.NewReader(buf.Bytes()))
	if err == nil {
		t.Fatalf("expected WrongTypeHash error")
	}
	var hashErr *TypeHashError
	if !errors.As(err, &hashErr) {
		t.Fatalf("expected *TypeHashError, got %T: %v", err, err)
	}
	if hashErr.ExpectedName == "" || hashErr.GotName == "" {
		t.Fatalf("expected populated type names, got %+v", hashErr)
	}
}

func TestDeterminism(t *testing.T) {
	in := ScalarTriple{A: 1, B: 2, C: 3}

	var buf1, buf2 bytes.Buffer
	if _, err := Serialize(in, &buf1); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, err := Serialize(in, &buf2); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if !bytes.Equal(buf1.Bytes(), buf2.Bytes()) {
		t.Fatalf("serialization is not deterministic")
	}
}

func TestEpsAlignmentViolation(t *testing.T) {
	in := [5]uint64{1, 2, 3, 4, 5}
	var buf bytes.Buffer
	if _, err := Serialize(in, &buf); err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	misaligned := make([]byte, buf.Len()+1)
	copy(misaligned[1:], buf.Bytes())
	_, err := DeserializeEps[[5]uint64](mem.Wrap(misaligned[1:]))
	// The external backend is not guaranteed aligned; if this particular
	// allocation happened to land on an aligned boundary the test would be
	// a false negative, but make([]byte, n) over-allocated by one and
	// offset by one is aligned only with vanishing probability.
	if err == nil {
		t.Skip("backing allocation happened to be aligned; cannot exercise Alignment error deterministically")
	}
}
