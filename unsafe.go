// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

import (
	"reflect"
	"unsafe"
)

// baseAddr returns the address of the first byte of b, or 0 for an empty
// slice (there is nothing to misalign).
func baseAddr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// addressable returns a reflect.Value holding the same data as v but
// guaranteed addressable, copying into a fresh allocation if necessary.
// Grounded on the teacher's getPtr helper (utils.go): reflect.Value read
// out of an interface or a map is frequently not addressable even though
// its bytes are perfectly real.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr.Elem()
}

// bytesOf returns the n bytes of v's memory image as a slice. An
// addressable v is aliased directly; any other v is first copied into a
// fresh allocation (see addressable) and the slice aliases that copy. n
// must not exceed v's type size.
func bytesOf(v reflect.Value, n int) []byte {
	v = addressable(v)
	ptr := unsafe.Pointer(v.UnsafeAddr())
	return unsafe.Slice((*byte)(ptr), n)
}

// reinterpret builds a reflect.Value of type t that aliases the bytes at
// the start of buf, without copying. This is the mechanism behind every
// zero-copy leaf view: buf must stay alive at least as long as the
// returned value is used, which is the backend-lifetime contract a
// MemCase exists to uphold (spec.md §3, §4.5, §9).
//
// Calling .Elem() here, as this function does, is only safe when the
// caller immediately discards the alias by copying it elsewhere (e.g.
// the full-copy path, which always reads into a freshly made buffer
// first, so there is nothing left to alias). A caller that wants the
// alias itself to survive a later reflect.Value.Set or interface boxing
// — both of which perform a typedmemmove copy for Kind Struct/Array —
// must use reinterpretPtr instead and keep the pointer.
func reinterpret(buf []byte, t reflect.Type) reflect.Value {
	ptr := unsafe.Pointer(&buf[0])
	return reflect.NewAt(t, ptr).Elem()
}

// reinterpretPtr builds a reflect.Value of type *t aliasing the bytes at
// the start of buf, without copying and without dereferencing. Unlike
// reinterpret, the returned pointer keeps aliasing buf even after being
// boxed into an interface{} or stored in a struct field, since copying a
// pointer only copies the 8 bytes of the pointer itself, not what it
// points at.
func reinterpretPtr(buf []byte, t reflect.Type) reflect.Value {
	ptr := unsafe.Pointer(&buf[0])
	return reflect.NewAt(t, ptr)
}

// sliceHeader mirrors the runtime layout of a Go slice value: a data
// pointer plus length and capacity words. Building one and reinterpreting
// it as the target slice type is how reinterpretSlice avoids a per-element
// copy when the element type is only known via reflect.Type at runtime
// (the generic unsafe.Slice[T] helper needs T at compile time).
type sliceHeader struct {
	Data unsafe.Pointer
	Len  int
	Cap  int
}

// reinterpretSlice builds a []T view of length n over buf without
// copying, for a Zero element type T of static size elemSize.
func reinterpretSlice(buf []byte, elemType reflect.Type, elemSize, n int) reflect.Value {
	sliceType := reflect.SliceOf(elemType)
	if n == 0 {
		return reflect.MakeSlice(sliceType, 0, 0)
	}
	hdr := sliceHeader{Data: unsafe.Pointer(&buf[0]), Len: n, Cap: n}
	return reflect.NewAt(sliceType, unsafe.Pointer(&hdr)).Elem()
}

// sliceBytes returns the n bytes backing a Zero-class slice v, aliasing
// its array directly — the bulk-write path for a vector of fixed-size
// elements (spec.md §4.4 "leaf path").
func sliceBytes(v reflect.Value, n int) []byte {
	if n == 0 {
		return nil
	}
	ptr := v.UnsafePointer()
	return unsafe.Slice((*byte)(ptr), n)
}

// bytesToString borrows buf as a string without copying or validating
// UTF-8 — the writer produced valid UTF-8 and the type fingerprint guards
// against confusing a string with a byte slice (spec.md §4.5, §9).
func bytesToString(buf []byte) string {
	if len(buf) == 0 {
		return ""
	}
	return unsafe.String(&buf[0], len(buf))
}
