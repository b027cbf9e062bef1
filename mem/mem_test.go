// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package mem_test

import (
	"testing"
	"unsafe"

	"github.com/epserde-go/epserde/mem"
)

func TestWrapOwnedAligns(t *testing.T) {
	buf := make([]byte, 7)
	for i := range buf {
		buf[i] = byte(i + 1)
	}
	o := mem.WrapOwned(buf)
	data := o.Bytes()
	if len(data) < len(buf) {
		t.Fatalf("expected the padded buffer to be at least as long as the input")
	}
	for i, b := range buf {
		if data[i] != b {
			t.Fatalf("content mismatch at %d: got %d want %d", i, data[i], b)
		}
	}
	if uintptr(unsafe.Pointer(&data[0]))%16 != 0 {
		t.Fatalf("expected a 16-byte-aligned base address")
	}
}

func TestWrapOwnedEmpty(t *testing.T) {
	o := mem.WrapOwned(nil)
	if len(o.Bytes()) != 0 {
		t.Fatalf("expected an empty buffer")
	}
}

func TestExternalWrapPassthrough(t *testing.T) {
	buf := []byte{1, 2, 3}
	e := mem.Wrap(buf)
	if &e.Bytes()[0] != &buf[0] {
		t.Fatalf("External.Wrap must not copy the input slice")
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestMemCaseBytesAfterClose(t *testing.T) {
	mc := mem.NewMemCase(42, mem.Wrap([]byte{1, 2, 3}))
	if _, err := mc.Bytes(); err != nil {
		t.Fatalf("Bytes before Close: %v", err)
	}
	if err := mc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_, err1 := mc.Bytes()
	_, err2 := mc.Bytes()
	if err1 == nil || err2 == nil {
		t.Fatalf("expected an error reading Bytes after Close")
	}
	if err1.Error() != err2.Error() {
		t.Fatalf("expected a stable error after Close")
	}
}
