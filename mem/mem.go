// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

// Package mem implements the scoped memory backends of spec.md §3/§4.5/§9
// (L6): a Backend owns the bytes a deserialized view borrows, and a
// MemCase pairs such a value with the backend it was built over so the two
// travel together. Nothing stops a caller from keeping a reference into
// the bytes after Close (Go has no borrow checker — see DESIGN.md's Open
// Questions entry on this weaker-than-Rust guarantee).
package mem

import "fmt"

// Backend owns a contiguous byte buffer and knows how to release it.
// Owned, Mapped, and External each implement Backend.
type Backend interface {
	// Bytes returns the backend's buffer. The slice is valid until Close
	// is called.
	Bytes() []byte
	// Close releases the backend's resources (unmaps a mapped file, or is
	// a no-op for an owned/external buffer already managed by the Go
	// garbage collector).
	Close() error
}

// MemCase pairs a deserialized value of type V with the Backend whose
// Bytes() it was built over, per spec.md §9: "the view and the backend
// that produced it must travel together". Calling Close releases the
// backend; V must not be used afterward if it borrows from the backend.
type MemCase[V any] struct {
	Value   V
	backend Backend
	closed  bool
}

// NewMemCase wraps value together with the backend it was deserialized
// from.
func NewMemCase[V any](value V, backend Backend) *MemCase[V] {
	return &MemCase[V]{Value: value, backend: backend}
}

// Close releases the underlying backend. Subsequent calls to Bytes
// report errClosed.
func (m *MemCase[V]) Close() error {
	if m.closed || m.backend == nil {
		m.closed = true
		return nil
	}
	m.closed = true
	return m.backend.Close()
}

// Backend exposes the underlying backend, for callers that need to probe
// alignment or length without unwrapping Value.
func (m *MemCase[V]) Backend() Backend {
	return m.backend
}

// Bytes returns the backing buffer Value was built over, or errClosed if
// Close has already been called.
func (m *MemCase[V]) Bytes() ([]byte, error) {
	if m.closed {
		return nil, errClosed
	}
	if m.backend == nil {
		return nil, nil
	}
	return m.backend.Bytes(), nil
}

// errClosed is returned by Bytes() calls against an already-closed backend.
var errClosed = fmt.Errorf("epserde/mem: backend is closed")
