// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package mem

// External wraps a caller-supplied slice the caller already owns or has
// independently mapped. epserde never copies or releases it; Close is a
// no-op, and the caller alone is responsible for the slice's lifetime
// outliving every View built over it (spec.md §9).
type External struct {
	buf []byte
}

// Wrap returns an External backend over buf. buf's base address should
// already satisfy the ε-copy alignment precondition if DeserializeEps
// will be used; DeserializeFull has no such requirement.
func Wrap(buf []byte) *External {
	return &External{buf: buf}
}

func (e *External) Bytes() []byte { return e.buf }
func (e *External) Close() error  { return nil }
