// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package types

import "reflect"

// Struct tag values for the `epserde:"..."` field tag (SPEC_FULL.md §4.1).
// A field tagged fullcopy is walked structurally like any deep-copy field,
// but is never considered for the zero-copy borrow path during ε-copy
// deserialization even if its own type would otherwise qualify — the
// per-field escape hatch for a field whose zero-copy layout is technically
// legal but semantically wrong to alias (e.g. it will be mutated in place
// by the caller after deserialization).
const (
	tagNone     = ""
	tagZeroCopy = "zerocopy"
	tagFullCopy = "fullcopy"
)

// fieldTag returns the tagZeroCopy/tagFullCopy/tagNone value of sf's
// `epserde` struct tag, ignoring any value epserde does not recognize.
func fieldTag(sf reflect.StructField) string {
	v, ok := sf.Tag.Lookup("epserde")
	if !ok {
		return tagNone
	}
	switch v {
	case tagZeroCopy, tagFullCopy:
		return v
	default:
		return tagNone
	}
}
