// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package types

import (
	"fmt"
	"reflect"
)

// ErrZeroCopyField is returned when a type declares itself zero-copy
// (EpserdeZeroCopy) but some field is not itself zero-copy, or the type
// contains indirection — a fatal configuration error detected the first
// time the type is analyzed (spec.md §4.1).
var ErrZeroCopyField = fmt.Errorf("epserde: type declared zero-copy has a non-zero-copy field")

// ErrConflictingClass is returned when a type declares itself both
// zero-copy and full-copy (spec.md §4.1).
var ErrConflictingClass = fmt.Errorf("epserde: type declared both zero-copy and full-copy")

// ErrUnsupportedKind is returned for a reflect.Kind this framework cannot
// classify (map, chan, func, complex, unsafe.Pointer, or an interface that
// is not a registered sum type) and that does not supply its own Coded
// implementation.
var ErrUnsupportedKind = fmt.Errorf("epserde: unsupported type")

// ClassificationError wraps one of the above with the offending type.
type ClassificationError struct {
	Type   reflect.Type
	Reason error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Type)
}

func (e *ClassificationError) Unwrap() error { return e.Reason }
