// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package types

import (
	"fmt"
	"reflect"
)

// ErrCyclicType is returned for a type whose definition recurses through
// itself without an intervening Coded implementation to break the cycle.
var ErrCyclicType = fmt.Errorf("epserde: cyclic type is not supported")

var byteType = reflect.TypeOf(byte(0))

// Classify builds the Descriptor for t, recursively classifying every
// reachable field/element type. It does not cache; callers needing
// memoization across calls should go through a Cache (cache.go).
func Classify(t reflect.Type) (*Descriptor, error) {
	return classify(t, map[reflect.Type]bool{})
}

func classify(t reflect.Type, building map[reflect.Type]bool) (*Descriptor, error) {
	if isCoded(t) {
		return &Descriptor{Type: t, Kind: t.Kind(), Class: ClassFull, Shape: ShapeStruct, Coded: true, Align: 1}, nil
	}

	if isUnion(t) {
		return classifyUnion(t, building)
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return &Descriptor{
			Type: t, Kind: t.Kind(), Class: ClassZero, Shape: ShapePrimitive,
			Align: t.Align(), Size: int(t.Size()),
		}, nil

	case reflect.Array:
		return classifyArray(t, building)

	case reflect.Slice:
		if t.Elem() == byteType || t == reflect.TypeOf([]byte(nil)) {
			return classifySlice(t, building)
		}
		return classifySlice(t, building)

	case reflect.String:
		return &Descriptor{Type: t, Kind: reflect.String, Class: ClassDeep, Shape: ShapeString, Align: 8,
			Elem: &Descriptor{Type: byteType, Kind: reflect.Uint8, Class: ClassZero, Shape: ShapePrimitive, Align: 1, Size: 1}}, nil

	case reflect.Ptr:
		return classifyPointer(t, building)

	case reflect.Struct:
		return classifyStruct(t, building)

	default:
		return nil, &ClassificationError{Type: t, Reason: ErrUnsupportedKind}
	}
}

func classifyArray(t reflect.Type, building map[reflect.Type]bool) (*Descriptor, error) {
	elem, err := classifyField(t.Elem(), building)
	if err != nil {
		return nil, err
	}
	d := &Descriptor{
		Type: t, Kind: reflect.Array, Shape: ShapeArray,
		Elem: elem, ArrayLen: t.Len(), Align: t.Align(),
	}
	if elem.Class == ClassZero {
		d.Class = ClassZero
		d.Size = int(t.Size())
	} else {
		d.Class = ClassDeep
	}
	return d, nil
}

func classifySlice(t reflect.Type, building map[reflect.Type]bool) (*Descriptor, error) {
	elem, err := classifyField(t.Elem(), building)
	if err != nil {
		return nil, err
	}
	return &Descriptor{
		Type: t, Kind: reflect.Slice, Shape: ShapeSlice,
		Class: ClassDeep, Elem: elem, Align: 8,
	}, nil
}

func classifyPointer(t reflect.Type, building map[reflect.Type]bool) (*Descriptor, error) {
	elem, err := classifyField(t.Elem(), building)
	if err != nil {
		return nil, err
	}
	return &Descriptor{
		Type: t, Kind: reflect.Ptr, Shape: ShapePointer,
		Class: ClassDeep, Elem: elem, Align: 1,
	}, nil
}

func classifyUnion(t reflect.Type, building map[reflect.Type]bool) (*Descriptor, error) {
	var markerVal reflect.Value
	switch {
	case t.Kind() == reflect.Ptr:
		markerVal = reflect.New(t.Elem())
	case t.Implements(unionMarkerType):
		markerVal = reflect.Zero(t)
	default:
		// Only *t implements UnionMarker (e.g. sumtype.Union[T]'s methods
		// have pointer receivers): build an addressable *t instead.
		markerVal = reflect.New(t)
	}
	marker := markerVal.Interface().(UnionMarker)
	variantTypes := marker.EpserdeVariantTypes()
	names := marker.EpserdeVariantNames()

	variants := make([]*Descriptor, len(variantTypes))
	for i, vt := range variantTypes {
		vd, err := classifyField(vt, building)
		if err != nil {
			return nil, err
		}
		variants[i] = vd
	}
	return &Descriptor{
		Type: t, Kind: t.Kind(), Class: ClassDeep, Shape: ShapeUnion,
		Align: 1, Variants: variants, VariantNames: names,
	}, nil
}

func classifyStruct(t reflect.Type, building map[reflect.Type]bool) (*Descriptor, error) {
	zeroDeclared := declaresZeroCopy(t)
	fullDeclared := declaresFullCopy(t)
	if zeroDeclared && fullDeclared {
		return nil, &ClassificationError{Type: t, Reason: ErrConflictingClass}
	}

	n := t.NumField()
	fields := make([]Field, 0, n)
	allFieldsZero := true

	for i := 0; i < n; i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		fd, err := classifyField(sf.Type, building)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t.Name(), sf.Name, err)
		}
		forceFull := fieldTag(sf) == tagFullCopy
		if forceFull {
			fd = &Descriptor{Type: fd.Type, Kind: fd.Kind, Class: ClassFull, Shape: fd.Shape,
				Align: fd.Align, Size: fd.Size, Elem: fd.Elem, ArrayLen: fd.ArrayLen,
				Fields: fd.Fields, Variants: fd.Variants, VariantNames: fd.VariantNames}
		}
		if fd.Class != ClassZero {
			allFieldsZero = false
		}
		fields = append(fields, Field{Name: sf.Name, Index: i, Desc: fd, Offset: sf.Offset, FullCopyOverride: forceFull})
	}

	d := &Descriptor{Type: t, Kind: reflect.Struct, Shape: ShapeStruct, Align: t.Align(), Fields: fields}

	switch {
	case zeroDeclared:
		if !allFieldsZero || n == 0 && t.Size() > 0 {
			return nil, &ClassificationError{Type: t, Reason: ErrZeroCopyField}
		}
		d.Class = ClassZero
		d.Size = int(t.Size())
	case fullDeclared:
		d.Class = ClassFull
	default:
		d.Class = ClassDeep
		d.ZeroCopyMismatch = allFieldsZero && len(fields) > 0
	}
	return d, nil
}

// classifyField recurses with cycle detection: a type may not reappear on
// its own build stack (ErrCyclicType), but may reappear as a sibling.
func classifyField(t reflect.Type, building map[reflect.Type]bool) (*Descriptor, error) {
	if building[t] {
		return nil, &ClassificationError{Type: t, Reason: ErrCyclicType}
	}
	building[t] = true
	defer delete(building, t)
	return classify(t, building)
}
