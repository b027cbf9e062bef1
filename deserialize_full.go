// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

import (
	"encoding/binary"
	"fmt"
	"io"
	"reflect"

	"github.com/epserde-go/epserde/internal/fingerprint"
	"github.com/epserde-go/epserde/internal/types"
)

// DeserializeFull reads a header and reconstructs an owned, fully copied
// value of type T from r (spec.md §4.5 "full-copy"). T must be a concrete
// type matching what Serialize was called with.
func DeserializeFull[T any](r io.Reader, opts ...Option) (T, error) {
	var zero T
	c := defaultCodec(opts)

	t := reflect.TypeOf(zero)
	if t == nil {
		return zero, fmt.Errorf("epserde: DeserializeFull requires a concrete type parameter, not an interface")
	}

	d, err := c.descriptorOf(t)
	if err != nil {
		return zero, err
	}

	rw := NewReaderWithPos(r)
	header, err := readHeaderReader(rw)
	if err != nil {
		return zero, err
	}

	fp := fingerprint.Compute(d)
	if err := checkFingerprint(header, fp, typeNameOf(t)); err != nil {
		return zero, err
	}
	if err := rw.PadAlignAndCheck(rootAlign(d)); err != nil {
		return zero, err
	}

	c.tracef("epserde: deserializing (full-copy) %s (%s)", t, d.Class)

	val, err := c.unmarshalFullValue(rw, t, d)
	if err != nil {
		return zero, err
	}
	return val.Interface().(T), nil
}

func (c *Codec) unmarshalFullValue(r *ReaderWithPos, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	if d.Coded {
		return c.unmarshalCoded(r, t)
	}

	switch d.Shape {
	case types.ShapePrimitive:
		return c.unmarshalZeroCopyFull(r, t, d)

	case types.ShapeArray, types.ShapeStruct:
		if d.Class == types.ClassZero {
			return c.unmarshalZeroCopyFull(r, t, d)
		}
		if d.Shape == types.ShapeArray {
			return c.unmarshalArrayFull(r, t, d)
		}
		return c.unmarshalStructFull(r, t, d)

	case types.ShapeSlice:
		return c.unmarshalSliceFull(r, t, d)

	case types.ShapeString:
		return c.unmarshalStringFull(r)

	case types.ShapePointer:
		return c.unmarshalPointerFull(r, t, d)

	case types.ShapeUnion:
		return c.unmarshalUnionFull(r, t, d)

	default:
		return reflect.Value{}, &types.ClassificationError{Type: t, Reason: types.ErrUnsupportedKind}
	}
}

func (c *Codec) unmarshalCoded(r *ReaderWithPos, t reflect.Type) (reflect.Value, error) {
	if err := r.PadAlignAndCheck(1); err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(t)
	coded, ok := ptr.Interface().(Coded)
	if !ok {
		return reflect.Value{}, fmt.Errorf("epserde: %s declares Coded but does not implement UnmarshalEps", t)
	}
	if err := readCoded(r, coded); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

func (c *Codec) unmarshalZeroCopyFull(r *ReaderWithPos, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	if err := r.PadAlignAndCheck(d.Align); err != nil {
		return reflect.Value{}, err
	}
	if d.Size == 0 {
		return reflect.Zero(t), nil
	}
	buf := make([]byte, d.Size)
	if err := r.ReadExact(buf); err != nil {
		return reflect.Value{}, err
	}
	return reinterpret(buf, t), nil
}

func (c *Codec) unmarshalArrayFull(r *ReaderWithPos, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	if err := r.PadAlignAndCheck(d.Align); err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(t).Elem()
	for i := 0; i < d.ArrayLen; i++ {
		ev, err := c.unmarshalFullValue(r, d.Elem.Type, d.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

func (c *Codec) unmarshalStructFull(r *ReaderWithPos, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	if err := r.PadAlignAndCheck(d.Align); err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(t).Elem()
	for _, f := range d.Fields {
		if err := r.PadAlignAndCheck(f.Desc.Align); err != nil {
			return reflect.Value{}, err
		}
		fv, err := c.unmarshalFullValue(r, f.Desc.Type, f.Desc)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s.%s: %w", t.Name(), f.Name, err)
		}
		out.Field(f.Index).Set(fv)
	}
	return out, nil
}

func (c *Codec) unmarshalSliceFull(r *ReaderWithPos, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	n, err := readLen(r)
	if err != nil {
		return reflect.Value{}, err
	}
	if n == 0 {
		return reflect.MakeSlice(t, 0, 0), nil
	}

	if d.Elem.Class == types.ClassZero {
		if err := r.PadAlignAndCheck(d.Elem.Align); err != nil {
			return reflect.Value{}, err
		}
		buf := make([]byte, int(n)*d.Elem.Size)
		if len(buf) > 0 {
			if err := r.ReadExact(buf); err != nil {
				return reflect.Value{}, err
			}
		}
		return reinterpretSlice(buf, d.Elem.Type, d.Elem.Size, int(n)), nil
	}

	out := reflect.MakeSlice(t, int(n), int(n))
	for i := 0; i < int(n); i++ {
		ev, err := c.unmarshalFullValue(r, d.Elem.Type, d.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

func (c *Codec) unmarshalStringFull(r *ReaderWithPos) (reflect.Value, error) {
	n, err := readLen(r)
	if err != nil {
		return reflect.Value{}, err
	}
	if n == 0 {
		return reflect.ValueOf(""), nil
	}
	buf := make([]byte, n)
	if err := r.ReadExact(buf); err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(string(buf)), nil
}

func (c *Codec) unmarshalPointerFull(r *ReaderWithPos, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	var presence [1]byte
	if err := r.ReadExact(presence[:]); err != nil {
		return reflect.Value{}, err
	}
	if presence[0] == 0 {
		return reflect.Zero(t), nil
	}
	if err := r.PadAlignAndCheck(d.Elem.Align); err != nil {
		return reflect.Value{}, err
	}
	ev, err := c.unmarshalFullValue(r, d.Elem.Type, d.Elem)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(d.Elem.Type)
	ptr.Elem().Set(ev)
	return ptr, nil
}

func (c *Codec) unmarshalUnionFull(r *ReaderWithPos, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	var tagByte [1]byte
	if err := r.ReadExact(tagByte[:]); err != nil {
		return reflect.Value{}, err
	}
	tag := tagByte[0]
	if int(tag) >= len(d.Variants) {
		return reflect.Value{}, &InvalidTagError{Tag: tag}
	}
	variantDesc := d.Variants[tag]
	if err := r.PadAlignAndCheck(variantDesc.Align); err != nil {
		return reflect.Value{}, err
	}
	payload, err := c.unmarshalFullValue(r, variantDesc.Type, variantDesc)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(t).Elem()
	out.FieldByName("Variant").SetUint(uint64(tag))
	out.FieldByName("Data").Set(reflect.ValueOf(payload.Interface()))
	return out, nil
}

func readLen(r *ReaderWithPos) (uint64, error) {
	if err := r.PadAlignAndCheck(8); err != nil {
		return 0, err
	}
	var buf [8]byte
	if err := r.ReadExact(buf[:]); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint64(buf[:]), nil
}
