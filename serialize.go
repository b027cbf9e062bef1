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

// Serialize writes v's header and value to w using the default Codec.
func Serialize(v any, w io.Writer, opts ...Option) (int, error) {
	return defaultCodec(opts).Serialize(v, w)
}

// SerializeWithSchema behaves like Serialize but additionally returns the
// field schema recorded during the write (spec.md §3 "Schema entity").
func SerializeWithSchema(v any, w io.Writer, opts ...Option) (*Schema, int, error) {
	return defaultCodec(opts).SerializeWithSchema(v, w)
}

// Serialize writes the header (spec.md §6.1) followed by v's recursively
// written value.
func (c *Codec) Serialize(v any, w io.Writer) (int, error) {
	schema, n, err := c.serialize(v, w, false)
	_ = schema
	return n, err
}

// SerializeWithSchema is Serialize plus the recorded Schema.
func (c *Codec) SerializeWithSchema(v any, w io.Writer) (*Schema, int, error) {
	return c.serialize(v, w, true)
}

func (c *Codec) serialize(v any, w io.Writer, withSchema bool) (*Schema, int, error) {
	if v == nil {
		return nil, 0, fmt.Errorf("epserde: cannot serialize a nil value")
	}
	rv := reflect.ValueOf(v)
	// Dereferencing a pointer root gives every descendant field an
	// addressable reflect.Value, which is what lets a pointer-receiver
	// Coded.MarshalEps be found anywhere in the tree (see asCoded). A
	// non-pointer root still works for everything except that case.
	if rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv = rv.Elem()
	}
	t := rv.Type()

	d, err := c.descriptorOf(t)
	if err != nil {
		return nil, 0, err
	}
	c.warnZeroCopyMismatch(d)

	fp := fingerprint.Compute(d)
	fw := NewFieldWriter(w, withSchema)

	if err := writeHeader(fw, typeNameOf(t), fp, rootAlign(d)); err != nil {
		return nil, fw.Pos(), err
	}

	c.tracef("epserde: serializing %s (%s)", t, d.Class)

	if err := c.marshalValue(fw, rv, d); err != nil {
		return nil, fw.Pos(), err
	}

	return fw.Schema(), fw.Pos(), nil
}

func rootAlign(d *types.Descriptor) int {
	if d.Align <= 0 {
		return 1
	}
	return d.Align
}

func typeNameOf(t reflect.Type) string {
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// marshalValue recursively writes v's wire representation per d's shape
// (spec.md §4.4). It is the L4 engine's single dispatch point.
func (c *Codec) marshalValue(fw *FieldWriter, v reflect.Value, d *types.Descriptor) error {
	if d.Coded {
		if coded, ok := asCoded(v); ok {
			if err := fw.PadTo(1); err != nil {
				return err
			}
			return writeCoded(fw, coded)
		}
		return fmt.Errorf("epserde: %s declares Coded but does not implement MarshalEps", v.Type())
	}

	switch d.Shape {
	case types.ShapePrimitive:
		// A primitive has no children to walk deeply; an epserde:"fullcopy"
		// override on a primitive field is a no-op at the byte level.
		return c.marshalZeroCopy(fw, v, d)

	case types.ShapeArray, types.ShapeStruct:
		if d.Class == types.ClassZero {
			return c.marshalZeroCopy(fw, v, d)
		}
		if d.Shape == types.ShapeArray {
			return c.marshalArrayDeep(fw, v, d)
		}
		return c.marshalStructDeep(fw, v, d)

	case types.ShapeSlice:
		return c.marshalSlice(fw, v, d)

	case types.ShapeString:
		return c.marshalString(fw, v)

	case types.ShapePointer:
		return c.marshalPointer(fw, v, d)

	case types.ShapeUnion:
		return c.marshalUnion(fw, v, d)

	default:
		return &types.ClassificationError{Type: v.Type(), Reason: types.ErrUnsupportedKind}
	}
}

// marshalZeroCopy bulk-writes v's raw memory image: this is the leaf path,
// valid for any ClassZero descriptor regardless of shape (spec.md §4.1,
// §4.4 "leaf path").
func (c *Codec) marshalZeroCopy(fw *FieldWriter, v reflect.Value, d *types.Descriptor) error {
	if err := fw.PadTo(d.Align); err != nil {
		return err
	}
	if d.Size == 0 {
		return nil
	}
	_, err := fw.Write(bytesOf(v, d.Size))
	return err
}

func (c *Codec) marshalArrayDeep(fw *FieldWriter, v reflect.Value, d *types.Descriptor) error {
	if err := fw.PadTo(d.Align); err != nil {
		return err
	}
	for i := 0; i < d.ArrayLen; i++ {
		if err := c.marshalValue(fw, v.Index(i), d.Elem); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) marshalStructDeep(fw *FieldWriter, v reflect.Value, d *types.Descriptor) error {
	if err := fw.PadTo(d.Align); err != nil {
		return err
	}
	for _, f := range d.Fields {
		fv := v.Field(f.Index)
		fname := f.Name
		talign := f.Desc.Align
		if talign <= 0 {
			talign = 1
		}
		err := fw.AddFieldAligned(fname, typeNameOf(f.Desc.Type), talign, func() error {
			return c.marshalValue(fw, fv, f.Desc)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) marshalSlice(fw *FieldWriter, v reflect.Value, d *types.Descriptor) error {
	n := v.Len()
	if err := writeLen(fw, uint64(n)); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if d.Elem.Class == types.ClassZero {
		if err := fw.PadTo(d.Elem.Align); err != nil {
			return err
		}
		if d.Elem.Size > 0 {
			if _, err := fw.Write(sliceBytes(v, n*d.Elem.Size)); err != nil {
				return err
			}
		}
		return nil
	}
	for i := 0; i < n; i++ {
		if err := c.marshalValue(fw, v.Index(i), d.Elem); err != nil {
			return err
		}
	}
	return nil
}

func (c *Codec) marshalString(fw *FieldWriter, v reflect.Value) error {
	s := v.String()
	if err := writeLen(fw, uint64(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	_, err := fw.Write([]byte(s))
	return err
}

func (c *Codec) marshalPointer(fw *FieldWriter, v reflect.Value, d *types.Descriptor) error {
	present := byte(0)
	if !v.IsNil() {
		present = 1
	}
	if _, err := fw.Write([]byte{present}); err != nil {
		return err
	}
	if present == 0 {
		return nil
	}
	if err := fw.PadTo(d.Elem.Align); err != nil {
		return err
	}
	return c.marshalValue(fw, v.Elem(), d.Elem)
}

func (c *Codec) marshalUnion(fw *FieldWriter, v reflect.Value, d *types.Descriptor) error {
	_, ok := v.Interface().(types.UnionMarker)
	if !ok && v.CanAddr() {
		_, ok = v.Addr().Interface().(types.UnionMarker)
	}
	if !ok {
		return fmt.Errorf("epserde: %s does not implement UnionMarker", v.Type())
	}

	variantField := v
	if v.Kind() != reflect.Struct {
		variantField = reflect.Indirect(v)
	}
	tagVal := variantField.FieldByName("Variant")
	dataVal := variantField.FieldByName("Data")
	if !tagVal.IsValid() || !dataVal.IsValid() {
		return fmt.Errorf("epserde: %s does not expose Variant/Data fields", v.Type())
	}
	tag := uint8(tagVal.Uint())
	if int(tag) >= len(d.Variants) {
		return &InvalidTagError{Tag: tag}
	}

	if _, err := fw.Write([]byte{tag}); err != nil {
		return err
	}

	payload := dataVal.Elem()
	variantDesc := d.Variants[tag]
	if err := fw.PadTo(variantDesc.Align); err != nil {
		return err
	}
	return c.marshalValue(fw, payload, variantDesc)
}

func writeLen(fw *FieldWriter, n uint64) error {
	if err := fw.PadTo(8); err != nil {
		return err
	}
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], n)
	_, err := fw.Write(buf[:])
	return err
}
