// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/epserde-go/epserde/internal/fingerprint"
	"github.com/epserde-go/epserde/internal/types"
	"github.com/epserde-go/epserde/mem"
)

// View is the result of ε-copy deserialization: Value borrows memory
// directly from Backend wherever the type's classification allowed it
// (spec.md §3, §4.5, §9). View holds a pointer internally rather than a
// plain T so that a ClassZero root (a bare zero-copy struct or array,
// spec.md §8.3 scenarios 1 and 4) keeps aliasing Backend's bytes even
// across a reflect.Value.Set or interface-boxing step, both of which
// would otherwise perform a typedmemmove copy of a Kind Struct/Array
// value (see reinterpretPtr). Close releases Backend; Value/Ptr must not
// be used afterward. Go has no borrow checker to enforce this at compile
// time — see DESIGN.md's Open Questions entry on this weaker-than-the-
// original guarantee.
type View[T any] struct {
	ptr     *T
	backend mem.Backend
}

// Value dereferences the view, reading T's current bytes out of Backend.
// For a ClassZero root this re-reads Backend on every call rather than
// freezing a stale copy at construction time: mutating Backend's bytes
// between two calls to Value changes what the second call returns.
func (v *View[T]) Value() T { return *v.ptr }

// Ptr returns the pointer Value dereferences, for a caller that wants to
// avoid even the read-time copy a T return value implies.
func (v *View[T]) Ptr() *T { return v.ptr }

// Close releases the backend Value was built over.
func (v *View[T]) Close() error {
	if v.backend == nil {
		return nil
	}
	return v.backend.Close()
}

// Backend exposes the underlying backend, e.g. to re-check alignment.
func (v *View[T]) Backend() mem.Backend { return v.backend }

// DeserializeEps validates backend's header and reconstructs a View[T]
// whose contiguous subtrees alias backend's bytes directly instead of
// being copied (spec.md §4.5 "ε-copy"). backend must outlive the returned
// View.
func DeserializeEps[T any](backend mem.Backend, opts ...Option) (*View[T], error) {
	var zero T
	c := defaultCodec(opts)

	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("epserde: DeserializeEps requires a concrete type parameter, not an interface")
	}

	d, err := c.descriptorOf(t)
	if err != nil {
		return nil, err
	}

	cur := NewSliceCursor(backend.Bytes())
	header, err := readHeaderCursor(cur)
	if err != nil {
		return nil, err
	}

	fp := fingerprint.Compute(d)
	if err := checkFingerprint(header, fp, typeNameOf(t)); err != nil {
		return nil, err
	}

	if !cur.BaseAligned(maxAlign(d)) {
		return nil, ErrAlignment
	}
	if err := cur.PadAlign(rootAlign(d)); err != nil {
		return nil, err
	}

	c.tracef("epserde: deserializing (ε-copy) %s (%s)", t, d.Class)

	// A ClassZero root (bare zero-copy struct/array/primitive) is handled
	// specially: unmarshalZeroCopyEpsPtr returns a genuine *T pointing
	// directly into backend's bytes, which View then keeps as-is. Any
	// other shape (slice, string, pointer, union, or a Deep struct/array)
	// is assembled as a T value by unmarshalEpsValue — already borrowing
	// whatever contiguous Zero-class runs it could along the way — and is
	// then boxed into a single fresh *T, which costs one top-level copy
	// of the assembled spine but preserves every leaf-level borrow inside it.
	if d.Class == types.ClassZero {
		ptrVal, err := c.unmarshalZeroCopyEpsPtr(cur, t, d)
		if err != nil {
			return nil, err
		}
		return &View[T]{ptr: ptrVal.Interface().(*T), backend: backend}, nil
	}

	val, err := c.unmarshalEpsValue(cur, t, d)
	if err != nil {
		return nil, err
	}
	ptr := reflect.New(t)
	ptr.Elem().Set(val)

	return &View[T]{ptr: ptr.Interface().(*T), backend: backend}, nil
}

// maxAlign returns the strongest alignment requirement reachable from d,
// recursing into every element/field/variant descriptor. The ε-copy base-
// alignment precondition (spec.md §4.5) must hold against this value, not
// just the root type's own Align, since a Deep root (e.g. a union, Align 1
// at the top level) can still bottom out in a ClassZero leaf that needs a
// stronger alignment than the root itself does.
func maxAlign(d *types.Descriptor) int {
	best := d.Align
	if d.Elem != nil {
		if a := maxAlign(d.Elem); a > best {
			best = a
		}
	}
	for _, f := range d.Fields {
		if a := maxAlign(f.Desc); a > best {
			best = a
		}
	}
	for _, v := range d.Variants {
		if a := maxAlign(v); a > best {
			best = a
		}
	}
	return best
}

// Canonicalize converts an ε-copy View into a fully owned copy, useful
// for round-trip testing or for a caller that wants to keep the value
// after closing the backend (spec.md §8.1).
func Canonicalize[T any](v *View[T]) T {
	out := deepCloneReflect(reflect.ValueOf(v.Value()))
	return out.Interface().(T)
}

func deepCloneReflect(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCloneReflect(v.Index(i)))
		}
		return out
	case reflect.String:
		return reflect.ValueOf(string([]byte(v.String())))
	case reflect.Ptr:
		if v.IsNil() {
			return v
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(deepCloneReflect(v.Elem()))
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCloneReflect(v.Index(i)))
		}
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			if !out.Field(i).CanSet() {
				continue
			}
			out.Field(i).Set(deepCloneReflect(v.Field(i)))
		}
		return out
	default:
		return v
	}
}

func (c *Codec) unmarshalEpsValue(cur *SliceCursor, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	if d.Coded {
		return c.unmarshalCodedEps(cur, t)
	}
	if d.Class == types.ClassFull {
		// A full-copy subtree is decoded into owned memory, so nothing
		// below it borrows from cur.
		rw := &ReaderWithPos{r: cursorReader{cur}, pos: cur.Pos()}
		return c.unmarshalFullValue(rw, t, d)
	}

	switch d.Shape {
	case types.ShapePrimitive:
		return c.unmarshalZeroCopyEps(cur, t, d)

	case types.ShapeArray, types.ShapeStruct:
		if d.Class == types.ClassZero {
			return c.unmarshalZeroCopyEps(cur, t, d)
		}
		if d.Shape == types.ShapeArray {
			return c.unmarshalArrayEps(cur, t, d)
		}
		return c.unmarshalStructEps(cur, t, d)

	case types.ShapeSlice:
		return c.unmarshalSliceEps(cur, t, d)

	case types.ShapeString:
		return c.unmarshalStringEps(cur)

	case types.ShapePointer:
		return c.unmarshalPointerEps(cur, t, d)

	case types.ShapeUnion:
		return c.unmarshalUnionEps(cur, t, d)

	default:
		return reflect.Value{}, &types.ClassificationError{Type: t, Reason: types.ErrUnsupportedKind}
	}
}

// cursorReader adapts a SliceCursor's remaining bytes to io.Reader for a
// Coded value's UnmarshalEps, advancing the cursor as bytes are consumed.
type cursorReader struct{ c *SliceCursor }

func (cr cursorReader) Read(p []byte) (int, error) {
	n := len(p)
	if n > cr.c.Len() {
		n = cr.c.Len()
	}
	if n == 0 {
		return 0, fmt.Errorf("epserde: EOF reading Coded payload")
	}
	buf, err := cr.c.Take(n)
	if err != nil {
		return 0, err
	}
	copy(p, buf)
	return n, nil
}

func (c *Codec) unmarshalCodedEps(cur *SliceCursor, t reflect.Type) (reflect.Value, error) {
	if err := cur.PadAlign(1); err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(t)
	coded, ok := ptr.Interface().(Coded)
	if !ok {
		return reflect.Value{}, fmt.Errorf("epserde: %s declares Coded but does not implement UnmarshalEps", t)
	}
	if err := coded.UnmarshalEps(cursorReader{cur}); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

// unmarshalZeroCopyEps returns a T value aliasing cur's buffer. It is only
// safe to use as-is when the caller immediately discards the alias by
// copying it elsewhere (e.g. into a Deep parent's field via Set, or a
// slice element) — which is exactly what every caller of this function
// does. A caller that wants the alias to survive that copy (the root
// value itself) must go through unmarshalZeroCopyEpsPtr instead.
func (c *Codec) unmarshalZeroCopyEps(cur *SliceCursor, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	ptrVal, err := c.unmarshalZeroCopyEpsPtr(cur, t, d)
	if err != nil {
		return reflect.Value{}, err
	}
	return ptrVal.Elem(), nil
}

// unmarshalZeroCopyEpsPtr returns a *T pointing directly into cur's
// backing buffer, with no copy anywhere in its construction. This is the
// one function in the ε-copy path that can hand back a value genuinely
// aliasing the backend after being boxed or stored elsewhere, since
// copying a pointer copies only the pointer, not its target.
func (c *Codec) unmarshalZeroCopyEpsPtr(cur *SliceCursor, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	if err := cur.PadAlign(d.Align); err != nil {
		return reflect.Value{}, err
	}
	if d.Size == 0 {
		return reflect.New(t), nil
	}
	buf, err := cur.Take(d.Size)
	if err != nil {
		return reflect.Value{}, err
	}
	return reinterpretPtr(buf, t), nil
}

// unmarshalArrayEps assembles a Deep array by recursively unmarshaling each
// element into a freshly allocated out value. When an element is itself
// ClassZero, unmarshalEpsValue still routes it through unmarshalZeroCopyEps,
// whose result is then Set into out.Index(i) — Go copies a Kind-Array
// element on Set regardless, since out's backing array is a new allocation
// distinct from the cursor's buffer. There is no way to splice a borrowed
// element into a fresh array without that copy; only a whole-array Zero
// value (handled by unmarshalZeroCopyEpsPtr, not this function) can alias
// the cursor buffer directly.
func (c *Codec) unmarshalArrayEps(cur *SliceCursor, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	if err := cur.PadAlign(d.Align); err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(t).Elem()
	for i := 0; i < d.ArrayLen; i++ {
		ev, err := c.unmarshalEpsValue(cur, d.Elem.Type, d.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

// unmarshalStructEps assembles a Deep struct field by field, the same way
// unmarshalArrayEps assembles an array. A ClassZero field is still copied
// into out.Field(f.Index) by Set: the field's static Go type is fixed by
// the struct declaration and can never be swapped for a pointer, so there
// is no borrowed alias to thread through here. Only a bare ClassZero value
// at the root (unmarshalZeroCopyEpsPtr, used directly by DeserializeEps)
// keeps its pointer into the cursor buffer.
func (c *Codec) unmarshalStructEps(cur *SliceCursor, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	if err := cur.PadAlign(d.Align); err != nil {
		return reflect.Value{}, err
	}
	out := reflect.New(t).Elem()
	for _, f := range d.Fields {
		if err := cur.PadAlign(f.Desc.Align); err != nil {
			return reflect.Value{}, err
		}
		fv, err := c.unmarshalEpsValue(cur, f.Desc.Type, f.Desc)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s.%s: %w", t.Name(), f.Name, err)
		}
		out.Field(f.Index).Set(fv)
	}
	return out, nil
}

func (c *Codec) unmarshalSliceEps(cur *SliceCursor, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	n, err := readLenCursor(cur)
	if err != nil {
		return reflect.Value{}, err
	}
	if n == 0 {
		return reflect.MakeSlice(t, 0, 0), nil
	}

	if d.Elem.Class == types.ClassZero {
		if err := cur.PadAlign(d.Elem.Align); err != nil {
			return reflect.Value{}, err
		}
		buf, err := cur.Take(int(n) * d.Elem.Size)
		if err != nil {
			return reflect.Value{}, err
		}
		return reinterpretSlice(buf, d.Elem.Type, d.Elem.Size, int(n)), nil
	}

	out := reflect.MakeSlice(t, int(n), int(n))
	for i := 0; i < int(n); i++ {
		ev, err := c.unmarshalEpsValue(cur, d.Elem.Type, d.Elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

func (c *Codec) unmarshalStringEps(cur *SliceCursor) (reflect.Value, error) {
	n, err := readLenCursor(cur)
	if err != nil {
		return reflect.Value{}, err
	}
	if n == 0 {
		return reflect.ValueOf(""), nil
	}
	buf, err := cur.Take(int(n))
	if err != nil {
		return reflect.Value{}, err
	}
	return reflect.ValueOf(bytesToString(buf)), nil
}

func (c *Codec) unmarshalPointerEps(cur *SliceCursor, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	presence, err := cur.Take(1)
	if err != nil {
		return reflect.Value{}, err
	}
	if presence[0] == 0 {
		return reflect.Zero(t), nil
	}
	if err := cur.PadAlign(d.Elem.Align); err != nil {
		return reflect.Value{}, err
	}
	ev, err := c.unmarshalEpsValue(cur, d.Elem.Type, d.Elem)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(d.Elem.Type)
	ptr.Elem().Set(ev)
	return ptr, nil
}

func (c *Codec) unmarshalUnionEps(cur *SliceCursor, t reflect.Type, d *types.Descriptor) (reflect.Value, error) {
	tagBuf, err := cur.Take(1)
	if err != nil {
		return reflect.Value{}, err
	}
	tag := tagBuf[0]
	if int(tag) >= len(d.Variants) {
		return reflect.Value{}, &InvalidTagError{Tag: tag}
	}
	variantDesc := d.Variants[tag]
	if err := cur.PadAlign(variantDesc.Align); err != nil {
		return reflect.Value{}, err
	}
	payload, err := c.unmarshalEpsValue(cur, variantDesc.Type, variantDesc)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(t).Elem()
	out.FieldByName("Variant").SetUint(uint64(tag))
	out.FieldByName("Data").Set(reflect.ValueOf(payload.Interface()))
	return out, nil
}

func readLenCursor(cur *SliceCursor) (uint64, error) {
	if err := cur.PadAlign(8); err != nil {
		return 0, err
	}
	buf, err := cur.Take(8)
	if err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint64(buf), nil
}
