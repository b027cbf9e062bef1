// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package fingerprint_test

import (
	"reflect"
	"testing"

	"github.com/epserde-go/epserde/internal/fingerprint"
	"github.com/epserde-go/epserde/internal/types"
)

type pairAB struct {
	A uint64
	B int32
}

type pairABRenamed struct {
	A uint64
	Z int32
}

type declaredZero struct{ X, Y uint64 }

func (declaredZero) EpserdeZeroCopy() {}

func descOf(t *testing.T, v any) *types.Descriptor {
	t.Helper()
	d, err := types.Classify(reflect.TypeOf(v))
	if err != nil {
		t.Fatalf("Classify(%T): %v", v, err)
	}
	return d
}

func TestComputeIsDeterministic(t *testing.T) {
	d := descOf(t, pairAB{})
	p1 := fingerprint.Compute(d)
	p2 := fingerprint.Compute(d)
	if p1 != p2 {
		t.Fatalf("Compute is not deterministic: %+v vs %+v", p1, p2)
	}
}

func TestComputeDistinguishesStructuralDifference(t *testing.T) {
	p1 := fingerprint.Compute(descOf(t, pairAB{}))
	p2 := fingerprint.Compute(descOf(t, pairABRenamed{}))
	if p1.TypeHash == p2.TypeHash {
		t.Fatalf("renaming a field should change type_hash")
	}
}

func TestComputeStableAcrossRepeatedClassification(t *testing.T) {
	// Classify is called twice independently (no shared cache) to confirm
	// the hash depends only on the type, not on incidental Descriptor
	// pointer identity or map iteration order.
	d1 := descOf(t, pairAB{})
	d2 := descOf(t, pairAB{})
	p1 := fingerprint.Compute(d1)
	p2 := fingerprint.Compute(d2)
	if p1 != p2 {
		t.Fatalf("two classifications of the same type produced different fingerprints: %+v vs %+v", p1, p2)
	}
}

func TestReprHashDistinguishesClass(t *testing.T) {
	p1 := fingerprint.Compute(descOf(t, pairAB{}))
	p2 := fingerprint.Compute(descOf(t, declaredZero{}))
	if p1.TypeReprHash == p2.TypeReprHash {
		t.Fatalf("a differently-classed, differently-shaped type should not collide on type_repr_hash")
	}
}
