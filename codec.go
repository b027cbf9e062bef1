// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

import (
	"reflect"
	"sync"

	"github.com/epserde-go/epserde/internal/types"
)

// Codec is a serializer/deserializer that caches type classification
// across operations. It is safe for concurrent use (the underlying
// types.Cache is); reuse the same Codec across calls rather than
// constructing one per operation (spec.md §5, grounded on the teacher's
// DynSsz: "recommended to reuse the same instance across operations to
// benefit from caching").
type Codec struct {
	cache *types.Cache
	opts  codecOptions

	warnedMu sync.Mutex
	warned   map[reflect.Type]bool
}

// NewCodec builds a Codec with its own type cache.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{cache: types.NewCache(), warned: make(map[reflect.Type]bool)}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

func (c *Codec) warnOnce(t reflect.Type, fn func()) {
	c.warnedMu.Lock()
	if c.warned[t] {
		c.warnedMu.Unlock()
		return
	}
	c.warned[t] = true
	c.warnedMu.Unlock()
	fn()
}

func (c *Codec) descriptorOf(t reflect.Type) (*types.Descriptor, error) {
	return c.cache.Get(t)
}

func (c *Codec) tracef(format string, args ...any) {
	if !c.opts.verbose {
		return
	}
	if c.opts.logCb != nil {
		c.opts.logCb(format, args...)
		return
	}
	defaultLogCb(format, args...)
}

// warnZeroCopyMismatch logs the advisory spec.md §4.1 ZERO_COPY_MISMATCH
// diagnostic at most once per type per Codec lifetime.
func (c *Codec) warnZeroCopyMismatch(d *types.Descriptor) {
	if !d.ZeroCopyMismatch {
		return
	}
	c.warnOnce(d.Type, func() {
		logf := c.opts.logCb
		if logf == nil {
			logf = defaultLogCb
		}
		logf("epserde: %s qualifies as zero-copy but is not declared EpserdeZeroCopy; "+
			"ε-copy deserialization will fall back to a deep copy for it", d.Type)
	})
}
