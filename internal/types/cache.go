// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package types

import (
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes Classify per reflect.Type. Concurrent first-lookups of the
// same type are deduplicated through a singleflight.Group rather than the
// teacher's bare sync.RWMutex (typecache.go): classification of a large
// struct graph is pure CPU work, so letting every goroutine racing on a
// cold type redo the same reflective walk is wasted work, not just wasted
// locking.
type Cache struct {
	group singleflight.Group

	mu   sync.RWMutex
	byType map[reflect.Type]*Descriptor
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{byType: make(map[reflect.Type]*Descriptor)}
}

// Get returns the Descriptor for t, building and caching it on first use.
// A classification failure is not cached: a later call may succeed once,
// for example, a Coded implementation is registered on a pointer receiver
// reachable through a different reflect.Type value.
func (c *Cache) Get(t reflect.Type) (*Descriptor, error) {
	c.mu.RLock()
	d, ok := c.byType[t]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	v, err, _ := c.group.Do(t.String()+"@"+t.PkgPath(), func() (any, error) {
		d, err := Classify(t)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.byType[t] = d
		c.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Descriptor), nil
}

// Len reports the number of distinct types currently cached, for tests and
// diagnostics.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byType)
}
