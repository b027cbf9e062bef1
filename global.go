// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

import "sync"

var (
	globalCodec     *Codec
	globalCodecOnce sync.Once
)

// GetGlobalCodec returns the package-level default Codec, constructing it
// on first use (grounded on the teacher's GetGlobalDynSsz/global.go, made
// safe for concurrent first use with sync.Once instead of a bare
// check-then-set).
func GetGlobalCodec() *Codec {
	globalCodecOnce.Do(func() {
		globalCodec = NewCodec()
	})
	return globalCodec
}

// defaultCodec returns GetGlobalCodec() when no options are given, or a
// fresh one-shot Codec otherwise (options alter Codec-wide behavior, so
// they cannot be bolted onto a shared instance after the fact).
func defaultCodec(opts []Option) *Codec {
	if len(opts) == 0 {
		return GetGlobalCodec()
	}
	return NewCodec(opts...)
}
