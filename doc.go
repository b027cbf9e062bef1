// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

// Package epserde implements ε-copy binary serialization: large contiguous
// subtrees of a value are not reconstructed on deserialization but exposed
// as borrowed views directly onto the backing buffer, while non-contiguous
// subtrees are reconstructed with borrowed leaves.
//
// Every serializable type is classified, by reflection, into one of two
// copy classes: zero-copy types have a fixed-size, pointer-free memory
// image that can be reinterpreted in place; deep-copy types require a
// per-field recursive walk. A type's classification and layout are cached
// per reflect.Type in a Codec; its two independent 64-bit fingerprints
// (structural and representation) are computed from that cached
// description on each serialize or deserialize call.
//
// The on-disk format is native-endian and not portable across
// architectures with a different pointer width or endianness: the
// header encodes enough information to detect and reject such mismatches
// loudly rather than silently misinterpreting bytes.
package epserde
