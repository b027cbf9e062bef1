// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package mem

// Flags are advisory hints passed to LoadMapped (spec.md §6.3). On the
// Unix backend they translate into madvise(2)/mmap(2) flags; elsewhere
// they are accepted and ignored.
type Flags struct {
	// RandomizeAccess hints the access pattern will be non-sequential
	// (MADV_RANDOM).
	RandomizeAccess bool
	// SequentialAccess hints the access pattern will be mostly sequential
	// (MADV_SEQUENTIAL).
	SequentialAccess bool
	// HugePages requests huge-page backing where the kernel supports it
	// (MAP_HUGETLB). Mapping fails over to regular pages silently if the
	// kernel refuses the request.
	HugePages bool
	// Shared maps MAP_SHARED instead of the default MAP_PRIVATE, so writes
	// through the mapping (normally never performed by this package) would
	// be visible to other mappers. epserde only ever maps read-only; this
	// flag exists for parity with spec.md §6.3 and for callers that reuse
	// the same mapping elsewhere.
	Shared bool
}
