// Copyright (c) 2025 The epserde-go Authors
// SPDX-License-Identifier: Apache-2.0
// This file is part of the epserde-go library.

package epserde

import (
	"fmt"
	"os"
)

func defaultLogCb(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Option configures a Codec.
type Option func(*codecOptions)

type codecOptions struct {
	verbose bool
	logCb   func(format string, args ...any)
}

// WithVerbose enables step-by-step tracing of the recursive (de)serialization
// dispatch to the configured log callback (or to the default one, which
// writes to stderr via fmt.Printf-style formatting).
func WithVerbose() Option {
	return func(o *codecOptions) {
		o.verbose = true
	}
}

// WithLogCb installs a callback used for diagnostic messages, in particular
// the once-per-type ZERO_COPY_MISMATCH warning (see Codec.Serialize).
func WithLogCb(logCb func(format string, args ...any)) Option {
	return func(o *codecOptions) {
		o.logCb = logCb
	}
}
