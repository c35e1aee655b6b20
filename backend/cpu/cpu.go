// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Element-wise kernels and matrix multiplication split their work across
// goroutines once a tensor is large enough; the worker count follows
// TORCHBRIDGE_NUM_THREADS. The backend holds no mutable state and is safe
// for concurrent use.
package cpu

import (
	internalcpu "github.com/born-ml/torchbridge/internal/backend/cpu"
	"github.com/born-ml/torchbridge/tensor"
)

// Backend is the CPU implementation of tensor.Backend.
type Backend = internalcpu.CPUBackend

var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend with the default parallel configuration.
func New() *Backend {
	return internalcpu.New()
}
