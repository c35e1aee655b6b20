// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode automatic differentiation.
//
// An Engine wraps a backend. Operations whose inputs require gradients
// record a backward node on their output, and Backward walks those nodes
// from a scalar output to the leaves:
//
//	engine := autodiff.New(cpu.New())
//	w := tensor.Full(tensor.Shape{3}, 0.5, engine.Inner()).RequireGrad()
//	engine.Backward(engine.Sum(engine.Mul(w, w)))
//	fmt.Println(w.Grad().Data())
package autodiff

import (
	"github.com/born-ml/torchbridge/internal/autodiff"
	"github.com/born-ml/torchbridge/tensor"
)

// Engine is a backend with gradient recording.
type Engine[B tensor.Backend] = autodiff.Engine[B]

// New wraps backend with gradient recording.
func New[B tensor.Backend](backend B) *Engine[B] {
	return autodiff.New(backend)
}
