// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides trainable parameters and loss functions.
package nn

import (
	"github.com/born-ml/torchbridge/internal/nn"
	"github.com/born-ml/torchbridge/tensor"
)

// Parameter is a named tensor updated by an optimizer.
type Parameter = nn.Parameter

// NewParameter wraps t and marks it as requiring gradients.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}

// Engine is the set of operations losses are built from.
// *autodiff.Engine satisfies it.
type Engine = nn.Engine

// Reduction selects how per-element losses are combined.
type Reduction = nn.Reduction

// Reduction modes.
const (
	ReductionMean Reduction = nn.ReductionMean
	ReductionSum  Reduction = nn.ReductionSum
)

// ParseReduction maps "mean" or "sum" to a Reduction.
func ParseReduction(s string) (Reduction, error) {
	return nn.ParseReduction(s)
}

// MSELoss is the mean squared error.
type MSELoss = nn.MSELoss

// NewMSELoss creates a mean-reduced MSE loss.
func NewMSELoss(engine Engine) *MSELoss {
	return nn.NewMSELoss(engine)
}

// L1Loss is the mean absolute error.
type L1Loss = nn.L1Loss

// NewL1Loss creates a mean-reduced L1 loss.
func NewL1Loss(engine Engine) *L1Loss {
	return nn.NewL1Loss(engine)
}

// NLLLoss is the negative log likelihood over log-probabilities.
type NLLLoss = nn.NLLLoss

// NewNLLLoss creates a mean-reduced NLL loss.
func NewNLLLoss(engine Engine) *NLLLoss {
	return nn.NewNLLLoss(engine)
}
