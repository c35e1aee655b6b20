// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the SGD and Adam update rules.
//
// Optimizers update parameter storage in place, outside any autodiff graph:
//
//	opt, err := optim.NewAdam(params, optim.AdamConfig{LR: 0.01})
//	for range steps {
//	    opt.ZeroGrad()
//	    engine.Backward(loss())
//	    opt.Step()
//	}
package optim

import (
	"github.com/born-ml/torchbridge/internal/optim"
	"github.com/born-ml/torchbridge/nn"
)

// Optimizer is implemented by every update rule.
type Optimizer = optim.Optimizer

// Config is the configuration shared by all optimizers.
type Config = optim.Config

// SGD is stochastic gradient descent with optional momentum.
type SGD = optim.SGD

// SGDConfig configures SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer over params.
func NewSGD(params []*nn.Parameter, config SGDConfig) (*SGD, error) {
	return optim.NewSGD(params, config)
}

// Adam is the Adam optimizer with bias correction.
type Adam = optim.Adam

// AdamConfig configures Adam. Zero fields take the usual defaults.
type AdamConfig = optim.AdamConfig

// NewAdam creates an Adam optimizer over params.
func NewAdam(params []*nn.Parameter, config AdamConfig) (*Adam, error) {
	return optim.NewAdam(params, config)
}
