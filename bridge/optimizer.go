// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/torchbridge/internal/handle"
	"github.com/born-ml/torchbridge/internal/logutil"
	"github.com/born-ml/torchbridge/internal/nn"
	"github.com/born-ml/torchbridge/internal/optim"
)

// parameters resolves tensor handles into optimizer parameters and marks
// them as tracking gradients. The tensors are borrowed: the optimizer never
// destroys them.
func (rt *Runtime) parameters(hs []TensorHandle) ([]*nn.Parameter, error) {
	ts, err := rt.tensorList(hs)
	if err != nil {
		return nil, err
	}
	params := make([]*nn.Parameter, len(ts))
	for i, t := range ts {
		params[i] = nn.NewParameter(fmt.Sprintf("param.%d", i), t)
	}
	return params, nil
}

func (rt *Runtime) register(o optim.Optimizer) OptimizerHandle {
	h := OptimizerHandle(rt.optimizers.Insert(o))
	logutil.Trace("optimizer created", "handle", h, "params", len(o.Parameters()))
	return h
}

// NewAdam creates an Adam optimizer over params with betas (0.9, 0.999)
// and eps 1e-8.
func (rt *Runtime) NewAdam(params []TensorHandle, lr float32) (h OptimizerHandle, err error) {
	defer guard("adam", &err)
	ps, err := rt.parameters(params)
	if err != nil {
		return 0, errors.Wrap(err, "adam")
	}
	o, err := optim.NewAdam(ps, optim.AdamConfig{LR: lr})
	if err != nil {
		return 0, errors.Wrap(err, "adam")
	}
	// The engine config reads a zero LR as "use the default".
	o.SetLR(lr)
	return rt.register(o), nil
}

// NewSGD creates a plain SGD optimizer over params.
func (rt *Runtime) NewSGD(params []TensorHandle, lr float32) (OptimizerHandle, error) {
	return rt.NewSGDWithMomentum(params, lr, 0)
}

// NewSGDWithMomentum creates an SGD optimizer with a velocity buffer per
// parameter.
func (rt *Runtime) NewSGDWithMomentum(params []TensorHandle, lr, momentum float32) (h OptimizerHandle, err error) {
	defer guard("sgd", &err)
	ps, err := rt.parameters(params)
	if err != nil {
		return 0, errors.Wrap(err, "sgd")
	}
	o, err := optim.NewSGD(ps, optim.SGDConfig{LR: lr, Momentum: momentum})
	if err != nil {
		return 0, errors.Wrap(err, "sgd")
	}
	o.SetLR(lr)
	return rt.register(o), nil
}

func (rt *Runtime) optimizer(h OptimizerHandle) (optim.Optimizer, error) {
	o, err := rt.optimizers.Get(handle.ID(h))
	if err != nil {
		return nil, errors.Wrap(err, "optimizer")
	}
	return o, nil
}

// ZeroGrad fills every existing parameter gradient with zeros in place.
func (rt *Runtime) ZeroGrad(h OptimizerHandle) (err error) {
	o, err := rt.optimizer(h)
	if err != nil {
		return err
	}
	defer guard("zero_grad", &err)
	o.ZeroGrad()
	return nil
}

// Step updates every parameter in place from its current gradient. A
// missing gradient counts as zero.
func (rt *Runtime) Step(h OptimizerHandle) (err error) {
	o, err := rt.optimizer(h)
	if err != nil {
		return err
	}
	defer guard("step", &err)
	o.Step()
	return nil
}

// LearningRate returns the optimizer's learning rate.
func (rt *Runtime) LearningRate(h OptimizerHandle) (float32, error) {
	o, err := rt.optimizer(h)
	if err != nil {
		return 0, err
	}
	return o.GetLR(), nil
}

// SetLearningRate changes the optimizer's learning rate.
func (rt *Runtime) SetLearningRate(h OptimizerHandle, lr float32) error {
	o, err := rt.optimizer(h)
	if err != nil {
		return err
	}
	o.SetLR(lr)
	return nil
}

// DestroyOptimizer releases the optimizer and its state. Parameters are
// left untouched.
func (rt *Runtime) DestroyOptimizer(h OptimizerHandle) error {
	if _, err := rt.optimizers.Remove(handle.ID(h)); err != nil {
		return errors.Wrap(err, "destroy optimizer")
	}
	logutil.Trace("optimizer destroyed", "handle", h)
	return nil
}
