// Package optim implements optimization algorithms for training.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with optional momentum
//   - Adam: Adaptive Moment Estimation
//
// Design inspired by PyTorch's torch.optim: optimizers read the gradients
// accumulated on each parameter tensor and update the values in place.
//
// Example usage:
//
//	optimizer := optim.NewAdam(params, optim.AdamConfig{LR: 0.001})
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    loss := computeLoss(engine, params, data)
//	    engine.Backward(loss)
//	    optimizer.Step()
//	}
package optim

import (
	"errors"
	"fmt"

	"github.com/born-ml/torchbridge/internal/nn"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// ErrNoParameters is returned when an optimizer is built over an empty list.
var ErrNoParameters = errors.New("optimizer got an empty parameter list")

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply gradient updates to parameters
//   - ZeroGrad: Reset gradients before next iteration
//   - GetLR / SetLR: Learning rate access for monitoring and scheduling
type Optimizer interface {
	// Step applies one update to every parameter in place.
	//
	// The update is not recorded in any autodiff graph. A parameter without
	// a gradient is treated as having a zero gradient.
	Step()

	// ZeroGrad fills every existing parameter gradient with zeros.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate.
	SetLR(lr float32)

	// Parameters returns the parameters the optimizer updates.
	Parameters() []*nn.Parameter
}

var (
	_ Optimizer = (*SGD)(nil)
	_ Optimizer = (*Adam)(nil)
)

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// gradientData returns the parameter gradient values, or nil when the
// parameter has not received a gradient yet.
func gradientData(param *nn.Parameter) []float32 {
	grad := param.Grad()
	if grad == nil {
		return nil
	}
	return grad.Data()
}

// zeroGrad resets the gradients of all params.
func zeroGrad(params []*nn.Parameter) {
	for _, param := range params {
		param.ZeroGrad()
	}
}

// checkParams validates a parameter list at construction time.
func checkParams(params []*nn.Parameter) error {
	if len(params) == 0 {
		return ErrNoParameters
	}
	for _, p := range params {
		if p.Tensor().DType() != tensor.Float32 {
			return fmt.Errorf("optimizer can only optimize float32 tensors, but parameter %s is %s", p.Name(), p.Tensor().DType())
		}
	}
	return nil
}
