// Package nn provides trainable parameters and loss functions built on the
// autodiff engine.
package nn

import (
	"github.com/born-ml/torchbridge/internal/tensor"
)

// Parameter represents a trainable tensor.
//
// The parameter does not own the tensor: values are updated in place by
// optimizers and gradients live on the tensor itself, so any other holder of
// the tensor observes both.
//
// Example:
//
//	// Create a weight parameter
//	weight := nn.NewParameter("weight", weightTensor)
//
//	// Get gradient after backward pass
//	grad := weight.Grad()
type Parameter struct {
	name   string         // Parameter name (e.g., "weight", "param.0")
	tensor *tensor.Tensor // The parameter tensor
}

// NewParameter creates a new trainable parameter and marks t as requiring
// gradients.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	t.SetRequiresGrad(true)
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the accumulated gradient.
//
// Returns nil if no gradient has been computed yet (before backward pass).
func (p *Parameter) Grad() *tensor.Tensor {
	return p.tensor.Grad()
}

// ZeroGrad fills an existing gradient with zeros in place.
//
// The gradient tensor is kept, so references to it stay valid.
func (p *Parameter) ZeroGrad() {
	p.tensor.ZeroGrad()
}
