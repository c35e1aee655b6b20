package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// ReshapeOp represents a reshape. The gradient is reshaped back to the
// input's shape; element order is unchanged.
type ReshapeOp struct {
	inputs []*tensor.Tensor
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(x *tensor.Tensor) *ReshapeOp {
	return &ReshapeOp{inputs: []*tensor.Tensor{x}}
}

// Name returns "ReshapeBackward".
func (op *ReshapeOp) Name() string { return "ReshapeBackward" }

// Inputs returns [x].
func (op *ReshapeOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward reshapes the output gradient to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.inputs[0].Shape())}
}
