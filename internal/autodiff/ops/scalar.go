package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// MulScalarOp represents output = x * c for a constant c.
type MulScalarOp struct {
	inputs []*tensor.Tensor
	scalar float32
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(x *tensor.Tensor, scalar float32) *MulScalarOp {
	return &MulScalarOp{inputs: []*tensor.Tensor{x}, scalar: scalar}
}

// Name returns "MulBackward".
func (op *MulScalarOp) Name() string { return "MulBackward" }

// Inputs returns [x].
func (op *MulScalarOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes outputGrad * c.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.scalar)}
}

// AddScalarOp represents output = x + c. The gradient passes through unchanged.
type AddScalarOp struct {
	inputs []*tensor.Tensor
}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(x *tensor.Tensor) *AddScalarOp {
	return &AddScalarOp{inputs: []*tensor.Tensor{x}}
}

// Name returns "AddBackward".
func (op *AddScalarOp) Name() string { return "AddBackward" }

// Inputs returns [x].
func (op *AddScalarOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward returns the output gradient.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{outputGrad}
}
