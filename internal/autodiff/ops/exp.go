package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// ExpOp represents e^x.
//
// Backward: d(exp(x))/dx = exp(x), so the saved output is reused.
type ExpOp struct {
	inputs []*tensor.Tensor
	output *tensor.RawTensor
}

// NewExpOp creates a new ExpOp.
func NewExpOp(x *tensor.Tensor, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{inputs: []*tensor.Tensor{x}, output: output}
}

// Name returns "ExpBackward".
func (op *ExpOp) Name() string { return "ExpBackward" }

// Inputs returns [x].
func (op *ExpOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes outputGrad * exp(x).
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}
