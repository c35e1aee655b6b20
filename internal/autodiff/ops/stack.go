package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// StackOp joins k equally shaped tensors along a new axis.
//
// Backward pass: the output gradient is unbound along the stacked axis and
// slice j flows to input j.
type StackOp struct {
	inputs []*tensor.Tensor
	dim    int // normalized axis in the output
}

// NewStackOp creates a new StackOp. dim must already be normalized.
func NewStackOp(inputs []*tensor.Tensor, dim int) *StackOp {
	return &StackOp{inputs: inputs, dim: dim}
}

// Name returns "StackBackward".
func (op *StackOp) Name() string { return "StackBackward" }

// Inputs returns the stacked tensors.
func (op *StackOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward splits the output gradient back into per-input slices.
func (op *StackOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return backend.Unbind(outputGrad, op.dim)
}
