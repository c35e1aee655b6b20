package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// NegOp represents negation: output = -x, grad_x = -outputGrad.
type NegOp struct {
	inputs []*tensor.Tensor
}

// NewNegOp creates a new NegOp.
func NewNegOp(x *tensor.Tensor) *NegOp {
	return &NegOp{inputs: []*tensor.Tensor{x}}
}

// Name returns "NegBackward".
func (op *NegOp) Name() string { return "NegBackward" }

// Inputs returns [x].
func (op *NegOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward negates the output gradient.
func (op *NegOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Neg(outputGrad)}
}
