package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// AbsOp represents |x|.
//
// Backward: grad_x = outputGrad * sign(x). The subgradient at 0 is 0.
type AbsOp struct {
	inputs []*tensor.Tensor
}

// NewAbsOp creates a new AbsOp.
func NewAbsOp(x *tensor.Tensor) *AbsOp {
	return &AbsOp{inputs: []*tensor.Tensor{x}}
}

// Name returns "AbsBackward".
func (op *AbsOp) Name() string { return "AbsBackward" }

// Inputs returns [x].
func (op *AbsOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes outputGrad * sign(x).
func (op *AbsOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Sign(op.inputs[0].Raw()))}
}
