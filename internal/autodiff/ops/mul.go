package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// MulOp represents element-wise multiplication: output = a * b.
//
// Backward pass (product rule):
//   - grad_a = outputGrad * b
//   - grad_b = outputGrad * a
type MulOp struct {
	inputs []*tensor.Tensor
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b *tensor.Tensor) *MulOp {
	return &MulOp{inputs: []*tensor.Tensor{a, b}}
}

// Name returns "MulBackward".
func (op *MulOp) Name() string { return "MulBackward" }

// Inputs returns [a, b].
func (op *MulOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := binaryInputs(op.inputs)
	return []*tensor.RawTensor{
		reduceBroadcast(backend.Mul(outputGrad, b), a.Shape()),
		reduceBroadcast(backend.Mul(outputGrad, a), b.Shape()),
	}
}
