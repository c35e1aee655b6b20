package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// SubOp represents element-wise subtraction: output = a - b.
//
// Backward pass:
//   - grad_a = outputGrad
//   - grad_b = -outputGrad
type SubOp struct {
	inputs []*tensor.Tensor
}

// NewSubOp creates a new SubOp.
func NewSubOp(a, b *tensor.Tensor) *SubOp {
	return &SubOp{inputs: []*tensor.Tensor{a, b}}
}

// Name returns "SubBackward".
func (op *SubOp) Name() string { return "SubBackward" }

// Inputs returns [a, b].
func (op *SubOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes input gradients for subtraction.
func (op *SubOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := binaryInputs(op.inputs)
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape()),
		reduceBroadcast(backend.Neg(outputGrad), b.Shape()),
	}
}
