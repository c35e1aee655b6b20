package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// DivOp represents element-wise division: output = a / b.
//
// Backward pass (quotient rule):
//   - grad_a = outputGrad / b
//   - grad_b = -outputGrad * a / b²
type DivOp struct {
	inputs []*tensor.Tensor
}

// NewDivOp creates a new DivOp.
func NewDivOp(a, b *tensor.Tensor) *DivOp {
	return &DivOp{inputs: []*tensor.Tensor{a, b}}
}

// Name returns "DivBackward".
func (op *DivOp) Name() string { return "DivBackward" }

// Inputs returns [a, b].
func (op *DivOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes input gradients for division.
func (op *DivOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := binaryInputs(op.inputs)

	gradA := backend.Div(outputGrad, b)

	// -outputGrad * a / (b * b)
	gradB := backend.Neg(backend.Div(backend.Mul(outputGrad, a), backend.Mul(b, b)))

	return []*tensor.RawTensor{
		reduceBroadcast(gradA, a.Shape()),
		reduceBroadcast(gradB, b.Shape()),
	}
}
