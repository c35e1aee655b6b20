package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// DotOp represents the inner product of two vectors: output = Σ aᵢbᵢ.
//
// Backward pass (outputGrad is 0-d):
//   - grad_a = outputGrad * b
//   - grad_b = outputGrad * a
type DotOp struct {
	inputs []*tensor.Tensor
}

// NewDotOp creates a new DotOp.
func NewDotOp(a, b *tensor.Tensor) *DotOp {
	return &DotOp{inputs: []*tensor.Tensor{a, b}}
}

// Name returns "DotBackward".
func (op *DotOp) Name() string { return "DotBackward" }

// Inputs returns [a, b].
func (op *DotOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward scales each vector by the scalar output gradient.
func (op *DotOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := binaryInputs(op.inputs)
	return []*tensor.RawTensor{
		backend.Mul(outputGrad, b),
		backend.Mul(outputGrad, a),
	}
}
