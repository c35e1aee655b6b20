package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// MatMulOp represents 2-D matrix multiplication: C = A @ B.
//
// Backward pass:
//   - grad_A = outputGrad @ Bᵀ
//   - grad_B = Aᵀ @ outputGrad
type MatMulOp struct {
	inputs []*tensor.Tensor
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b *tensor.Tensor) *MatMulOp {
	return &MatMulOp{inputs: []*tensor.Tensor{a, b}}
}

// Name returns "MmBackward".
func (op *MatMulOp) Name() string { return "MmBackward" }

// Inputs returns [A, B].
func (op *MatMulOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := binaryInputs(op.inputs)
	return []*tensor.RawTensor{
		backend.MatMul(outputGrad, backend.Transpose(b)),
		backend.MatMul(backend.Transpose(a), outputGrad),
	}
}
