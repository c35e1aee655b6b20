package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// TransposeOp swaps the two axes of a matrix. The gradient is transposed back.
type TransposeOp struct {
	inputs []*tensor.Tensor
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(x *tensor.Tensor) *TransposeOp {
	return &TransposeOp{inputs: []*tensor.Tensor{x}}
}

// Name returns "TBackward".
func (op *TransposeOp) Name() string { return "TBackward" }

// Inputs returns [x].
func (op *TransposeOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward transposes the output gradient.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(outputGrad)}
}
