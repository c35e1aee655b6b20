package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// SumOp represents the sum of all elements into a 0-d tensor.
//
// Backward: every input element receives the scalar output gradient.
type SumOp struct {
	inputs []*tensor.Tensor
}

// NewSumOp creates a new SumOp.
func NewSumOp(x *tensor.Tensor) *SumOp {
	return &SumOp{inputs: []*tensor.Tensor{x}}
}

// Name returns "SumBackward".
func (op *SumOp) Name() string { return "SumBackward" }

// Inputs returns [x].
func (op *SumOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Expand(outputGrad, op.inputs[0].Shape())}
}

// MeanOp represents the mean of all elements into a 0-d tensor.
//
// Backward: every input element receives outputGrad / N.
type MeanOp struct {
	inputs []*tensor.Tensor
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(x *tensor.Tensor) *MeanOp {
	return &MeanOp{inputs: []*tensor.Tensor{x}}
}

// Name returns "MeanBackward".
func (op *MeanOp) Name() string { return "MeanBackward" }

// Inputs returns [x].
func (op *MeanOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward broadcasts outputGrad / N to the input shape.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	shape := op.inputs[0].Shape()
	scaled := backend.MulScalar(outputGrad, 1/float32(shape.NumElements()))
	return []*tensor.RawTensor{backend.Expand(scaled, shape)}
}
