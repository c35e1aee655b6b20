package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// AddOp represents an element-wise addition operation: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
//
// Note: If broadcasting was used in forward pass, gradients must be
// reduced (summed) along the broadcast dimensions to match input shapes.
type AddOp struct {
	inputs []*tensor.Tensor // [a, b]
}

// NewAddOp creates a new AddOp.
func NewAddOp(a, b *tensor.Tensor) *AddOp {
	return &AddOp{inputs: []*tensor.Tensor{a, b}}
}

// Name returns "AddBackward".
func (op *AddOp) Name() string { return "AddBackward" }

// Inputs returns the input tensors [a, b].
func (op *AddOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes input gradients for addition.
func (op *AddOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	a, b := binaryInputs(op.inputs)
	return []*tensor.RawTensor{
		reduceBroadcast(outputGrad, a.Shape()),
		reduceBroadcast(outputGrad, b.Shape()),
	}
}
