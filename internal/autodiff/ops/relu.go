package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// ReLUOp represents the rectified linear unit: output = max(0, x).
//
// Backward pass:
//   - grad_x = outputGrad where x > 0, else 0
type ReLUOp struct {
	inputs []*tensor.Tensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x *tensor.Tensor) *ReLUOp {
	return &ReLUOp{inputs: []*tensor.Tensor{x}}
}

// Name returns "ReluBackward".
func (op *ReLUOp) Name() string { return "ReluBackward" }

// Inputs returns [x].
func (op *ReLUOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward masks the output gradient by x > 0.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	x := op.inputs[0].Raw()

	grad, err := tensor.NewRaw(x.Shape(), tensor.Float32, x.Device())
	if err != nil {
		panic(err)
	}

	src, dst, in := outputGrad.AsFloat32(), grad.AsFloat32(), x.AsFloat32()
	for i, v := range in {
		if v > 0 {
			dst[i] = src[i]
		}
	}
	return []*tensor.RawTensor{grad}
}
