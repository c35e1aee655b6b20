package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// TanhOp represents the hyperbolic tangent.
//
// Backward: d(tanh(x))/dx = 1 - tanh²(x), computed from the saved output.
type TanhOp struct {
	inputs []*tensor.Tensor
	output *tensor.RawTensor
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(x *tensor.Tensor, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{inputs: []*tensor.Tensor{x}, output: output}
}

// Name returns "TanhBackward".
func (op *TanhOp) Name() string { return "TanhBackward" }

// Inputs returns [x].
func (op *TanhOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes outputGrad * (1 - tanh²).
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad, err := tensor.NewRaw(op.output.Shape(), tensor.Float32, op.output.Device())
	if err != nil {
		panic(err)
	}

	src, dst, y := outputGrad.AsFloat32(), grad.AsFloat32(), op.output.AsFloat32()
	for i := range dst {
		dst[i] = src[i] * (1 - y[i]*y[i])
	}
	return []*tensor.RawTensor{grad}
}
