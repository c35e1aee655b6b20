package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// SigmoidOp represents σ(x) = 1 / (1 + e^-x).
//
// Backward: dσ/dx = σ(x) * (1 - σ(x)), computed from the saved output.
type SigmoidOp struct {
	inputs []*tensor.Tensor
	output *tensor.RawTensor
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(x *tensor.Tensor, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{inputs: []*tensor.Tensor{x}, output: output}
}

// Name returns "SigmoidBackward".
func (op *SigmoidOp) Name() string { return "SigmoidBackward" }

// Inputs returns [x].
func (op *SigmoidOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes outputGrad * σ * (1 - σ).
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grad, err := tensor.NewRaw(op.output.Shape(), tensor.Float32, op.output.Device())
	if err != nil {
		panic(err)
	}

	src, dst, s := outputGrad.AsFloat32(), grad.AsFloat32(), op.output.AsFloat32()
	for i := range dst {
		dst[i] = src[i] * s[i] * (1 - s[i])
	}
	return []*tensor.RawTensor{grad}
}
