package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// LogOp represents the natural logarithm.
//
// Backward: d(log(x))/dx = 1/x.
type LogOp struct {
	inputs []*tensor.Tensor
}

// NewLogOp creates a new LogOp.
func NewLogOp(x *tensor.Tensor) *LogOp {
	return &LogOp{inputs: []*tensor.Tensor{x}}
}

// Name returns "LogBackward".
func (op *LogOp) Name() string { return "LogBackward" }

// Inputs returns [x].
func (op *LogOp) Inputs() []*tensor.Tensor { return op.inputs }

// Backward computes outputGrad / x.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.inputs[0].Raw())}
}
