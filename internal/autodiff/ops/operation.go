// Package ops defines the backward nodes of the autodiff graph.
//
// Each node implements tensor.GradFn: it remembers the tensors the forward
// operation consumed, plus whatever forward values its derivative needs,
// and maps an output gradient to one gradient per input.
//
// Supported operations:
//   - AddOp, SubOp: d(a±b)/da = 1, d(a±b)/db = ±1
//   - MulOp: d(a*b)/da = b, d(a*b)/db = a
//   - DivOp: d(a/b)/da = 1/b, d(a/b)/db = -a/b²
//   - MatMulOp: d(A@B)/dA = grad@Bᵀ, d(A@B)/dB = Aᵀ@grad
//   - DotOp, TransposeOp, ReshapeOp, StackOp
//   - NegOp, AbsOp, ExpOp, LogOp, ReLUOp, SigmoidOp, TanhOp
//   - SumOp, MeanOp, MulScalarOp, AddScalarOp
//   - NLLLossOp: negative log likelihood over class indices
package ops

import "github.com/born-ml/torchbridge/internal/tensor"

// Operation is the node contract shared by every op in this package.
type Operation = tensor.GradFn

// binaryInputs unpacks the raw values of a two-input node.
func binaryInputs(inputs []*tensor.Tensor) (a, b *tensor.RawTensor) {
	return inputs[0].Raw(), inputs[1].Raw()
}
