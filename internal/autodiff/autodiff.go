// Package autodiff implements reverse-mode automatic differentiation.
//
// Engine[B] wraps any Backend implementation and exposes differentiable
// functions over *tensor.Tensor. When at least one input tracks gradients,
// the result carries a backward node (see package ops) pointing at its
// inputs, so every output owns the slice of the graph that produced it.
//
// Architecture:
//   - Decorator pattern: Engine[B] wraps any Backend implementation
//   - Graph: per-tensor GradFn nodes form a DAG from outputs back to leaves
//   - Operation nodes: each op (Add, Mul, MatMul, ...) implements its backward pass
//   - Reverse-mode AD: Backward walks the DAG in reverse topological order
//
// Usage:
//
//	engine := autodiff.New(cpu.New())
//
//	x, _ := tensor.FromSlice([]float32{2.0}, tensor.Shape{1}, engine.Inner())
//	x.SetRequiresGrad(true)
//	y := engine.Sum(engine.Mul(x, x)) // y = x²
//
//	engine.Backward(y)
//	fmt.Println(x.Grad().Data()) // dy/dx = 2x = [4]
package autodiff

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/autodiff/ops"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// Engine wraps a Backend and adds automatic differentiation.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Engine[B tensor.Backend] struct {
	inner B // Wrapped backend (CPU)
}

// New creates a new Engine wrapping the given backend.
func New[B tensor.Backend](backend B) *Engine[B] {
	return &Engine[B]{inner: backend}
}

// Inner returns the wrapped backend for direct access.
func (e *Engine[B]) Inner() B {
	return e.inner
}

// Backend returns the wrapped backend as a tensor.Backend, for callers that
// are not parameterized over B.
func (e *Engine[B]) Backend() tensor.Backend {
	return e.inner
}

// Name returns the engine name.
func (e *Engine[B]) Name() string {
	return "Autodiff(" + e.inner.Name() + ")"
}

// Device returns the compute device.
func (e *Engine[B]) Device() tensor.Device {
	return e.inner.Device()
}

// wrap creates the output tensor and attaches op when any input tracks gradients.
func (e *Engine[B]) wrap(out *tensor.RawTensor, op tensor.GradFn, inputs ...*tensor.Tensor) *tensor.Tensor {
	t := tensor.New(out, e.inner)
	for _, in := range inputs {
		if in.RequiresGrad() {
			t.SetGradFn(op)
			break
		}
	}
	return t
}

// Add performs element-wise addition with broadcasting.
func (e *Engine[B]) Add(a, b *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Add(a.Raw(), b.Raw()), ops.NewAddOp(a, b), a, b)
}

// Sub performs element-wise subtraction with broadcasting.
func (e *Engine[B]) Sub(a, b *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Sub(a.Raw(), b.Raw()), ops.NewSubOp(a, b), a, b)
}

// Mul performs element-wise multiplication with broadcasting.
func (e *Engine[B]) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Mul(a.Raw(), b.Raw()), ops.NewMulOp(a, b), a, b)
}

// Div performs element-wise division with broadcasting.
func (e *Engine[B]) Div(a, b *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Div(a.Raw(), b.Raw()), ops.NewDivOp(a, b), a, b)
}

// Eq compares element-wise and returns a Bool tensor.
// Comparisons are not differentiable; the result never tracks gradients.
func (e *Engine[B]) Eq(a, b *tensor.Tensor) *tensor.Tensor {
	return tensor.New(e.inner.Equal(a.Raw(), b.Raw()), e.inner)
}

// Dot computes the inner product of two 1-D tensors as a 0-d tensor.
func (e *Engine[B]) Dot(a, b *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Dot(a.Raw(), b.Raw()), ops.NewDotOp(a, b), a, b)
}

// MatMul multiplies matrices and vectors with torch.matmul rules for
// ranks 1 and 2:
//
//	(N) @ (N)       -> ()
//	(M, K) @ (K)    -> (M)
//	(K) @ (K, N)    -> (N)
//	(M, K) @ (K, N) -> (M, N)
func (e *Engine[B]) MatMul(a, b *tensor.Tensor) *tensor.Tensor {
	switch {
	case a.Rank() == 1 && b.Rank() == 1:
		return e.Dot(a, b)
	case a.Rank() == 2 && b.Rank() == 1:
		col := e.Reshape(b, tensor.Shape{b.Shape()[0], 1})
		return e.Reshape(e.MatMul(a, col), tensor.Shape{a.Shape()[0]})
	case a.Rank() == 1 && b.Rank() == 2:
		row := e.Reshape(a, tensor.Shape{1, a.Shape()[0]})
		return e.Reshape(e.MatMul(row, b), tensor.Shape{b.Shape()[1]})
	case a.Rank() == 2 && b.Rank() == 2:
		return e.wrap(e.inner.MatMul(a.Raw(), b.Raw()), ops.NewMatMulOp(a, b), a, b)
	default:
		panic(fmt.Sprintf("matmul: unsupported ranks %d and %d", a.Rank(), b.Rank()))
	}
}

// Transpose swaps the axes of a 2-D tensor.
func (e *Engine[B]) Transpose(x *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Transpose(x.Raw()), ops.NewTransposeOp(x), x)
}

// Reshape returns a tensor with the same elements in a new shape.
// A single -1 entry is inferred from the element count.
func (e *Engine[B]) Reshape(x *tensor.Tensor, shape tensor.Shape) *tensor.Tensor {
	shape = inferShape(shape, x.NumElements())
	return e.wrap(e.inner.Reshape(x.Raw(), shape), ops.NewReshapeOp(x), x)
}

// Stack joins equally shaped tensors along a new axis at dim.
// dim is in [-rank-1, rank].
func (e *Engine[B]) Stack(xs []*tensor.Tensor, dim int) *tensor.Tensor {
	if len(xs) == 0 {
		panic("stack: expects a non-empty list of tensors")
	}
	dim, err := tensor.NormalizeDim(dim, xs[0].Rank()+1)
	if err != nil {
		panic(fmt.Sprintf("stack: %v", err))
	}

	raws := make([]*tensor.RawTensor, len(xs))
	for i, x := range xs {
		raws[i] = x.Raw()
	}
	inputs := append([]*tensor.Tensor(nil), xs...)
	return e.wrap(e.inner.Stack(raws, dim), ops.NewStackOp(inputs, dim), inputs...)
}

// Neg computes -x.
func (e *Engine[B]) Neg(x *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Neg(x.Raw()), ops.NewNegOp(x), x)
}

// Abs computes |x|.
func (e *Engine[B]) Abs(x *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Abs(x.Raw()), ops.NewAbsOp(x), x)
}

// Exp computes e^x.
func (e *Engine[B]) Exp(x *tensor.Tensor) *tensor.Tensor {
	out := e.inner.Exp(x.Raw())
	return e.wrap(out, ops.NewExpOp(x, out), x)
}

// Log computes the natural logarithm.
func (e *Engine[B]) Log(x *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Log(x.Raw()), ops.NewLogOp(x), x)
}

// ReLU computes max(0, x).
func (e *Engine[B]) ReLU(x *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.ReLU(x.Raw()), ops.NewReLUOp(x), x)
}

// Sigmoid computes 1 / (1 + e^-x).
func (e *Engine[B]) Sigmoid(x *tensor.Tensor) *tensor.Tensor {
	out := e.inner.Sigmoid(x.Raw())
	return e.wrap(out, ops.NewSigmoidOp(x, out), x)
}

// Tanh computes the hyperbolic tangent.
func (e *Engine[B]) Tanh(x *tensor.Tensor) *tensor.Tensor {
	out := e.inner.Tanh(x.Raw())
	return e.wrap(out, ops.NewTanhOp(x, out), x)
}

// Sum reduces all elements to a 0-d tensor.
func (e *Engine[B]) Sum(x *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Sum(x.Raw()), ops.NewSumOp(x), x)
}

// Mean averages all elements into a 0-d tensor.
func (e *Engine[B]) Mean(x *tensor.Tensor) *tensor.Tensor {
	return e.wrap(e.inner.Mean(x.Raw()), ops.NewMeanOp(x), x)
}

// MulScalar multiplies every element by a constant.
func (e *Engine[B]) MulScalar(x *tensor.Tensor, scalar float32) *tensor.Tensor {
	return e.wrap(e.inner.MulScalar(x.Raw(), scalar), ops.NewMulScalarOp(x, scalar), x)
}

// AddScalar adds a constant to every element.
func (e *Engine[B]) AddScalar(x *tensor.Tensor, scalar float32) *tensor.Tensor {
	return e.wrap(e.inner.AddScalar(x.Raw(), scalar), ops.NewAddScalarOp(x), x)
}

// NLLLoss computes the negative log likelihood of target class indices
// under input log-probabilities, averaged over the batch.
func (e *Engine[B]) NLLLoss(input, target *tensor.Tensor) *tensor.Tensor {
	out, classes := ops.NLLLossForward(input.Raw(), target.Raw())
	return e.wrap(out, ops.NewNLLLossOp(input, target, classes), input)
}

// Float returns x as a Float32 tensor. A Float32 input is returned as is.
func (e *Engine[B]) Float(x *tensor.Tensor) *tensor.Tensor {
	if x.DType() == tensor.Float32 {
		return x
	}
	return tensor.New(e.inner.Cast(x.Raw(), tensor.Float32), e.inner)
}

// OnesLike returns a new leaf of ones with x's shape.
func (e *Engine[B]) OnesLike(x *tensor.Tensor) *tensor.Tensor {
	return tensor.Ones(x.Shape(), e.inner)
}

// ZerosLike returns a new leaf of zeros with x's shape.
func (e *Engine[B]) ZerosLike(x *tensor.Tensor) *tensor.Tensor {
	return tensor.Zeros(x.Shape(), e.inner)
}

// inferShape resolves a single -1 entry against numElements.
func inferShape(shape tensor.Shape, numElements int) tensor.Shape {
	infer := -1
	known := 1
	for i, d := range shape {
		if d == -1 {
			if infer >= 0 {
				panic("reshape: only one dimension can be inferred")
			}
			infer = i
			continue
		}
		known *= d
	}
	if infer < 0 {
		return shape
	}
	if known <= 0 || numElements%known != 0 {
		panic(fmt.Sprintf("reshape: shape %v is invalid for input of size %d", shape, numElements))
	}
	out := shape.Clone()
	out[infer] = numElements / known
	return out
}
