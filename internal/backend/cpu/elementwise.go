package cpu

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/parallel"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div performs element-wise division with broadcasting.
// Division by zero follows IEEE 754 (Inf or NaN).
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, func(x, y float32) float32 { return x / y })
}

// Equal compares element-wise with broadcasting and returns a Bool tensor.
// Bool inputs are compared as 0/1 values, so bool == float is allowed.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("eq: %v", err))
	}

	x, y := floatView(a), floatView(b)
	result := cpu.newResult("eq", outShape, tensor.Bool)
	out := result.AsBool()

	if !needsBroadcast {
		parallel.For(len(out), func(i int) {
			out[i] = x[i] == y[i]
		}, cpu.parallel)
		return result
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	parallel.For(len(out), func(i int) {
		out[i] = x[sourceIndex(i, outStrides, aStrides)] == y[sourceIndex(i, outStrides, bStrides)]
	}, cpu.parallel)
	return result
}

// binary applies op element-wise, broadcasting a and b to a common shape.
func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, op func(x, y float32) float32) *tensor.RawTensor {
	requireFloat32(name, a, b)

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := cpu.newResult(name, outShape, tensor.Float32)
	out, x, y := result.AsFloat32(), a.AsFloat32(), b.AsFloat32()

	// Fast path: identical shapes, flat walk.
	if !needsBroadcast {
		parallel.ForRange(len(out), func(start, end int) {
			for i := start; i < end; i++ {
				out[i] = op(x[i], y[i])
			}
		}, cpu.parallel)
		return result
	}

	outStrides := outShape.ComputeStrides()
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	parallel.ForRange(len(out), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = op(x[sourceIndex(i, outStrides, aStrides)], y[sourceIndex(i, outStrides, bStrides)])
		}
	}, cpu.parallel)
	return result
}

// floatView returns the values of t as float32, copying only for Bool tensors.
func floatView(t *tensor.RawTensor) []float32 {
	if t.DType() == tensor.Float32 {
		return t.AsFloat32()
	}
	return t.Float32s()
}
