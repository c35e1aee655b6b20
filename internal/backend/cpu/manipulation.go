package cpu

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/parallel"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// Reshape returns a tensor with the same data but different shape.
// The data is copied into new storage.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(fmt.Sprintf("reshape: invalid shape: %v", err))
	}
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("reshape: shape %v is invalid for input of size %d", newShape, t.NumElements()))
	}

	result := cpu.newResult("reshape", newShape, t.DType())
	copy(result.Data(), t.Data()[:t.ByteSize()])
	return result
}

// Stack joins tensors of identical shape along a new dimension.
// dim may be negative and is resolved against rank+1.
//
// Example:
//
//	Stack([(2, 3), (2, 3), (2, 3)], 1) -> (2, 3, 3)
func (cpu *CPUBackend) Stack(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("stack: expects a non-empty list of tensors")
	}

	first := tensors[0]
	shape := first.Shape()
	for i, t := range tensors[1:] {
		if !t.Shape().Equal(shape) {
			panic(fmt.Sprintf("stack: expects each tensor to be equal size, but got %v at entry 0 and %v at entry %d",
				shape, t.Shape(), i+1))
		}
		if t.DType() != first.DType() {
			panic(fmt.Sprintf("stack: expected dtype %s at entry %d, got %s", first.DType(), i+1, t.DType()))
		}
	}

	dim, err := tensor.NormalizeDim(dim, len(shape)+1)
	if err != nil {
		panic(fmt.Sprintf("stack: %v", err))
	}

	k := len(tensors)
	outShape := make(tensor.Shape, 0, len(shape)+1)
	outShape = append(outShape, shape[:dim]...)
	outShape = append(outShape, k)
	outShape = append(outShape, shape[dim:]...)

	outer := shape[:dim].NumElements()
	inner := shape[dim:].NumElements() * first.DType().Size()

	result := cpu.newResult("stack", outShape, first.DType())
	dst := result.Data()
	parallel.For(outer, func(o int) {
		for j, t := range tensors {
			src := t.Data()
			copy(dst[(o*k+j)*inner:(o*k+j+1)*inner], src[o*inner:(o+1)*inner])
		}
	}, cpu.parallel)
	return result
}

// Unbind splits t along dim into size(dim) tensors with that dimension removed.
// It is the inverse of Stack.
func (cpu *CPUBackend) Unbind(t *tensor.RawTensor, dim int) []*tensor.RawTensor {
	shape := t.Shape()
	dim, err := tensor.NormalizeDim(dim, len(shape))
	if err != nil {
		panic(fmt.Sprintf("unbind: %v", err))
	}

	k := shape[dim]
	partShape := make(tensor.Shape, 0, len(shape)-1)
	partShape = append(partShape, shape[:dim]...)
	partShape = append(partShape, shape[dim+1:]...)

	outer := shape[:dim].NumElements()
	inner := shape[dim+1:].NumElements() * t.DType().Size()

	src := t.Data()
	parts := make([]*tensor.RawTensor, k)
	for j := range parts {
		part := cpu.newResult("unbind", partShape, t.DType())
		dst := part.Data()
		for o := 0; o < outer; o++ {
			copy(dst[o*inner:(o+1)*inner], src[(o*k+j)*inner:(o*k+j+1)*inner])
		}
		parts[j] = part
	}
	return parts
}

// Expand broadcasts t to shape, materialising the repeated values.
func (cpu *CPUBackend) Expand(t *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	requireFloat32("expand", t)

	outShape, _, err := tensor.BroadcastShapes(t.Shape(), shape)
	if err != nil || !outShape.Equal(shape) {
		panic(fmt.Sprintf("expand: the expanded size %v is not compatible with the existing size %v", shape, t.Shape()))
	}

	result := cpu.newResult("expand", shape, tensor.Float32)
	src, dst := t.AsFloat32(), result.AsFloat32()
	outStrides := shape.ComputeStrides()
	inStrides := broadcastStrides(t.Shape(), shape)
	parallel.For(len(dst), func(i int) {
		dst[i] = src[sourceIndex(i, outStrides, inStrides)]
	}, cpu.parallel)
	return result
}
