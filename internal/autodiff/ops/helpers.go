package ops

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	if len(targetShape) > len(gradShape) {
		panic(fmt.Sprintf("reduceBroadcast: target %v has more dimensions than gradient %v", targetShape, gradShape))
	}

	result, err := tensor.NewRaw(targetShape, tensor.Float32, grad.Device())
	if err != nil {
		panic(fmt.Sprintf("reduceBroadcast: failed to create result: %v", err))
	}

	// Each gradient element flows into the target element it was broadcast from.
	gradStrides := gradShape.ComputeStrides()
	targetStrides := broadcastStrides(targetShape, gradShape)
	src, dst := grad.AsFloat32(), result.AsFloat32()
	for i, g := range src {
		idx := 0
		rem := i
		for d, s := range gradStrides {
			coord := rem / s
			rem %= s
			idx += coord * targetStrides[d]
		}
		dst[idx] += g
	}

	return result
}

// broadcastStrides returns strides for reading inShape inside outShape,
// with 0 on padded or size-1 dimensions.
func broadcastStrides(inShape, outShape tensor.Shape) []int {
	strides := make([]int, len(outShape))
	offset := len(outShape) - len(inShape)
	inStrides := inShape.ComputeStrides()
	for i := range outShape {
		inIdx := i - offset
		if inIdx >= 0 && inShape[inIdx] != 1 {
			strides[i] = inStrides[inIdx]
		}
	}
	return strides
}
