package cpu

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/parallel"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// MatMul performs 2-D matrix multiplication: (M, K) @ (K, N) -> (M, N).
// Rows of the output are computed in parallel.
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("matmul", a, b)

	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		panic(fmt.Sprintf("matmul: both tensors must be 2D, got %v and %v", a.Shape(), b.Shape()))
	}

	M, K := a.Shape()[0], a.Shape()[1]
	K2, N := b.Shape()[0], b.Shape()[1]
	if K != K2 {
		panic(fmt.Sprintf("matmul: mat1 and mat2 shapes cannot be multiplied (%dx%d and %dx%d)", M, K, K2, N))
	}

	result := cpu.newResult("matmul", tensor.Shape{M, N}, tensor.Float32)
	aData, bData, out := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()

	// i-k-j loop order keeps the inner loop on contiguous memory.
	rowCfg := cpu.parallel
	rowCfg.MinChunkSize = max(1, rowCfg.MinChunkSize/max(N*K, 1))
	parallel.ForRange(M, func(start, end int) {
		for i := start; i < end; i++ {
			row := out[i*N : (i+1)*N]
			for k := 0; k < K; k++ {
				aik := aData[i*K+k]
				if aik == 0 {
					continue
				}
				bRow := bData[k*N : (k+1)*N]
				for j, bkj := range bRow {
					row[j] += aik * bkj
				}
			}
		}
	}, rowCfg)

	return result
}

// Dot computes the inner product of two 1-D tensors of equal length.
// The result is a 0-d tensor.
func (cpu *CPUBackend) Dot(a, b *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("dot", a, b)

	if len(a.Shape()) != 1 || len(b.Shape()) != 1 {
		panic(fmt.Sprintf("dot: 1D tensors expected, but got %dD and %dD tensors", len(a.Shape()), len(b.Shape())))
	}
	if a.Shape()[0] != b.Shape()[0] {
		panic(fmt.Sprintf("dot: inconsistent tensor size, expected tensor [%d] and src [%d] to have the same number of elements",
			a.Shape()[0], b.Shape()[0]))
	}

	var sum float64
	x, y := a.AsFloat32(), b.AsFloat32()
	for i := range x {
		sum += float64(x[i]) * float64(y[i])
	}

	result := cpu.newResult("dot", tensor.Shape{}, tensor.Float32)
	result.AsFloat32()[0] = float32(sum)
	return result
}

// Transpose swaps the two dimensions of a 2-D tensor.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("transpose", t)

	if len(t.Shape()) != 2 {
		panic(fmt.Sprintf("transpose: expected 2D tensor, got %dD", len(t.Shape())))
	}

	rows, cols := t.Shape()[0], t.Shape()[1]
	result := cpu.newResult("transpose", tensor.Shape{cols, rows}, tensor.Float32)
	src, dst := t.AsFloat32(), result.AsFloat32()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
	return result
}
