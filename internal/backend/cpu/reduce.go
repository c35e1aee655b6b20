package cpu

import (
	"github.com/born-ml/torchbridge/internal/tensor"
)

// Sum adds all elements into a 0-d tensor. Accumulation is done in float64.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("sum", x)

	result := cpu.newResult("sum", tensor.Shape{}, tensor.Float32)
	result.AsFloat32()[0] = float32(sumFloat32(x.AsFloat32()))
	return result
}

// Mean averages all elements into a 0-d tensor.
func (cpu *CPUBackend) Mean(x *tensor.RawTensor) *tensor.RawTensor {
	requireFloat32("mean", x)

	data := x.AsFloat32()
	result := cpu.newResult("mean", tensor.Shape{}, tensor.Float32)
	result.AsFloat32()[0] = float32(sumFloat32(data) / float64(len(data)))
	return result
}

func sumFloat32(data []float32) float64 {
	var sum float64
	for _, v := range data {
		sum += float64(v)
	}
	return sum
}
