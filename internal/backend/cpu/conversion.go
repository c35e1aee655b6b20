package cpu

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/tensor"
)

// Cast converts x to dtype. Casting to the same dtype returns a copy.
// Float to Bool maps non-zero values to true.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Copy()
	}

	result := cpu.newResult("cast", x.Shape(), dtype)
	switch dtype {
	case tensor.Float32:
		copy(result.AsFloat32(), x.Float32s())
	case tensor.Bool:
		dst := result.AsBool()
		for i, v := range x.AsFloat32() {
			dst[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported dtype %s", dtype))
	}
	return result
}
