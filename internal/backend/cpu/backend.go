// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/born-ml/torchbridge/internal/parallel"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
// Element loops are split across goroutines through the parallel package.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend sized from TORCHBRIDGE_NUM_THREADS.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a CPU backend with an explicit parallelism config.
func NewWithConfig(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// newResult allocates an output tensor or panics with the op name.
func (cpu *CPUBackend) newResult(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

// requireFloat32 panics unless every input is Float32.
func requireFloat32(op string, inputs ...*tensor.RawTensor) {
	for _, in := range inputs {
		if in.DType() != tensor.Float32 {
			panic(fmt.Sprintf("%s: expected float32 tensor, got %s", op, in.DType()))
		}
	}
}
