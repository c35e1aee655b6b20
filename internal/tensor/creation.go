package tensor

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/d4l3k/go-bfloat16"
	"github.com/x448/float16"
)

// rng is the engine-wide source for random tensor creation.
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // G404: ML uses math/rand intentionally
)

// Seed resets the random source used by Randn and Rand.
func Seed(seed int64) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng = rand.New(rand.NewSource(seed)) //nolint:gosec // G404: reproducible seeding
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float32, shape Shape, b Backend) (*Tensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, Float32, b.Device())
	if err != nil {
		return nil, err
	}

	t := New(raw, b)
	copy(t.Data(), data)
	return t, nil
}

// FromBlob creates a tensor over caller memory without copying.
//
// The data slice stays owned by the caller and must outlive the tensor.
// If release is non-nil it is invoked once the last reference to the
// tensor storage is dropped, which lets foreign callers hand ownership
// of the buffer to the engine.
func FromBlob(data []float32, shape Shape, b Backend, release func()) (*Tensor, error) {
	raw, err := WrapFloat32(data, shape, b.Device(), release)
	if err != nil {
		return nil, err
	}
	return New(raw, b), nil
}

// FromFloat16 creates a float32 tensor from IEEE 754 half-precision bit patterns.
func FromFloat16(bits []uint16, shape Shape, b Backend) (*Tensor, error) {
	if shape.NumElements() != len(bits) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(bits))
	}

	raw, err := NewRaw(shape, Float32, b.Device())
	if err != nil {
		return nil, err
	}

	data := raw.AsFloat32()
	for i, h := range bits {
		data[i] = float16.Frombits(h).Float32()
	}
	return New(raw, b), nil
}

// FromBFloat16 creates a float32 tensor from bfloat16 bit patterns.
func FromBFloat16(bits []uint16, shape Shape, b Backend) (*Tensor, error) {
	if shape.NumElements() != len(bits) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(bits))
	}

	raw, err := NewRaw(shape, Float32, b.Device())
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, 2*len(bits))
	for _, h := range bits {
		buf = binary.LittleEndian.AppendUint16(buf, h)
	}
	copy(raw.AsFloat32(), bfloat16.DecodeFloat32(buf))
	return New(raw, b), nil
}

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{3, 4}, backend)
func Zeros(shape Shape, b Backend) *Tensor {
	// Data is already zero-initialized by make()
	return New(MustNewRaw(shape, Float32, b.Device()), b)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return Full(shape, 1, b)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(tensor.Shape{3, 3}, 3.14, backend)
func Full(shape Shape, value float32, b Backend) *Tensor {
	t := Zeros(shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Scalar creates a 0-d tensor holding a single value.
func Scalar(value float32, b Backend) *Tensor {
	return Full(Shape{}, value, b)
}

// Randn creates a tensor with random values from a normal distribution (mean=0, std=1).
// Uses Box-Muller transform for generating normal distribution.
//
// Example:
//
//	t := tensor.Randn(tensor.Shape{100, 100}, backend)
func Randn(shape Shape, b Backend) *Tensor {
	t := Zeros(shape, b)
	data := t.Data()

	rngMu.Lock()
	defer rngMu.Unlock()
	for i := 0; i < len(data); i += 2 {
		u1 := 1 - rng.Float64() // (0, 1] keeps Log finite
		u2 := rng.Float64()
		r := math.Sqrt(-2.0 * math.Log(u1))
		data[i] = float32(r * math.Cos(2.0*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = float32(r * math.Sin(2.0*math.Pi*u2))
		}
	}
	return t
}

// Rand creates a tensor with random values uniformly distributed in [0, 1).
func Rand(shape Shape, b Backend) *Tensor {
	t := Zeros(shape, b)
	data := t.Data()

	rngMu.Lock()
	defer rngMu.Unlock()
	for i := range data {
		data[i] = rng.Float32()
	}
	return t
}
