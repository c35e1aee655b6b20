// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public view of the torchbridge tensor engine.
//
// Go programs that embed the engine directly, instead of going through the
// handle-based bridge, build tensors here and run them on a backend:
//
//	backend := cpu.New()
//	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
//	y := tensor.Zeros(tensor.Shape{3}, backend)
package tensor

import (
	"github.com/born-ml/torchbridge/internal/tensor"
)

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Bool    DataType = tensor.Bool
)

// Device represents where tensor data resides.
type Device = tensor.Device

// CPU is the only device the engine computes on.
const CPU Device = tensor.CPU

// Shape represents the dimensions of a tensor. An empty shape is a 0-d scalar.
type Shape = tensor.Shape

// Backend computes tensor operations on raw storage.
type Backend = tensor.Backend

// RawTensor is the untyped storage block behind a Tensor.
type RawTensor = tensor.RawTensor

// Tensor is a tensor value plus its autograd metadata.
type Tensor = tensor.Tensor

// GradFn is the backward node recorded for a computed tensor.
type GradFn = tensor.GradFn

// FromSlice copies data into a new tensor.
func FromSlice(data []float32, shape Shape, b Backend) (*Tensor, error) {
	return tensor.FromSlice(data, shape, b)
}

// FromBlob wraps data without copying. release, if non-nil, runs once the
// last reference to the storage is dropped.
func FromBlob(data []float32, shape Shape, b Backend, release func()) (*Tensor, error) {
	return tensor.FromBlob(data, shape, b, release)
}

// FromFloat16 converts half-precision bit patterns into a float32 tensor.
func FromFloat16(bits []uint16, shape Shape, b Backend) (*Tensor, error) {
	return tensor.FromFloat16(bits, shape, b)
}

// FromBFloat16 converts bfloat16 bit patterns into a float32 tensor.
func FromBFloat16(bits []uint16, shape Shape, b Backend) (*Tensor, error) {
	return tensor.FromBFloat16(bits, shape, b)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, b Backend) *Tensor {
	return tensor.Zeros(shape, b)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, b Backend) *Tensor {
	return tensor.Ones(shape, b)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32, b Backend) *Tensor {
	return tensor.Full(shape, value, b)
}

// Scalar creates a 0-d tensor.
func Scalar(value float32, b Backend) *Tensor {
	return tensor.Scalar(value, b)
}

// Randn samples a standard normal tensor.
func Randn(shape Shape, b Backend) *Tensor {
	return tensor.Randn(shape, b)
}

// Rand samples a uniform [0, 1) tensor.
func Rand(shape Shape, b Backend) *Tensor {
	return tensor.Rand(shape, b)
}

// Seed resets the source used by Randn and Rand.
func Seed(seed int64) {
	tensor.Seed(seed)
}

// BroadcastShapes returns the NumPy-style broadcast of a and b.
func BroadcastShapes(a, b Shape) (Shape, error) {
	out, _, err := tensor.BroadcastShapes(a, b)
	return out, err
}
