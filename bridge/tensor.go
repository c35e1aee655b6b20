// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bridge

import (
	"unsafe"

	"github.com/pkg/errors"

	"github.com/born-ml/torchbridge/internal/handle"
	"github.com/born-ml/torchbridge/internal/logutil"
	"github.com/born-ml/torchbridge/internal/tensor"
)

func toShape(sizes []int64) (tensor.Shape, error) {
	shape := tensor.ShapeOf(sizes)
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "shape")
	}
	return shape, nil
}

// TensorFromBuffer wraps caller memory as a float32 tensor without copying.
//
// The buffer stays owned by the caller: the bridge never frees it and it
// must outlive the handle. Writes by the engine, including optimizer steps,
// are visible in data.
func (rt *Runtime) TensorFromBuffer(data []float32, shape []int64) (TensorHandle, error) {
	return rt.TensorFromBufferWithRelease(data, shape, nil)
}

// TensorFromBufferWithRelease is TensorFromBuffer with ownership transfer:
// release is called exactly once when the last reference to the tensor
// value is dropped.
func (rt *Runtime) TensorFromBufferWithRelease(data []float32, shape []int64, release func()) (TensorHandle, error) {
	s, err := toShape(shape)
	if err != nil {
		return 0, err
	}
	t, err := tensor.FromBlob(data, s, rt.engine.Inner(), release)
	if err != nil {
		return 0, errors.Wrap(err, "tensor from buffer")
	}
	return rt.adopt(t), nil
}

// TensorFromFloat16 copies IEEE 754 half-precision values into a new
// float32 tensor.
func (rt *Runtime) TensorFromFloat16(bits []uint16, shape []int64) (TensorHandle, error) {
	s, err := toShape(shape)
	if err != nil {
		return 0, err
	}
	t, err := tensor.FromFloat16(bits, s, rt.engine.Inner())
	if err != nil {
		return 0, errors.Wrap(err, "tensor from float16")
	}
	return rt.adopt(t), nil
}

// TensorFromBFloat16 copies bfloat16 values into a new float32 tensor.
func (rt *Runtime) TensorFromBFloat16(bits []uint16, shape []int64) (TensorHandle, error) {
	s, err := toShape(shape)
	if err != nil {
		return 0, err
	}
	t, err := tensor.FromBFloat16(bits, s, rt.engine.Inner())
	if err != nil {
		return 0, errors.Wrap(err, "tensor from bfloat16")
	}
	return rt.adopt(t), nil
}

// TensorRandn creates a tensor of standard normal samples.
func (rt *Runtime) TensorRandn(shape []int64) (TensorHandle, error) {
	s, err := toShape(shape)
	if err != nil {
		return 0, err
	}
	return rt.adopt(tensor.Randn(s, rt.engine.Inner())), nil
}

// TensorZeros creates a zero-filled tensor.
func (rt *Runtime) TensorZeros(shape []int64) (TensorHandle, error) {
	return rt.TensorFull(shape, 0)
}

// TensorFull creates a tensor filled with value.
func (rt *Runtime) TensorFull(shape []int64, value float32) (TensorHandle, error) {
	s, err := toShape(shape)
	if err != nil {
		return 0, err
	}
	return rt.adopt(tensor.Full(s, value, rt.engine.Inner())), nil
}

// DestroyTensor drops the handle's reference. Destroying twice reports
// ErrStaleHandle.
func (rt *Runtime) DestroyTensor(h TensorHandle) error {
	t, err := rt.tensors.Remove(handle.ID(h))
	if err != nil {
		return errors.Wrap(err, "destroy tensor")
	}
	t.Raw().Release()
	logutil.Trace("tensor destroyed", "handle", h, "refs", t.Raw().RefCount())
	return nil
}

// Rank returns the number of dimensions.
func (rt *Runtime) Rank(h TensorHandle) (int, error) {
	t, err := rt.tensor(h)
	if err != nil {
		return 0, err
	}
	return t.Rank(), nil
}

// Sizes returns the per-dimension sizes.
func (rt *Runtime) Sizes(h TensorHandle) ([]int64, error) {
	t, err := rt.tensor(h)
	if err != nil {
		return nil, err
	}
	return t.Shape().Int64s(), nil
}

// DType returns the element type.
func (rt *Runtime) DType(h TensorHandle) (tensor.DataType, error) {
	t, err := rt.tensor(h)
	if err != nil {
		return 0, err
	}
	return t.DType(), nil
}

// NumElements returns the element count.
func (rt *Runtime) NumElements(h TensorHandle) (int, error) {
	t, err := rt.tensor(h)
	if err != nil {
		return 0, err
	}
	return t.NumElements(), nil
}

// DataPtr returns a pointer to the tensor's contiguous float32 storage.
// The pointer stays valid while the handle is alive.
func (rt *Runtime) DataPtr(h TensorHandle) (ptr unsafe.Pointer, err error) {
	t, err := rt.tensor(h)
	if err != nil {
		return nil, err
	}
	if t.DType() != tensor.Float32 {
		return nil, errors.Wrapf(ErrNotFloat, "dtype %s", t.DType())
	}
	defer guard("data", &err)
	return unsafe.Pointer(unsafe.SliceData(t.Data())), nil
}

// Data returns a copy of the tensor's values. Bool elements map to 0 and 1.
func (rt *Runtime) Data(h TensorHandle) (data []float32, err error) {
	t, err := rt.tensor(h)
	if err != nil {
		return nil, err
	}
	defer guard("data", &err)
	return t.Raw().Float32s(), nil
}

// RequiresGrad reports whether the tensor tracks gradients.
func (rt *Runtime) RequiresGrad(h TensorHandle) (bool, error) {
	t, err := rt.tensor(h)
	if err != nil {
		return false, err
	}
	return t.RequiresGrad(), nil
}

// SetRequiresGrad toggles gradient tracking. Only float tensors can track
// gradients.
func (rt *Runtime) SetRequiresGrad(h TensorHandle, v bool) (err error) {
	t, err := rt.tensor(h)
	if err != nil {
		return err
	}
	defer guard("set_requires_grad", &err)
	t.SetRequiresGrad(v)
	return nil
}

// Backward runs reverse-mode differentiation from a single-element tensor,
// accumulating gradients into every upstream leaf that tracks them.
func (rt *Runtime) Backward(h TensorHandle) (err error) {
	t, err := rt.tensor(h)
	if err != nil {
		return err
	}
	defer guard("backward", &err)
	rt.engine.Backward(t)
	return nil
}

// Gradient returns a new handle sharing the storage of the tensor's
// accumulated gradient. Later backward passes and ZeroGrad are visible
// through it.
func (rt *Runtime) Gradient(h TensorHandle) (TensorHandle, error) {
	t, err := rt.tensor(h)
	if err != nil {
		return 0, err
	}
	g := t.Grad()
	if g == nil {
		return 0, errors.Wrapf(ErrNoGradient, "%s", h)
	}
	return rt.share(g), nil
}

// Reshape returns a new tensor with the same elements in a new shape.
// A single -1 is inferred; an element count mismatch is an error.
func (rt *Runtime) Reshape(h TensorHandle, shape []int64) (out TensorHandle, err error) {
	t, err := rt.tensor(h)
	if err != nil {
		return 0, err
	}
	defer guard("reshape", &err)
	return rt.adopt(rt.engine.Reshape(t, tensor.ShapeOf(shape))), nil
}

// Stack joins equally shaped tensors along a new axis. axis may be
// negative and lies in [-rank-1, rank].
func (rt *Runtime) Stack(hs []TensorHandle, axis int) (out TensorHandle, err error) {
	ts, err := rt.tensorList(hs)
	if err != nil {
		return 0, err
	}
	defer guard("stack", &err)
	return rt.adopt(rt.engine.Stack(ts, axis)), nil
}
