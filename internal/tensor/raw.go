package tensor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	default:
		return "Unknown"
	}
}

// tensorBuffer is a reference-counted storage block.
//
// Engine-allocated buffers are plain Go memory and are reclaimed by the GC.
// Buffers wrapping foreign memory may carry a release hook that runs exactly
// once, when the last reference is dropped.
type tensorBuffer struct {
	data      []byte
	refCount  atomic.Int32
	onRelease func()
	mu        sync.Mutex
}

// newTensorBuffer creates a new zeroed buffer with refCount = 1.
func newTensorBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

// newExternalBuffer wraps memory the engine did not allocate.
func newExternalBuffer(data []byte, onRelease func()) *tensorBuffer {
	buf := &tensorBuffer{
		data:      data,
		onRelease: onRelease,
	}
	buf.refCount.Store(1)
	return buf
}

// addRef increments the reference count.
func (tb *tensorBuffer) addRef() {
	tb.refCount.Add(1)
}

// release decrements the reference count and runs the release hook at zero.
func (tb *tensorBuffer) release() {
	if tb.refCount.Add(-1) != 0 {
		return
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.onRelease != nil {
		hook := tb.onRelease
		tb.onRelease = nil
		tb.data = nil
		hook()
	}
}

// RawTensor is the low-level tensor representation: an untyped, contiguous,
// row-major block of memory plus shape and dtype.
type RawTensor struct {
	buffer *tensorBuffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is zero-initialized.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}

	return &RawTensor{
		buffer: newTensorBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// MustNewRaw is NewRaw for shapes already known to be valid; it panics otherwise.
func MustNewRaw(shape Shape, dtype DataType, device Device) *RawTensor {
	raw, err := NewRaw(shape, dtype, device)
	if err != nil {
		panic(err)
	}
	return raw
}

// WrapFloat32 creates a Float32 RawTensor over existing memory without copying.
//
// Writes through the tensor are visible in data and vice versa. When
// onRelease is non-nil it is called once the last reference to the tensor
// storage has been released.
func WrapFloat32(data []float32, shape Shape, device Device, onRelease func()) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	//nolint:gosec // reinterpretation of caller memory, length checked above
	bytes := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*Float32.Size())
	return &RawTensor{
		buffer: newExternalBuffer(bytes, onRelease),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  Float32,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.buffer.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	data := r.buffer.data
	if len(data) == 0 {
		panic("tensor storage has been released")
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&data[0])), r.NumElements())
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", r.dtype))
	}
	data := r.buffer.data
	if len(data) == 0 {
		panic("tensor storage has been released")
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, bounds checked by NumElements()
	return unsafe.Slice((*bool)(unsafe.Pointer(&data[0])), r.NumElements())
}

// Float32s returns a copy of the values converted to float32.
// Bool elements map to 0 and 1.
func (r *RawTensor) Float32s() []float32 {
	out := make([]float32, r.NumElements())
	switch r.dtype {
	case Float32:
		copy(out, r.AsFloat32())
	case Bool:
		for i, v := range r.AsBool() {
			if v {
				out[i] = 1
			}
		}
	}
	return out
}

// Clone creates a shallow copy of the RawTensor sharing the same buffer.
// The buffer's reference count is incremented; each clone must be released
// independently for a release hook to fire.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// Copy creates a deep copy with freshly allocated, engine-owned storage.
func (r *RawTensor) Copy() *RawTensor {
	out := MustNewRaw(r.shape, r.dtype, r.device)
	copy(out.buffer.data, r.buffer.data[:r.ByteSize()])
	return out
}

// Retain adds a reference to the underlying storage.
func (r *RawTensor) Retain() {
	r.buffer.addRef()
}

// Release drops a reference to the underlying storage.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// RefCount returns the current number of references to the storage.
func (r *RawTensor) RefCount() int {
	return int(r.buffer.refCount.Load())
}

// SameStorage reports whether two tensors share one buffer.
func (r *RawTensor) SameStorage(other *RawTensor) bool {
	return r.buffer == other.buffer
}
