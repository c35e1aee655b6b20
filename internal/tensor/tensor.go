package tensor

import "fmt"

// GradFn is the backward node that produced a tensor.
//
// Nodes are attached by the autodiff engine when at least one input of an
// operation tracks gradients. They form a DAG from an output back to its
// leaves; the reverse pass walks that DAG.
type GradFn interface {
	// Name identifies the operation, e.g. "AddBackward".
	Name() string

	// Inputs returns the tensors the operation consumed, in order.
	Inputs() []*Tensor

	// Backward computes gradients for each input given the output gradient.
	// A nil entry means no gradient flows to that input.
	Backward(outputGrad *RawTensor, backend Backend) []*RawTensor
}

// Tensor is a tensor value together with its autograd metadata.
//
// Leaves are tensors created directly (no GradFn). When a leaf has
// requiresGrad set, a backward pass accumulates into its gradient.
//
// Example:
//
//	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
//	x.SetRequiresGrad(true)
type Tensor struct {
	raw          *RawTensor
	backend      Backend
	grad         *Tensor // Accumulated gradient (leaves only)
	requiresGrad bool    // Whether operations on this tensor are recorded
	gradFn       GradFn  // Producing node, nil for leaves
}

// New creates a leaf Tensor from a RawTensor and backend.
func New(raw *RawTensor, b Backend) *Tensor {
	return &Tensor{
		raw:     raw,
		backend: b,
	}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.raw.Shape()
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.raw.Shape())
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.raw.DType()
}

// Device returns the tensor's compute device.
func (t *Tensor) Device() Device {
	return t.raw.Device()
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.raw.NumElements()
}

// Raw returns the underlying RawTensor.
func (t *Tensor) Raw() *RawTensor {
	return t.raw
}

// Backend returns the computation backend.
func (t *Tensor) Backend() Backend {
	return t.backend
}

// Data returns a float32 view of the tensor's data (zero-copy).
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor) Data() []float32 {
	return t.raw.AsFloat32()
}

// Item returns the value of a single-element tensor.
// Panics if the tensor holds more than one element.
func (t *Tensor) Item() float32 {
	if t.NumElements() != 1 {
		panic(fmt.Sprintf("a Tensor with %d elements cannot be converted to Scalar", t.NumElements()))
	}
	return t.raw.Float32s()[0]
}

// String returns a human-readable representation of the tensor.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.raw.DType(), t.raw.Shape(), t.raw.Device())
}

// Detach returns a new leaf tensor that shares the same storage but is not
// part of any graph.
func (t *Tensor) Detach() *Tensor {
	return &Tensor{
		raw:     t.raw.Clone(),
		backend: t.backend,
	}
}

// RequiresGrad returns true if this tensor requires gradient computation.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// SetRequiresGrad toggles gradient tracking.
// Only float tensors can require gradients.
func (t *Tensor) SetRequiresGrad(v bool) {
	if v && t.DType() != Float32 {
		panic(fmt.Sprintf("only float tensors can require gradients, got %s", t.DType()))
	}
	t.requiresGrad = v
}

// RequireGrad marks this tensor for gradient computation and returns it for chaining.
func (t *Tensor) RequireGrad() *Tensor {
	t.SetRequiresGrad(true)
	return t
}

// IsLeaf reports whether the tensor was created by the user rather than by
// a recorded operation.
func (t *Tensor) IsLeaf() bool {
	return t.gradFn == nil
}

// GradFn returns the node that produced this tensor, or nil for leaves.
func (t *Tensor) GradFn() GradFn {
	return t.gradFn
}

// SetGradFn attaches the producing node. A tensor with a node always
// requires gradients.
func (t *Tensor) SetGradFn(fn GradFn) {
	t.gradFn = fn
	t.requiresGrad = fn != nil || t.requiresGrad
}

// Grad returns the accumulated gradient, or nil before any backward pass.
func (t *Tensor) Grad() *Tensor {
	return t.grad
}

// SetGrad replaces the gradient tensor.
func (t *Tensor) SetGrad(grad *Tensor) {
	t.grad = grad
}

// AccumulateGrad adds g into the tensor's gradient, allocating it on first use.
// The first gradient is copied so that later accumulation never writes into
// storage owned by the graph.
func (t *Tensor) AccumulateGrad(g *RawTensor) {
	if !g.Shape().Equal(t.Shape()) {
		panic(fmt.Sprintf("gradient shape %v does not match tensor shape %v", g.Shape(), t.Shape()))
	}
	if t.grad == nil {
		t.grad = New(g.Copy(), t.backend)
		return
	}
	dst := t.grad.raw.AsFloat32()
	for i, v := range g.AsFloat32() {
		dst[i] += v
	}
}

// ZeroGrad fills an existing gradient with zeros in place.
// Tensors without a gradient are left untouched.
func (t *Tensor) ZeroGrad() {
	if t.grad == nil {
		return
	}
	clear(t.grad.raw.AsFloat32())
}
