package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations on RawTensors;
// they know nothing about gradient tracking.
//
// Contract violations (incompatible shapes, wrong dtype, bad dimension) are
// reported by panicking with a descriptive message. The boundary layer above
// the engine is responsible for turning those into errors.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Equal compares element-wise with broadcasting and returns a Bool tensor.
	Equal(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor // (M, K) @ (K, N) -> (M, N)
	Dot(a, b *RawTensor) *RawTensor    // (N) . (N) -> 0-d
	Transpose(t *RawTensor) *RawTensor // 2-D transpose

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Stack(tensors []*RawTensor, dim int) *RawTensor // insert a new axis of size len(tensors)
	Unbind(t *RawTensor, dim int) []*RawTensor      // inverse of Stack
	Expand(t *RawTensor, shape Shape) *RawTensor    // broadcast to shape

	// Scalar operations (element-wise with scalar)
	MulScalar(x *RawTensor, scalar float32) *RawTensor
	AddScalar(x *RawTensor, scalar float32) *RawTensor

	// Math operations (element-wise)
	Neg(x *RawTensor) *RawTensor
	Abs(x *RawTensor) *RawTensor
	Sign(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor

	// Activation functions
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor

	// Reduction operations (0-d result)
	Sum(x *RawTensor) *RawTensor
	Mean(x *RawTensor) *RawTensor

	// Type conversion
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
