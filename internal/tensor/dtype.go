// Package tensor provides the core tensor value types used by the torchbridge engine.
package tensor

// DataType represents runtime type information for tensors.
//
// The engine computes in single precision. Bool tensors are produced by
// comparison operations and can be cast back to Float32.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Bool
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Bool:
		return 1
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}
