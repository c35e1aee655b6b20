package script

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/torchbridge/internal/tensor"
)

// ValueTag identifies the dynamic type of a Value.
type ValueTag int

// Value tags.
const (
	VTNone ValueTag = iota
	VTBool
	VTInt
	VTFloat
	VTStr
	VTTensor
	VTList
)

func (t ValueTag) String() string {
	switch t {
	case VTNone:
		return "NoneType"
	case VTBool:
		return "bool"
	case VTInt:
		return "int"
	case VTFloat:
		return "float"
	case VTStr:
		return "str"
	case VTTensor:
		return "Tensor"
	case VTList:
		return "List"
	default:
		return "unknown"
	}
}

// Value is a dynamically typed script value.
type Value struct {
	Tag  ValueTag
	Data any
}

// None is the script None value.
var None = Value{Tag: VTNone}

// Bool wraps b.
func Bool(b bool) Value { return Value{Tag: VTBool, Data: b} }

// Int wraps n.
func Int(n int64) Value { return Value{Tag: VTInt, Data: n} }

// Float wraps f.
func Float(f float64) Value { return Value{Tag: VTFloat, Data: f} }

// Str wraps s.
func Str(s string) Value { return Value{Tag: VTStr, Data: s} }

// TensorVal wraps t.
func TensorVal(t *tensor.Tensor) Value { return Value{Tag: VTTensor, Data: t} }

// List wraps xs.
func List(xs []Value) Value { return Value{Tag: VTList, Data: xs} }

func (v Value) String() string {
	switch v.Tag {
	case VTNone:
		return "None"
	case VTBool:
		if v.Data.(bool) {
			return "True"
		}
		return "False"
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTFloat:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return strconv.Quote(v.Data.(string))
	case VTTensor:
		return v.Data.(*tensor.Tensor).String()
	case VTList:
		parts := make([]string, 0, len(v.list()))
		for _, x := range v.list() {
			parts = append(parts, x.String())
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("<%d>", v.Tag)
	}
}

func (v Value) tensor() *tensor.Tensor { return v.Data.(*tensor.Tensor) }
func (v Value) list() []Value          { return v.Data.([]Value) }

func (v Value) isNumber() bool {
	return v.Tag == VTInt || v.Tag == VTFloat || v.Tag == VTBool
}

// num converts a bool, int or float to float64.
func (v Value) num() float64 {
	switch v.Tag {
	case VTBool:
		if v.Data.(bool) {
			return 1
		}
		return 0
	case VTInt:
		return float64(v.Data.(int64))
	case VTFloat:
		return v.Data.(float64)
	}
	fail("expected a number, got %s", v.Tag)
	return 0
}

// int converts a bool or int to int64. Floats are rejected.
func (v Value) int() int64 {
	switch v.Tag {
	case VTBool:
		if v.Data.(bool) {
			return 1
		}
		return 0
	case VTInt:
		return v.Data.(int64)
	}
	fail("expected an int, got %s", v.Tag)
	return 0
}

// truthy follows Python truth testing. Tensors must hold one element.
func (v Value) truthy() bool {
	switch v.Tag {
	case VTNone:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTInt, VTFloat:
		return v.num() != 0
	case VTStr:
		return v.Data.(string) != ""
	case VTList:
		return len(v.list()) > 0
	case VTTensor:
		t := v.tensor()
		if t.NumElements() != 1 {
			fail("Boolean value of Tensor with more than one value is ambiguous")
		}
		return t.Item() != 0
	}
	return false
}
