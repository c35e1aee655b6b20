package cpu

import (
	"strings"
	"testing"

	"github.com/born-ml/torchbridge/internal/parallel"
	"github.com/born-ml/torchbridge/internal/tensor"
)

// Helper to create test backend.
func newTestBackend() *CPUBackend {
	return New()
}

// Helper to build a float32 raw tensor from values.
func rawOf(t *testing.T, shape tensor.Shape, values ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw(%v): %v", shape, err)
	}
	if len(values) != raw.NumElements() {
		t.Fatalf("rawOf: %d values for shape %v", len(values), shape)
	}
	copy(raw.AsFloat32(), values)
	return raw
}

// Helper to check float32 slices are equal within epsilon.
func float32SliceEqual(a, b []float32) bool {
	const epsilon = 1e-6
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > epsilon {
			return false
		}
	}
	return true
}

// expectPanic runs f and fails unless it panics with a message containing substr.
func expectPanic(t *testing.T, substr string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", substr)
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, substr) {
			t.Fatalf("panic %q does not contain %q", r, substr)
		}
	}()
	f()
}

// TestCPUBackend_New tests backend creation.
func TestCPUBackend_New(t *testing.T) {
	backend := New()
	if backend == nil {
		t.Fatal("New() returned nil")
	}
	if backend.Name() != "CPU" {
		t.Errorf("Expected name 'CPU', got '%s'", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Expected device CPU, got %v", backend.Device())
	}
}

func TestCPUBackend_Arithmetic(t *testing.T) {
	backend := newTestBackend()
	a := rawOf(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	b := rawOf(t, tensor.Shape{2, 3}, 10, 11, 12, 13, 14, 15)

	tests := []struct {
		name     string
		op       func(a, b *tensor.RawTensor) *tensor.RawTensor
		expected []float32
	}{
		{"Add", backend.Add, []float32{11, 13, 15, 17, 19, 21}},
		{"Sub", backend.Sub, []float32{-9, -9, -9, -9, -9, -9}},
		{"Mul", backend.Mul, []float32{10, 22, 36, 52, 70, 90}},
		{"Div", backend.Div, []float32{0.1, 2.0 / 11, 0.25, 4.0 / 13, 5.0 / 14, 0.4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.op(a, b)
			if !result.Shape().Equal(tensor.Shape{2, 3}) {
				t.Errorf("%s shape = %v", tt.name, result.Shape())
			}
			if !float32SliceEqual(result.AsFloat32(), tt.expected) {
				t.Errorf("%s: got %v, expected %v", tt.name, result.AsFloat32(), tt.expected)
			}
		})
	}

	// Inputs are never modified.
	if !float32SliceEqual(a.AsFloat32(), []float32{1, 2, 3, 4, 5, 6}) {
		t.Errorf("input a was modified: %v", a.AsFloat32())
	}
}

func TestCPUBackend_Broadcast(t *testing.T) {
	backend := newTestBackend()

	t.Run("RowVector", func(t *testing.T) {
		a := rawOf(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
		b := rawOf(t, tensor.Shape{3}, 10, 20, 30)
		result := backend.Add(a, b)
		expected := []float32{11, 22, 33, 14, 25, 36}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("ColumnVector", func(t *testing.T) {
		a := rawOf(t, tensor.Shape{2, 1}, 1, 2)
		b := rawOf(t, tensor.Shape{1, 3}, 10, 20, 30)
		result := backend.Mul(a, b)
		if !result.Shape().Equal(tensor.Shape{2, 3}) {
			t.Fatalf("shape = %v", result.Shape())
		}
		expected := []float32{10, 20, 30, 20, 40, 60}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Scalar", func(t *testing.T) {
		a := rawOf(t, tensor.Shape{}, 5)
		b := rawOf(t, tensor.Shape{3}, 1, 2, 3)
		result := backend.Sub(a, b)
		expected := []float32{4, 3, 2}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Incompatible", func(t *testing.T) {
		a := rawOf(t, tensor.Shape{3}, 1, 2, 3)
		b := rawOf(t, tensor.Shape{4}, 1, 2, 3, 4)
		expectPanic(t, "add: shapes not compatible", func() { backend.Add(a, b) })
	})
}

func TestCPUBackend_Equal(t *testing.T) {
	backend := newTestBackend()
	a := rawOf(t, tensor.Shape{4}, 1, 2, 3, 4)
	b := rawOf(t, tensor.Shape{4}, 1, 0, 3, 0)

	result := backend.Equal(a, b)
	if result.DType() != tensor.Bool {
		t.Fatalf("dtype = %s, want bool", result.DType())
	}
	expected := []bool{true, false, true, false}
	for i, v := range result.AsBool() {
		if v != expected[i] {
			t.Errorf("eq[%d] = %v, want %v", i, v, expected[i])
		}
	}

	// Broadcast against a scalar.
	three := rawOf(t, tensor.Shape{}, 3)
	result = backend.Equal(a, three)
	if got := result.Float32s(); !float32SliceEqual(got, []float32{0, 0, 1, 0}) {
		t.Errorf("eq scalar = %v", got)
	}
}

func TestCPUBackend_DTypeChecks(t *testing.T) {
	backend := newTestBackend()
	a := rawOf(t, tensor.Shape{2}, 1, 2)
	mask := backend.Equal(a, a)
	expectPanic(t, "expected float32 tensor, got bool", func() { backend.Add(a, mask) })
}

func TestCPUBackend_MathAndActivations(t *testing.T) {
	backend := newTestBackend()
	x := rawOf(t, tensor.Shape{4}, -2, -0.5, 0, 3)

	tests := []struct {
		name     string
		op       func(*tensor.RawTensor) *tensor.RawTensor
		expected []float32
	}{
		{"Neg", backend.Neg, []float32{2, 0.5, 0, -3}},
		{"Abs", backend.Abs, []float32{2, 0.5, 0, 3}},
		{"Sign", backend.Sign, []float32{-1, -1, 0, 1}},
		{"ReLU", backend.ReLU, []float32{0, 0, 0, 3}},
		{"Sigmoid", backend.Sigmoid, []float32{0.11920292, 0.37754067, 0.5, 0.95257413}},
		{"Tanh", backend.Tanh, []float32{-0.9640276, -0.46211717, 0, 0.9950548}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op(x).AsFloat32()
			if !float32SliceEqual(got, tt.expected) {
				t.Errorf("%s: got %v, expected %v", tt.name, got, tt.expected)
			}
		})
	}

	t.Run("Exp", func(t *testing.T) {
		got := backend.Exp(rawOf(t, tensor.Shape{3}, -1, 0, 1)).AsFloat32()
		if !float32SliceEqual(got, []float32{0.36787945, 1, 2.7182817}) {
			t.Errorf("Exp: got %v", got)
		}
	})

	t.Run("Log", func(t *testing.T) {
		got := backend.Log(rawOf(t, tensor.Shape{2}, 1, 2.718281828)).AsFloat32()
		if !float32SliceEqual(got, []float32{0, 1}) {
			t.Errorf("Log: got %v", got)
		}
	})

	t.Run("Scalars", func(t *testing.T) {
		got := backend.AddScalar(backend.MulScalar(x, 2), 1).AsFloat32()
		if !float32SliceEqual(got, []float32{-3, 0, 1, 7}) {
			t.Errorf("2x+1: got %v", got)
		}
	})
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := newTestBackend()

	a := rawOf(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	b := rawOf(t, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)
	result := backend.MatMul(a, b)
	if !result.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("shape = %v", result.Shape())
	}
	expected := []float32{58, 64, 139, 154}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("got %v, expected %v", result.AsFloat32(), expected)
	}

	expectPanic(t, "cannot be multiplied", func() { backend.MatMul(a, a) })
}

func TestCPUBackend_MatMulParallel(t *testing.T) {
	backend := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})
	serial := NewWithConfig(parallel.Config{})

	const m, k, n = 33, 17, 9
	a, _ := tensor.NewRaw(tensor.Shape{m, k}, tensor.Float32, tensor.CPU)
	b, _ := tensor.NewRaw(tensor.Shape{k, n}, tensor.Float32, tensor.CPU)
	for i := range a.AsFloat32() {
		a.AsFloat32()[i] = float32(i%7) - 3
	}
	for i := range b.AsFloat32() {
		b.AsFloat32()[i] = float32(i%5) * 0.5
	}

	if !float32SliceEqual(backend.MatMul(a, b).AsFloat32(), serial.MatMul(a, b).AsFloat32()) {
		t.Error("parallel and serial matmul disagree")
	}
}

func TestCPUBackend_DotAndTranspose(t *testing.T) {
	backend := newTestBackend()

	dot := backend.Dot(rawOf(t, tensor.Shape{3}, 1, 2, 3), rawOf(t, tensor.Shape{3}, 4, 5, 6))
	if len(dot.Shape()) != 0 {
		t.Errorf("dot should be 0-d, got %v", dot.Shape())
	}
	if dot.AsFloat32()[0] != 32 {
		t.Errorf("dot = %v, want 32", dot.AsFloat32()[0])
	}
	expectPanic(t, "1D tensors expected", func() {
		backend.Dot(rawOf(t, tensor.Shape{1, 1}, 1), rawOf(t, tensor.Shape{1}, 1))
	})
	expectPanic(t, "inconsistent tensor size", func() {
		backend.Dot(rawOf(t, tensor.Shape{2}, 1, 2), rawOf(t, tensor.Shape{1}, 1))
	})

	tr := backend.Transpose(rawOf(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6))
	if !tr.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("transpose shape = %v", tr.Shape())
	}
	if !float32SliceEqual(tr.AsFloat32(), []float32{1, 4, 2, 5, 3, 6}) {
		t.Errorf("transpose = %v", tr.AsFloat32())
	}
}

func TestCPUBackend_Reshape(t *testing.T) {
	backend := newTestBackend()
	x := rawOf(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	r := backend.Reshape(x, tensor.Shape{3, 2})
	if !r.Shape().Equal(tensor.Shape{3, 2}) || !float32SliceEqual(r.AsFloat32(), x.AsFloat32()) {
		t.Errorf("reshape = %v %v", r.Shape(), r.AsFloat32())
	}
	if r.SameStorage(x) {
		t.Error("reshape should not alias its input")
	}

	expectPanic(t, "is invalid for input of size 6", func() { backend.Reshape(x, tensor.Shape{4}) })
}

func TestCPUBackend_StackUnbind(t *testing.T) {
	backend := newTestBackend()
	a := rawOf(t, tensor.Shape{2, 2}, 1, 2, 3, 4)
	b := rawOf(t, tensor.Shape{2, 2}, 5, 6, 7, 8)
	c := rawOf(t, tensor.Shape{2, 2}, 9, 10, 11, 12)
	inputs := []*tensor.RawTensor{a, b, c}

	tests := []struct {
		dim      int
		shape    tensor.Shape
		expected []float32
	}{
		{0, tensor.Shape{3, 2, 2}, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{1, tensor.Shape{2, 3, 2}, []float32{1, 2, 5, 6, 9, 10, 3, 4, 7, 8, 11, 12}},
		{2, tensor.Shape{2, 2, 3}, []float32{1, 5, 9, 2, 6, 10, 3, 7, 11, 4, 8, 12}},
		{-1, tensor.Shape{2, 2, 3}, []float32{1, 5, 9, 2, 6, 10, 3, 7, 11, 4, 8, 12}},
	}
	for _, tt := range tests {
		stacked := backend.Stack(inputs, tt.dim)
		if !stacked.Shape().Equal(tt.shape) {
			t.Errorf("stack dim %d: shape %v, want %v", tt.dim, stacked.Shape(), tt.shape)
			continue
		}
		if !float32SliceEqual(stacked.AsFloat32(), tt.expected) {
			t.Errorf("stack dim %d: got %v, want %v", tt.dim, stacked.AsFloat32(), tt.expected)
		}

		parts := backend.Unbind(stacked, tt.dim)
		if len(parts) != 3 {
			t.Fatalf("unbind dim %d: %d parts", tt.dim, len(parts))
		}
		for i, p := range parts {
			if !float32SliceEqual(p.AsFloat32(), inputs[i].AsFloat32()) {
				t.Errorf("unbind dim %d part %d: got %v", tt.dim, i, p.AsFloat32())
			}
		}
	}

	expectPanic(t, "non-empty list", func() { backend.Stack(nil, 0) })
	expectPanic(t, "dimension out of range", func() { backend.Stack(inputs, 3) })
	expectPanic(t, "equal size", func() {
		backend.Stack([]*tensor.RawTensor{a, rawOf(t, tensor.Shape{4}, 1, 2, 3, 4)}, 0)
	})
}

func TestCPUBackend_Expand(t *testing.T) {
	backend := newTestBackend()
	x := rawOf(t, tensor.Shape{3}, 1, 2, 3)

	e := backend.Expand(x, tensor.Shape{2, 3})
	if !float32SliceEqual(e.AsFloat32(), []float32{1, 2, 3, 1, 2, 3}) {
		t.Errorf("expand = %v", e.AsFloat32())
	}
	expectPanic(t, "not compatible", func() { backend.Expand(x, tensor.Shape{2}) })
}

func TestCPUBackend_Reductions(t *testing.T) {
	backend := newTestBackend()
	x := rawOf(t, tensor.Shape{2, 2}, 1, 2, 3, 4)

	sum := backend.Sum(x)
	if len(sum.Shape()) != 0 || sum.AsFloat32()[0] != 10 {
		t.Errorf("sum = %v %v", sum.Shape(), sum.AsFloat32())
	}
	mean := backend.Mean(x)
	if mean.AsFloat32()[0] != 2.5 {
		t.Errorf("mean = %v", mean.AsFloat32())
	}
}

func TestCPUBackend_Cast(t *testing.T) {
	backend := newTestBackend()
	x := rawOf(t, tensor.Shape{3}, 0, 2, -1)

	b := backend.Cast(x, tensor.Bool)
	if got := b.AsBool(); got[0] || !got[1] || !got[2] {
		t.Errorf("cast to bool = %v", got)
	}
	f := backend.Cast(b, tensor.Float32)
	if !float32SliceEqual(f.AsFloat32(), []float32{0, 1, 1}) {
		t.Errorf("cast back = %v", f.AsFloat32())
	}
	same := backend.Cast(x, tensor.Float32)
	if same.SameStorage(x) {
		t.Error("same-dtype cast should copy")
	}
}
