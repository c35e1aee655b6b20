package ops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/torchbridge/internal/tensor"
)

func rawOf(t *testing.T, shape tensor.Shape, values ...float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return raw
}

func TestReduceBroadcast(t *testing.T) {
	grad := rawOf(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	tests := []struct {
		name   string
		target tensor.Shape
		want   []float32
	}{
		{"same", tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6}},
		{"leading", tensor.Shape{3}, []float32{5, 7, 9}},
		{"column", tensor.Shape{2, 1}, []float32{6, 15}},
		{"row", tensor.Shape{1, 3}, []float32{5, 7, 9}},
		{"scalar", tensor.Shape{}, []float32{21}},
		{"ones", tensor.Shape{1, 1}, []float32{21}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reduceBroadcast(grad, tt.target)
			assert.Equal(t, tt.target, got.Shape())
			assert.Equal(t, tt.want, got.AsFloat32())
		})
	}

	assert.Panics(t, func() { reduceBroadcast(grad, tensor.Shape{1, 2, 3}) })
}

func TestNLLLossForward_SingleSample(t *testing.T) {
	input := rawOf(t, tensor.Shape{3}, -0.1, -2.0, -3.0)
	target := rawOf(t, tensor.Shape{}, 1)

	loss, classes := NLLLossForward(input, target)
	assert.Equal(t, []int{1}, classes)
	assert.InDelta(t, 2.0, loss.AsFloat32()[0], 1e-6)

	assert.Panics(t, func() { NLLLossForward(input, rawOf(t, tensor.Shape{}, 0.5)) })
}
