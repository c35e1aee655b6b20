package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/torchbridge/internal/backend/cpu"
	"github.com/born-ml/torchbridge/internal/tensor"
)

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	src := []float32{1, 2, 3, 4, 5, 6}
	x, err := tensor.FromSlice(src, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	assert.Equal(t, 2, x.Rank())
	assert.Equal(t, tensor.Shape{2, 3}, x.Shape())
	assert.True(t, x.IsLeaf())
	assert.False(t, x.RequiresGrad())

	// The slice is copied.
	src[0] = 100
	assert.Equal(t, float32(1), x.Data()[0])

	_, err = tensor.FromSlice(src, tensor.Shape{4}, backend)
	require.Error(t, err)
}

func TestFromBlob(t *testing.T) {
	backend := cpu.New()

	buf := []float32{1, 2, 3}
	released := false
	x, err := tensor.FromBlob(buf, tensor.Shape{3}, backend, func() { released = true })
	require.NoError(t, err)

	x.Data()[1] = 20
	assert.Equal(t, float32(20), buf[1])

	x.Raw().Release()
	assert.True(t, released)
}

func TestFromFloat16(t *testing.T) {
	backend := cpu.New()

	// 1.0, -2.0, 0.5 in IEEE 754 half precision.
	x, err := tensor.FromFloat16([]uint16{0x3C00, 0xC000, 0x3800}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2, 0.5}, x.Data())

	_, err = tensor.FromFloat16([]uint16{0x3C00}, tensor.Shape{2}, backend)
	require.Error(t, err)
}

func TestFromBFloat16(t *testing.T) {
	backend := cpu.New()

	// 1.0, -2.0, 0.5 in bfloat16.
	x, err := tensor.FromBFloat16([]uint16{0x3F80, 0xC000, 0x3F00}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, -2, 0.5}, x.Data())

	_, err = tensor.FromBFloat16([]uint16{0x3F80}, tensor.Shape{2}, backend)
	require.Error(t, err)
}

func TestCreationHelpers(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float32{0, 0}, tensor.Zeros(tensor.Shape{2}, backend).Data())
	assert.Equal(t, []float32{1, 1}, tensor.Ones(tensor.Shape{2}, backend).Data())
	assert.Equal(t, []float32{2.5, 2.5}, tensor.Full(tensor.Shape{2}, 2.5, backend).Data())

	s := tensor.Scalar(7, backend)
	assert.Equal(t, 0, s.Rank())
	assert.Equal(t, float32(7), s.Item())
}

func TestRandn_Seeded(t *testing.T) {
	backend := cpu.New()

	tensor.Seed(1234)
	a := tensor.Randn(tensor.Shape{1000}, backend)
	tensor.Seed(1234)
	b := tensor.Randn(tensor.Shape{1000}, backend)
	assert.Equal(t, a.Data(), b.Data())

	var sum float64
	for _, v := range a.Data() {
		sum += float64(v)
	}
	assert.InDelta(t, 0, sum/1000, 0.15)

	r := tensor.Rand(tensor.Shape{100}, backend)
	for _, v := range r.Data() {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.Less(t, v, float32(1))
	}
}

func TestTensor_GradBookkeeping(t *testing.T) {
	backend := cpu.New()

	x := tensor.Zeros(tensor.Shape{2}, backend).RequireGrad()
	assert.Nil(t, x.Grad())

	g, err := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	require.NoError(t, err)

	x.AccumulateGrad(g.Raw())
	x.AccumulateGrad(g.Raw())
	assert.Equal(t, []float32{2, 4}, x.Grad().Data())
	assert.Equal(t, []float32{1, 2}, g.Data(), "accumulation must not write into the source")

	grad := x.Grad()
	x.ZeroGrad()
	assert.Same(t, grad, x.Grad(), "zeroing keeps the gradient tensor")
	assert.Equal(t, []float32{0, 0}, x.Grad().Data())

	assert.Panics(t, func() {
		x.AccumulateGrad(tensor.Zeros(tensor.Shape{3}, backend).Raw())
	})
}

func TestTensor_RequiresGradFloatOnly(t *testing.T) {
	backend := cpu.New()

	x := tensor.Ones(tensor.Shape{2}, backend)
	mask := tensor.New(backend.Equal(x.Raw(), x.Raw()), backend)
	assert.Panics(t, func() { mask.SetRequiresGrad(true) })
	mask.SetRequiresGrad(false)
	assert.Panics(t, func() { mask.Item() })
}

func TestTensor_Detach(t *testing.T) {
	backend := cpu.New()

	x := tensor.Ones(tensor.Shape{2}, backend).RequireGrad()
	d := x.Detach()
	assert.False(t, d.RequiresGrad())
	assert.True(t, d.Raw().SameStorage(x.Raw()))
}
