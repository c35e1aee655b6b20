package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRaw(t *testing.T) {
	raw, err := NewRaw(Shape{2, 3}, Float32, CPU)
	require.NoError(t, err)
	assert.Equal(t, 6, raw.NumElements())
	assert.Equal(t, 24, raw.ByteSize())
	assert.Equal(t, []int{3, 1}, raw.Strides())
	assert.Equal(t, make([]float32, 6), raw.AsFloat32())

	_, err = NewRaw(Shape{0}, Float32, CPU)
	require.Error(t, err)
}

func TestWrapFloat32_SharesMemory(t *testing.T) {
	data := []float32{1, 2, 3, 4}
	raw, err := WrapFloat32(data, Shape{2, 2}, CPU, nil)
	require.NoError(t, err)

	raw.AsFloat32()[0] = 42
	assert.Equal(t, float32(42), data[0])

	data[3] = -1
	assert.Equal(t, float32(-1), raw.AsFloat32()[3])

	_, err = WrapFloat32(data, Shape{3}, CPU, nil)
	require.Error(t, err)
}

func TestRawTensor_ReleaseHook(t *testing.T) {
	calls := 0
	raw, err := WrapFloat32([]float32{1, 2}, Shape{2}, CPU, func() { calls++ })
	require.NoError(t, err)

	clone := raw.Clone()
	assert.Equal(t, 2, raw.RefCount())
	assert.True(t, clone.SameStorage(raw))

	raw.Release()
	assert.Equal(t, 0, calls, "hook must wait for the last reference")

	clone.Release()
	assert.Equal(t, 1, calls)
	assert.Panics(t, func() { raw.AsFloat32() })
}

func TestRawTensor_CopyIsIndependent(t *testing.T) {
	data := []float32{1, 2, 3}
	raw, err := WrapFloat32(data, Shape{3}, CPU, nil)
	require.NoError(t, err)

	cp := raw.Copy()
	assert.False(t, cp.SameStorage(raw))
	cp.AsFloat32()[0] = 9
	assert.Equal(t, float32(1), data[0])
}

func TestRawTensor_DTypeAccess(t *testing.T) {
	raw := MustNewRaw(Shape{3}, Bool, CPU)
	mask := raw.AsBool()
	mask[1] = true
	assert.Equal(t, []float32{0, 1, 0}, raw.Float32s())
	assert.Panics(t, func() { raw.AsFloat32() })
	assert.Equal(t, 3, raw.ByteSize())
}
