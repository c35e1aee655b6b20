package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_NumElements(t *testing.T) {
	assert.Equal(t, 1, Shape{}.NumElements())
	assert.Equal(t, 6, Shape{2, 3}.NumElements())
	assert.Equal(t, 24, Shape{2, 3, 4}.NumElements())
}

func TestShape_Validate(t *testing.T) {
	require.NoError(t, Shape{}.Validate())
	require.NoError(t, Shape{1, 2}.Validate())
	require.Error(t, Shape{2, 0}.Validate())
	require.Error(t, Shape{-1}.Validate())
}

func TestShape_ComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, Shape{2, 3, 4}.ComputeStrides())
	assert.Empty(t, Shape{}.ComputeStrides())
}

func TestShape_Int64Roundtrip(t *testing.T) {
	s := ShapeOf([]int64{4, 1, 7})
	assert.Equal(t, Shape{4, 1, 7}, s)
	assert.Equal(t, []int64{4, 1, 7}, s.Int64s())
}

func TestNormalizeDim(t *testing.T) {
	tests := []struct {
		dim, rank, want int
		wantErr         bool
	}{
		{0, 2, 0, false},
		{1, 2, 1, false},
		{-1, 2, 1, false},
		{-2, 2, 0, false},
		{2, 2, 0, true},
		{-3, 2, 0, true},
	}
	for _, tt := range tests {
		got, err := NormalizeDim(tt.dim, tt.rank)
		if tt.wantErr {
			assert.Error(t, err, "dim %d rank %d", tt.dim, tt.rank)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := NormalizeDim(-4, 3)
	assert.EqualError(t, err, "dimension out of range (expected to be in range of [-3, 2], but got -4)")
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
		wantErr   bool
	}{
		{"same", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false, false},
		{"column", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"rank", Shape{5}, Shape{3, 5}, Shape{3, 5}, true, false},
		{"scalar", Shape{}, Shape{4}, Shape{4}, true, false},
		{"mismatch", Shape{3, 4}, Shape{3, 5}, nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}
