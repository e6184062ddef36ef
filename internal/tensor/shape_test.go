package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"matrix", Shape{3, 4}, 12},
		{"3d", Shape{2, 3, 4}, 24},
		{"4d", Shape{2, 8, 10, 64}, 10240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shape.NumElements())
		})
	}
}

func TestShapeValidate(t *testing.T) {
	assert.NoError(t, Shape{3, 4}.Validate())
	assert.NoError(t, Shape{}.Validate())
	assert.Error(t, Shape{0}.Validate())
	assert.Error(t, Shape{3, -1}.Validate())
}

func TestShapeEqual(t *testing.T) {
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
	assert.False(t, Shape{2, 3}.Equal(Shape{2, 3, 1}))
}

func TestShapeClone(t *testing.T) {
	orig := Shape{2, 3, 4}
	clone := orig.Clone()

	require.True(t, orig.Equal(clone))

	// Mutating the clone must not affect the original
	clone[0] = 99
	assert.Equal(t, 2, orig[0])
}

func TestComputeStrides(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  []int
	}{
		{"scalar", Shape{}, []int{}},
		{"vector", Shape{5}, []int{1}},
		{"matrix", Shape{3, 4}, []int{4, 1}},
		{"3d", Shape{2, 3, 4}, []int{12, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.shape.ComputeStrides())
		})
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Shape
		want      Shape
		broadcast bool
	}{
		{"same shapes", Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false},
		{"row broadcast", Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true},
		{"col broadcast", Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true},
		{"rank promotion", Shape{5}, Shape{3, 5}, Shape{3, 5}, true},
		{"mask over heads", Shape{2, 1, 4, 6}, Shape{2, 8, 4, 6}, Shape{2, 8, 4, 6}, true},
		{"scalar", Shape{}, Shape{3, 5}, Shape{3, 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, needsBroadcast, err := BroadcastShapes(tt.a, tt.b)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
			assert.Equal(t, tt.broadcast, needsBroadcast)
		})
	}
}

func TestBroadcastShapesIncompatible(t *testing.T) {
	_, _, err := BroadcastShapes(Shape{3, 4}, Shape{3, 5})
	assert.Error(t, err)
}
