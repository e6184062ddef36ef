package cpu

import (
	"testing"

	"github.com/adagate-ml/adagate/internal/tensor"
)

// TestCPUBackend_SumDim tests dimension reduction.
func TestCPUBackend_SumDim(t *testing.T) {
	backend := newTestBackend()

	t.Run("LastDim_KeepDim", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

		result := backend.SumDim(x, -1, true)

		if !result.Shape().Equal(tensor.Shape{2, 1}) {
			t.Fatalf("Expected shape [2, 1], got %v", result.Shape())
		}

		expected := []float32{6, 15}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("SumDim failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("LastDim_NoKeepDim", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

		result := backend.SumDim(x, 1, false)

		if !result.Shape().Equal(tensor.Shape{2}) {
			t.Fatalf("Expected shape [2], got %v", result.Shape())
		}

		expected := []float32{6, 15}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("SumDim failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("FirstDim", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

		result := backend.SumDim(x, 0, false)

		if !result.Shape().Equal(tensor.Shape{3}) {
			t.Fatalf("Expected shape [3], got %v", result.Shape())
		}

		expected := []float32{5, 7, 9}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("SumDim failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("MiddleDim3D", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{2, 2, 2}, []float32{
			1, 2, 3, 4,
			5, 6, 7, 8,
		})

		result := backend.SumDim(x, 1, true)

		if !result.Shape().Equal(tensor.Shape{2, 1, 2}) {
			t.Fatalf("Expected shape [2, 1, 2], got %v", result.Shape())
		}

		expected := []float32{4, 6, 12, 14}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("SumDim failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("DimOutOfRangePanics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for out-of-range dimension")
			}
		}()

		x := newFloat32Raw(t, tensor.Shape{2, 2}, make([]float32, 4))
		backend.SumDim(x, 5, false)
	})
}

// TestCPUBackend_Sum tests total reduction to a scalar.
func TestCPUBackend_Sum(t *testing.T) {
	backend := newTestBackend()

	t.Run("Float32", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

		result := backend.Sum(x)

		if !result.Shape().Equal(tensor.Shape{}) {
			t.Fatalf("Expected scalar shape, got %v", result.Shape())
		}

		if result.AsFloat32()[0] != 21 {
			t.Errorf("Sum failed: got %v, expected 21", result.AsFloat32()[0])
		}
	})

	t.Run("Int64", func(t *testing.T) {
		x, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Int64, tensor.CPU)
		xData := x.AsInt64()
		xData[0], xData[1], xData[2], xData[3] = 10, 20, 30, 40

		result := backend.Sum(x)

		if result.AsInt64()[0] != 100 {
			t.Errorf("Int64 sum failed: got %v, expected 100", result.AsInt64()[0])
		}
	})
}

// TestCPUBackend_Max tests global maximum.
func TestCPUBackend_Max(t *testing.T) {
	backend := newTestBackend()

	t.Run("Float32", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{2, 3}, []float32{3, -7, 2, 9, 0, -1})

		result := backend.Max(x)

		if !result.Shape().Equal(tensor.Shape{}) {
			t.Fatalf("Expected scalar shape, got %v", result.Shape())
		}

		if result.AsFloat32()[0] != 9 {
			t.Errorf("Max failed: got %v, expected 9", result.AsFloat32()[0])
		}
	})

	t.Run("AllNegative", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{3}, []float32{-3, -7, -2})

		result := backend.Max(x)

		if result.AsFloat32()[0] != -2 {
			t.Errorf("Max failed: got %v, expected -2", result.AsFloat32()[0])
		}
	})

	t.Run("SingleElement", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{1}, []float32{42})

		result := backend.Max(x)

		if result.AsFloat32()[0] != 42 {
			t.Errorf("Max failed: got %v, expected 42", result.AsFloat32()[0])
		}
	})
}
