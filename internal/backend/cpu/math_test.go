package cpu

import (
	"math"
	"testing"

	"github.com/adagate-ml/adagate/internal/tensor"
)

// TestCPUBackend_Exp tests element-wise exponential.
func TestCPUBackend_Exp(t *testing.T) {
	backend := newTestBackend()

	x := newFloat32Raw(t, tensor.Shape{3}, []float32{0, 1, -1})

	result := backend.Exp(x)

	expected := []float32{1, float32(math.E), float32(1 / math.E)}
	if !float32SliceEqual(result.AsFloat32(), expected) {
		t.Errorf("Exp failed: got %v, expected %v", result.AsFloat32(), expected)
	}
}

// TestCPUBackend_Sqrt tests element-wise square root.
func TestCPUBackend_Sqrt(t *testing.T) {
	backend := newTestBackend()

	t.Run("Basic", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{4}, []float32{0, 1, 4, 9})

		result := backend.Sqrt(x)

		expected := []float32{0, 1, 2, 3}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Sqrt failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("NegativePanics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for negative input")
			}
		}()

		x := newFloat32Raw(t, tensor.Shape{1}, []float32{-1})
		backend.Sqrt(x)
	})
}

// TestCPUBackend_Abs tests element-wise absolute value.
func TestCPUBackend_Abs(t *testing.T) {
	backend := newTestBackend()

	t.Run("Float32", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{4}, []float32{-2.5, 0, 3, -0.5})

		result := backend.Abs(x)

		expected := []float32{2.5, 0, 3, 0.5}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Abs failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Int32", func(t *testing.T) {
		x, _ := tensor.NewRaw(tensor.Shape{3}, tensor.Int32, tensor.CPU)
		xData := x.AsInt32()
		xData[0], xData[1], xData[2] = -5, 0, 7

		result := backend.Abs(x)

		expected := []int32{5, 0, 7}
		resultData := result.AsInt32()
		for i, exp := range expected {
			if resultData[i] != exp {
				t.Errorf("Int32 abs failed at %d: got %v, expected %v", i, resultData[i], exp)
			}
		}
	})
}

// TestCPUBackend_ScalarOps tests scalar arithmetic.
func TestCPUBackend_ScalarOps(t *testing.T) {
	backend := newTestBackend()

	t.Run("MulScalar", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{3}, []float32{1, 2, 3})

		result := backend.MulScalar(x, float32(2.5))

		expected := []float32{2.5, 5, 7.5}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("MulScalar failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("AddScalar", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{3}, []float32{1, 2, 3})

		result := backend.AddScalar(x, float32(10))

		expected := []float32{11, 12, 13}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("AddScalar failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("SubScalar", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{3}, []float32{10, 20, 30})

		result := backend.SubScalar(x, float32(5))

		expected := []float32{5, 15, 25}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("SubScalar failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("DivScalar", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{3}, []float32{10, 20, 30})

		result := backend.DivScalar(x, float32(10))

		expected := []float32{1, 2, 3}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("DivScalar failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})
}

// TestCPUBackend_Softmax tests softmax along a dimension.
func TestCPUBackend_Softmax(t *testing.T) {
	backend := newTestBackend()

	t.Run("RowsSumToOne", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{2, 4}, []float32{
			1, 2, 3, 4,
			-1, 0, 1, 2,
		})

		result := backend.Softmax(x, -1)

		data := result.AsFloat32()
		for row := 0; row < 2; row++ {
			var sum float32
			for col := 0; col < 4; col++ {
				v := data[row*4+col]
				if v < 0 || v > 1 {
					t.Errorf("Softmax value out of range at [%d][%d]: %v", row, col, v)
				}
				sum += v
			}
			if math.Abs(float64(sum)-1.0) > 1e-5 {
				t.Errorf("Row %d does not sum to 1: %v", row, sum)
			}
		}
	})

	t.Run("UniformInput", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{1, 4}, []float32{5, 5, 5, 5})

		result := backend.Softmax(x, -1)

		expected := []float32{0.25, 0.25, 0.25, 0.25}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Uniform softmax failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("KnownValues", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{2}, []float32{0, float32(math.Log(3))})

		result := backend.Softmax(x, 0)

		// exp(0) = 1, exp(ln 3) = 3, so [1/4, 3/4]
		expected := []float32{0.25, 0.75}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Softmax failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("NumericalStability", func(t *testing.T) {
		// Large magnitudes must not overflow
		x := newFloat32Raw(t, tensor.Shape{3}, []float32{1000, 1000, 1000})

		result := backend.Softmax(x, 0)

		data := result.AsFloat32()
		for i, v := range data {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				t.Fatalf("Softmax not stable at %d: %v", i, v)
			}
		}

		expected := []float32{1.0 / 3, 1.0 / 3, 1.0 / 3}
		if !float32SliceEqual(data, expected) {
			t.Errorf("Softmax failed: got %v, expected %v", data, expected)
		}
	})

	// Masked scores at the most negative finite value collapse to zero weight
	t.Run("MaskedFill", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{1, 3}, []float32{1, -math.MaxFloat32, 2})

		result := backend.Softmax(x, -1)

		data := result.AsFloat32()
		if data[1] > 1e-6 {
			t.Errorf("Masked position got non-zero weight: %v", data[1])
		}
		sum := data[0] + data[1] + data[2]
		if math.Abs(float64(sum)-1.0) > 1e-5 {
			t.Errorf("Row does not sum to 1: %v", sum)
		}
	})

	t.Run("MiddleDimension", func(t *testing.T) {
		x := newFloat32Raw(t, tensor.Shape{2, 2, 2}, []float32{
			1, 2, 1, 2,
			3, 4, 3, 4,
		})

		result := backend.Softmax(x, 1)

		// Along dim 1, each pair (x[b][0][c], x[b][1][c]) is constant,
		// so every output is 0.5
		data := result.AsFloat32()
		for i, v := range data {
			if math.Abs(float64(v)-0.5) > 1e-5 {
				t.Errorf("Softmax dim 1 failed at %d: got %v, expected 0.5", i, v)
			}
		}
	})

	t.Run("DimOutOfRangePanics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for out-of-range dimension")
			}
		}()

		x := newFloat32Raw(t, tensor.Shape{2, 2}, make([]float32, 4))
		backend.Softmax(x, 2)
	})
}
