package cpu

import (
	"testing"

	"github.com/adagate-ml/adagate/internal/tensor"
)

// TestCPUBackend_Greater tests element-wise greater-than comparison.
func TestCPUBackend_Greater(t *testing.T) {
	backend := newTestBackend()

	t.Run("SameShape", func(t *testing.T) {
		a := newFloat32Raw(t, tensor.Shape{4}, []float32{1, 5, 3, 0})
		b := newFloat32Raw(t, tensor.Shape{4}, []float32{2, 2, 3, -1})

		result := backend.Greater(a, b)

		if result.DType() != tensor.Bool {
			t.Fatalf("Expected bool result, got %s", result.DType())
		}

		expected := []bool{false, true, false, true}
		resultData := result.AsBool()
		for i, exp := range expected {
			if resultData[i] != exp {
				t.Errorf("Greater failed at %d: got %v, expected %v", i, resultData[i], exp)
			}
		}
	})

	// Gate thresholding compares |a_q| against a broadcast scalar threshold
	t.Run("BroadcastScalarThreshold", func(t *testing.T) {
		a := newFloat32Raw(t, tensor.Shape{4}, []float32{0.5, 0.0001, 0.2, 0.00001})
		threshold := newFloat32Raw(t, tensor.Shape{1}, []float32{0.001})

		result := backend.Greater(a, threshold)

		expected := []bool{true, false, true, false}
		resultData := result.AsBool()
		for i, exp := range expected {
			if resultData[i] != exp {
				t.Errorf("Threshold compare failed at %d: got %v, expected %v", i, resultData[i], exp)
			}
		}
	})
}

// TestCPUBackend_GreaterEqual tests element-wise greater-or-equal comparison.
func TestCPUBackend_GreaterEqual(t *testing.T) {
	backend := newTestBackend()

	a := newFloat32Raw(t, tensor.Shape{4}, []float32{1, 5, 3, 0})
	b := newFloat32Raw(t, tensor.Shape{4}, []float32{2, 2, 3, -1})

	result := backend.GreaterEqual(a, b)

	expected := []bool{false, true, true, true}
	resultData := result.AsBool()
	for i, exp := range expected {
		if resultData[i] != exp {
			t.Errorf("GreaterEqual failed at %d: got %v, expected %v", i, resultData[i], exp)
		}
	}
}

// TestCPUBackend_Where tests conditional element selection.
func TestCPUBackend_Where(t *testing.T) {
	backend := newTestBackend()

	t.Run("SameShape", func(t *testing.T) {
		cond, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Bool, tensor.CPU)
		condData := cond.AsBool()
		condData[0], condData[1], condData[2], condData[3] = true, false, true, false

		x := newFloat32Raw(t, tensor.Shape{4}, []float32{1, 2, 3, 4})
		y := newFloat32Raw(t, tensor.Shape{4}, []float32{10, 20, 30, 40})

		result := backend.Where(cond, x, y)

		expected := []float32{1, 20, 3, 40}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Where failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	// Zeroing failed gates selects between the gate vector and zeros
	t.Run("GateZeroing", func(t *testing.T) {
		cond, _ := tensor.NewRaw(tensor.Shape{3}, tensor.Bool, tensor.CPU)
		condData := cond.AsBool()
		condData[0], condData[1], condData[2] = true, false, true

		gate := newFloat32Raw(t, tensor.Shape{3}, []float32{0.7, 0.0001, -0.3})
		zeros := newFloat32Raw(t, tensor.Shape{3}, []float32{0, 0, 0})

		result := backend.Where(cond, gate, zeros)

		expected := []float32{0.7, 0, -0.3}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Gate zeroing failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("BroadcastCondition", func(t *testing.T) {
		cond, _ := tensor.NewRaw(tensor.Shape{2, 1}, tensor.Bool, tensor.CPU)
		condData := cond.AsBool()
		condData[0], condData[1] = true, false

		x := newFloat32Raw(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
		y := newFloat32Raw(t, tensor.Shape{2, 3}, []float32{10, 20, 30, 40, 50, 60})

		result := backend.Where(cond, x, y)

		if !result.Shape().Equal(tensor.Shape{2, 3}) {
			t.Fatalf("Expected shape [2, 3], got %v", result.Shape())
		}

		expected := []float32{1, 2, 3, 40, 50, 60}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("Broadcast where failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("DTypeMismatchPanics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for mismatched dtypes")
			}
		}()

		cond, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Bool, tensor.CPU)
		x := newFloat32Raw(t, tensor.Shape{2}, []float32{1, 2})
		y, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
		backend.Where(cond, x, y)
	})
}
