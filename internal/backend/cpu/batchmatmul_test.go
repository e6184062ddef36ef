package cpu

import (
	"testing"

	"github.com/adagate-ml/adagate/internal/tensor"
)

// TestCPUBackend_BatchMatMul tests batched matrix multiplication.
func TestCPUBackend_BatchMatMul(t *testing.T) {
	backend := newTestBackend()

	t.Run("3D_TwoBatches", func(t *testing.T) {
		// Batch 0: identity, batch 1: doubling matrix
		a := newFloat32Raw(t, tensor.Shape{2, 2, 2}, []float32{
			1, 0, 0, 1,
			2, 0, 0, 2,
		})
		b := newFloat32Raw(t, tensor.Shape{2, 2, 2}, []float32{
			1, 2, 3, 4,
			1, 2, 3, 4,
		})

		result := backend.BatchMatMul(a, b)

		if !result.Shape().Equal(tensor.Shape{2, 2, 2}) {
			t.Fatalf("Expected shape [2, 2, 2], got %v", result.Shape())
		}

		expected := []float32{
			1, 2, 3, 4,
			2, 4, 6, 8,
		}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("BatchMatMul failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("4D_AttentionShapes", func(t *testing.T) {
		// [batch=1, head=2, time=2, d_k=3] x [1, 2, 3, 2] -> [1, 2, 2, 2]
		a := newFloat32Raw(t, tensor.Shape{1, 2, 2, 3}, []float32{
			1, 2, 3, 4, 5, 6,
			1, 0, 0, 0, 1, 0,
		})
		b := newFloat32Raw(t, tensor.Shape{1, 2, 3, 2}, []float32{
			1, 2, 3, 4, 5, 6,
			1, 2, 3, 4, 5, 6,
		})

		result := backend.BatchMatMul(a, b)

		if !result.Shape().Equal(tensor.Shape{1, 2, 2, 2}) {
			t.Fatalf("Expected shape [1, 2, 2, 2], got %v", result.Shape())
		}

		expected := []float32{
			22, 28, 49, 64,
			1, 2, 3, 4,
		}
		if !float32SliceEqual(result.AsFloat32(), expected) {
			t.Errorf("4D BatchMatMul failed: got %v, expected %v", result.AsFloat32(), expected)
		}
	})

	t.Run("Float64", func(t *testing.T) {
		a, _ := tensor.NewRaw(tensor.Shape{1, 2, 2}, tensor.Float64, tensor.CPU)
		b, _ := tensor.NewRaw(tensor.Shape{1, 2, 2}, tensor.Float64, tensor.CPU)

		aData := a.AsFloat64()
		aData[0], aData[1], aData[2], aData[3] = 1, 2, 3, 4
		bData := b.AsFloat64()
		bData[0], bData[1], bData[2], bData[3] = 1, 0, 0, 1

		result := backend.BatchMatMul(a, b)

		expected := []float64{1, 2, 3, 4}
		resultData := result.AsFloat64()
		for i, exp := range expected {
			if resultData[i] != exp {
				t.Errorf("Float64 batch matmul failed at %d: got %v, expected %v", i, resultData[i], exp)
			}
		}
	})

	t.Run("BatchDimMismatchPanics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for mismatched batch dimensions")
			}
		}()

		a := newFloat32Raw(t, tensor.Shape{2, 2, 2}, make([]float32, 8))
		b := newFloat32Raw(t, tensor.Shape{3, 2, 2}, make([]float32, 12))
		backend.BatchMatMul(a, b)
	})

	t.Run("InnerDimMismatchPanics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for mismatched inner dimensions")
			}
		}()

		a := newFloat32Raw(t, tensor.Shape{1, 2, 3}, make([]float32, 6))
		b := newFloat32Raw(t, tensor.Shape{1, 4, 2}, make([]float32, 8))
		backend.BatchMatMul(a, b)
	})

	t.Run("2DPanics", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic for 2D input")
			}
		}()

		a := newFloat32Raw(t, tensor.Shape{2, 2}, make([]float32, 4))
		b := newFloat32Raw(t, tensor.Shape{2, 2}, make([]float32, 4))
		backend.BatchMatMul(a, b)
	})
}

// TestCPUBackend_BatchMatMul_LargeBatch exercises the parallel path.
func TestCPUBackend_BatchMatMul_LargeBatch(t *testing.T) {
	backend := newTestBackend()

	const batch = 32
	a, _ := tensor.NewRaw(tensor.Shape{batch, 2, 2}, tensor.Float32, tensor.CPU)
	b, _ := tensor.NewRaw(tensor.Shape{batch, 2, 2}, tensor.Float32, tensor.CPU)

	aData := a.AsFloat32()
	bData := b.AsFloat32()
	for i := 0; i < batch; i++ {
		// a[i] = [[i, 0], [0, i]], b[i] = [[1, 2], [3, 4]]
		aData[i*4] = float32(i)
		aData[i*4+3] = float32(i)
		bData[i*4], bData[i*4+1], bData[i*4+2], bData[i*4+3] = 1, 2, 3, 4
	}

	result := backend.BatchMatMul(a, b)

	resultData := result.AsFloat32()
	for i := 0; i < batch; i++ {
		expected := []float32{float32(i), float32(2 * i), float32(3 * i), float32(4 * i)}
		if !float32SliceEqual(resultData[i*4:i*4+4], expected) {
			t.Errorf("Batch %d failed: got %v, expected %v", i, resultData[i*4:i*4+4], expected)
		}
	}
}
