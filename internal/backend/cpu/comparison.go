package cpu

import (
	"fmt"

	"github.com/adagate-ml/adagate/internal/tensor"
)

// Comparison operations - return bool tensors.

// Greater returns a > b element-wise.
func (cpu *CPUBackend) Greater(a, b *tensor.RawTensor) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("greater: %v", err))
	}

	result, err := tensor.NewRaw(outShape, tensor.Bool, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("greater: %v", err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		greaterVectorized(result, a, b)
	} else {
		greaterWithBroadcast(result, a, b, outShape)
	}

	return result
}

// GreaterEqual returns a >= b element-wise.
func (cpu *CPUBackend) GreaterEqual(a, b *tensor.RawTensor) *tensor.RawTensor {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("greaterEqual: %v", err))
	}

	result, err := tensor.NewRaw(outShape, tensor.Bool, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("greaterEqual: %v", err))
	}

	if !needsBroadcast && a.Shape().Equal(b.Shape()) {
		greaterEqualVectorized(result, a, b)
	} else {
		greaterEqualWithBroadcast(result, a, b, outShape)
	}

	return result
}

// ============================================================================
// Vectorized implementations (same shape)
// ============================================================================

func greaterVectorized(result, a, b *tensor.RawTensor) {
	dst := result.AsBool()
	switch a.DType() {
	case tensor.Float32:
		aData, bData := a.AsFloat32(), b.AsFloat32()
		for i := range dst {
			dst[i] = aData[i] > bData[i]
		}
	case tensor.Float64:
		aData, bData := a.AsFloat64(), b.AsFloat64()
		for i := range dst {
			dst[i] = aData[i] > bData[i]
		}
	case tensor.Int32:
		aData, bData := a.AsInt32(), b.AsInt32()
		for i := range dst {
			dst[i] = aData[i] > bData[i]
		}
	case tensor.Int64:
		aData, bData := a.AsInt64(), b.AsInt64()
		for i := range dst {
			dst[i] = aData[i] > bData[i]
		}
	default:
		panic(fmt.Sprintf("greater: unsupported dtype %s", a.DType()))
	}
}

func greaterEqualVectorized(result, a, b *tensor.RawTensor) {
	dst := result.AsBool()
	switch a.DType() {
	case tensor.Float32:
		aData, bData := a.AsFloat32(), b.AsFloat32()
		for i := range dst {
			dst[i] = aData[i] >= bData[i]
		}
	case tensor.Float64:
		aData, bData := a.AsFloat64(), b.AsFloat64()
		for i := range dst {
			dst[i] = aData[i] >= bData[i]
		}
	case tensor.Int32:
		aData, bData := a.AsInt32(), b.AsInt32()
		for i := range dst {
			dst[i] = aData[i] >= bData[i]
		}
	case tensor.Int64:
		aData, bData := a.AsInt64(), b.AsInt64()
		for i := range dst {
			dst[i] = aData[i] >= bData[i]
		}
	default:
		panic(fmt.Sprintf("greaterEqual: unsupported dtype %s", a.DType()))
	}
}

// ============================================================================
// Broadcasting implementations
// ============================================================================

func greaterWithBroadcast(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsBool()
	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(a.Shape(), outShape)
	bStrides := computeBroadcastStridesForShape(b.Shape(), outShape)

	switch a.DType() {
	case tensor.Float32:
		aData, bData := a.AsFloat32(), b.AsFloat32()
		for i := range dst {
			aIdx := computeFlatIndex(i, outStrides, aStrides)
			bIdx := computeFlatIndex(i, outStrides, bStrides)
			dst[i] = aData[aIdx] > bData[bIdx]
		}
	case tensor.Float64:
		aData, bData := a.AsFloat64(), b.AsFloat64()
		for i := range dst {
			aIdx := computeFlatIndex(i, outStrides, aStrides)
			bIdx := computeFlatIndex(i, outStrides, bStrides)
			dst[i] = aData[aIdx] > bData[bIdx]
		}
	case tensor.Int32:
		aData, bData := a.AsInt32(), b.AsInt32()
		for i := range dst {
			aIdx := computeFlatIndex(i, outStrides, aStrides)
			bIdx := computeFlatIndex(i, outStrides, bStrides)
			dst[i] = aData[aIdx] > bData[bIdx]
		}
	case tensor.Int64:
		aData, bData := a.AsInt64(), b.AsInt64()
		for i := range dst {
			aIdx := computeFlatIndex(i, outStrides, aStrides)
			bIdx := computeFlatIndex(i, outStrides, bStrides)
			dst[i] = aData[aIdx] > bData[bIdx]
		}
	default:
		panic(fmt.Sprintf("greater: unsupported dtype %s", a.DType()))
	}
}

func greaterEqualWithBroadcast(result, a, b *tensor.RawTensor, outShape tensor.Shape) {
	dst := result.AsBool()
	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(a.Shape(), outShape)
	bStrides := computeBroadcastStridesForShape(b.Shape(), outShape)

	switch a.DType() {
	case tensor.Float32:
		aData, bData := a.AsFloat32(), b.AsFloat32()
		for i := range dst {
			aIdx := computeFlatIndex(i, outStrides, aStrides)
			bIdx := computeFlatIndex(i, outStrides, bStrides)
			dst[i] = aData[aIdx] >= bData[bIdx]
		}
	case tensor.Float64:
		aData, bData := a.AsFloat64(), b.AsFloat64()
		for i := range dst {
			aIdx := computeFlatIndex(i, outStrides, aStrides)
			bIdx := computeFlatIndex(i, outStrides, bStrides)
			dst[i] = aData[aIdx] >= bData[bIdx]
		}
	case tensor.Int32:
		aData, bData := a.AsInt32(), b.AsInt32()
		for i := range dst {
			aIdx := computeFlatIndex(i, outStrides, aStrides)
			bIdx := computeFlatIndex(i, outStrides, bStrides)
			dst[i] = aData[aIdx] >= bData[bIdx]
		}
	case tensor.Int64:
		aData, bData := a.AsInt64(), b.AsInt64()
		for i := range dst {
			aIdx := computeFlatIndex(i, outStrides, aStrides)
			bIdx := computeFlatIndex(i, outStrides, bStrides)
			dst[i] = aData[aIdx] >= bData[bIdx]
		}
	default:
		panic(fmt.Sprintf("greaterEqual: unsupported dtype %s", a.DType()))
	}
}
