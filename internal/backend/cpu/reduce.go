package cpu

import (
	"fmt"

	"github.com/adagate-ml/adagate/internal/tensor"
)

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x := tensor.Randn[float32]([]int{2, 3, 4}, backend)
//	y := backend.SumDim(x, -1, true)   // shape: [2, 3, 1]
//	z := backend.SumDim(x, -1, false)  // shape: [2, 3]
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	// Normalize negative dimension
	if dim < 0 {
		dim = ndim + dim
	}

	// Validate dimension
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("sumdim: dimension %d out of range for %dD tensor", dim, ndim))
	}

	// Calculate output shape
	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, ndim-1)
		for i := 0; i < ndim; i++ {
			if i != dim {
				outShape = append(outShape, shape[i])
			}
		}
	}

	// Create result tensor
	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumdim: %v", err))
	}

	// Perform reduction
	switch x.DType() {
	case tensor.Float32:
		sumDimFloat32(x.AsFloat32(), result.AsFloat32(), shape, dim)
	case tensor.Float64:
		sumDimFloat64(x.AsFloat64(), result.AsFloat64(), shape, dim)
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

// sumDimFloat32 performs dimension reduction for float32 tensors.
func sumDimFloat32(data, result []float32, shape tensor.Shape, dim int) {
	// Initialize result to zero
	for i := range result {
		result[i] = 0
	}

	// Calculate strides for input
	strides := shape.ComputeStrides()
	numElements := shape.NumElements()

	// Calculate output strides (with reduced dimension size = 1)
	outShape := shape.Clone()
	outShape[dim] = 1
	outStrides := outShape.ComputeStrides()

	// Iterate over all input elements
	for i := 0; i < numElements; i++ {
		// Compute multi-dimensional index
		outIdx := 0
		temp := i
		for d := 0; d < len(shape); d++ {
			coord := temp / strides[d]
			temp %= strides[d]

			// For the reduced dimension, we always use coordinate 0 in output
			if d != dim {
				outIdx += coord * outStrides[d]
			}
		}

		result[outIdx] += data[i]
	}
}

// sumDimFloat64 performs dimension reduction for float64 tensors.
func sumDimFloat64(data, result []float64, shape tensor.Shape, dim int) {
	// Initialize result to zero
	for i := range result {
		result[i] = 0
	}

	// Calculate strides for input
	strides := shape.ComputeStrides()
	numElements := shape.NumElements()

	// Calculate output strides (with reduced dimension size = 1)
	outShape := shape.Clone()
	outShape[dim] = 1
	outStrides := outShape.ComputeStrides()

	// Iterate over all input elements
	for i := 0; i < numElements; i++ {
		// Compute multi-dimensional index
		outIdx := 0
		temp := i
		for d := 0; d < len(shape); d++ {
			coord := temp / strides[d]
			temp %= strides[d]

			// For the reduced dimension, we always use coordinate 0 in output
			if d != dim {
				outIdx += coord * outStrides[d]
			}
		}

		result[outIdx] += data[i]
	}
}

// Sum computes the total sum of all elements in the tensor (scalar result).
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	// Result is a scalar (empty shape)
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		var sum float32
		for _, v := range src {
			sum += v
		}
		dst[0] = sum
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		var sum float64
		for _, v := range src {
			sum += v
		}
		dst[0] = sum
	case tensor.Int32:
		src := x.AsInt32()
		dst := result.AsInt32()
		var sum int32
		for _, v := range src {
			sum += v
		}
		dst[0] = sum
	case tensor.Int64:
		src := x.AsInt64()
		dst := result.AsInt64()
		var sum int64
		for _, v := range src {
			sum += v
		}
		dst[0] = sum
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s", x.DType()))
	}

	return result
}

// Max computes the maximum of all elements in the tensor (scalar result).
func (cpu *CPUBackend) Max(x *tensor.RawTensor) *tensor.RawTensor {
	if x.NumElements() == 0 {
		panic("max: empty tensor")
	}

	// Result is a scalar (empty shape)
	result, err := tensor.NewRaw(tensor.Shape{}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("max: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		dst := result.AsFloat32()
		maxVal := src[0]
		for _, v := range src[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		dst[0] = maxVal
	case tensor.Float64:
		src := x.AsFloat64()
		dst := result.AsFloat64()
		maxVal := src[0]
		for _, v := range src[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		dst[0] = maxVal
	case tensor.Int32:
		src := x.AsInt32()
		dst := result.AsInt32()
		maxVal := src[0]
		for _, v := range src[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		dst[0] = maxVal
	case tensor.Int64:
		src := x.AsInt64()
		dst := result.AsInt64()
		maxVal := src[0]
		for _, v := range src[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		dst[0] = maxVal
	default:
		panic(fmt.Sprintf("max: unsupported dtype %s", x.DType()))
	}

	return result
}
