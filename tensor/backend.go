// Copyright 2025 Adagate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/adagate-ml/adagate/internal/tensor"

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - backend/cpu: Pure Go with gonum BLAS matrix kernels
//
// Example:
//
//	import (
//	    "github.com/adagate-ml/adagate/tensor"
//	    "github.com/adagate-ml/adagate/backend/cpu"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)  // Uses backend.Add under the hood
type Backend interface {
	// Element-wise binary operations.
	Add(a, b *RawTensor) *RawTensor // Element-wise addition.
	Sub(a, b *RawTensor) *RawTensor // Element-wise subtraction.
	Mul(a, b *RawTensor) *RawTensor // Element-wise multiplication.
	Div(a, b *RawTensor) *RawTensor // Element-wise division.

	// Matrix operations.
	MatMul(a, b *RawTensor) *RawTensor      // Matrix multiplication.
	BatchMatMul(a, b *RawTensor) *RawTensor // Batched matrix multiplication for 3D/4D tensors.

	// Shape operations.
	Reshape(t *RawTensor, newShape Shape) *RawTensor // Reshape tensor.
	Transpose(t *RawTensor, axes ...int) *RawTensor  // Transpose dimensions.

	// Scalar operations (element-wise with scalar).
	MulScalar(x *RawTensor, scalar any) *RawTensor // Multiply by scalar.
	AddScalar(x *RawTensor, scalar any) *RawTensor // Add scalar.
	SubScalar(x *RawTensor, scalar any) *RawTensor // Subtract scalar.
	DivScalar(x *RawTensor, scalar any) *RawTensor // Divide by scalar.

	// Math operations (element-wise).
	Exp(x *RawTensor) *RawTensor  // Exponential.
	Sqrt(x *RawTensor) *RawTensor // Square root.
	Abs(x *RawTensor) *RawTensor  // Absolute value.

	// Activation functions.
	Softmax(x *RawTensor, dim int) *RawTensor // Softmax along dimension.

	// Comparison operations (element-wise, return bool tensor).
	Greater(a, b *RawTensor) *RawTensor      // a > b.
	GreaterEqual(a, b *RawTensor) *RawTensor // a >= b.

	// Reduction operations.
	Sum(x *RawTensor) *RawTensor                           // Total sum (scalar result).
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // Sum along dimension.
	Max(x *RawTensor) *RawTensor                           // Total maximum (scalar result).

	// Manipulation operations.
	Cat(tensors []*RawTensor, dim int) *RawTensor // Concatenate along dimension.
	Unsqueeze(x *RawTensor, dim int) *RawTensor   // Add dimension of size 1.
	Squeeze(x *RawTensor, dim int) *RawTensor     // Remove dimension of size 1.

	// Indexing operations.
	Where(condition, x, y *RawTensor) *RawTensor // Conditional element selection.

	// Metadata.
	Name() string   // Backend name (e.g., "CPU").
	Device() Device // Device type.
}

// Compile-time check that internal Backend implements public Backend.
var _ Backend = tensor.Backend(nil)
