package tensor

// Extended tensor operations - typed wrappers for backend operations.
//
// This file provides type-safe wrappers at the Tensor[T, B] level for
// scalar, math, activation, comparison, reduction, and selection kernels.
//
// Naming follows Burn (Rust) conventions:
//   - Scalar ops: MulScalar(T) - explicit naming
//   - Comparisons: Greater(other) + Gt(other) alias - full + short

// ============================================================================
// Scalar Operations
// ============================================================================

// MulScalar multiplies each element of the tensor by a scalar value.
//
// The scalar is broadcast to all elements of the tensor.
//
// Example:
//
//	x := tensor.Randn[float32](Shape{2, 3}, backend)
//	y := x.MulScalar(2.5)  // multiply all elements by 2.5
func (t *Tensor[T, B]) MulScalar(scalar T) *Tensor[T, B] {
	result := t.backend.MulScalar(t.raw, scalar)
	return New[T, B](result, t.backend)
}

// AddScalar adds a scalar value to each element of the tensor.
//
// The scalar is broadcast to all elements of the tensor.
//
// Example:
//
//	x := tensor.Randn[float32](Shape{2, 3}, backend)
//	y := x.AddScalar(1.0)  // add 1.0 to all elements
func (t *Tensor[T, B]) AddScalar(scalar T) *Tensor[T, B] {
	result := t.backend.AddScalar(t.raw, scalar)
	return New[T, B](result, t.backend)
}

// SubScalar subtracts a scalar value from each element of the tensor.
//
// The scalar is broadcast to all elements of the tensor.
//
// Example:
//
//	x := tensor.Randn[float32](Shape{2, 3}, backend)
//	y := x.SubScalar(0.5)  // subtract 0.5 from all elements
func (t *Tensor[T, B]) SubScalar(scalar T) *Tensor[T, B] {
	result := t.backend.SubScalar(t.raw, scalar)
	return New[T, B](result, t.backend)
}

// DivScalar divides each element of the tensor by a scalar value.
//
// The scalar is broadcast to all elements of the tensor.
//
// Example:
//
//	x := tensor.Randn[float32](Shape{2, 3}, backend)
//	y := x.DivScalar(2.0)  // divide all elements by 2.0
func (t *Tensor[T, B]) DivScalar(scalar T) *Tensor[T, B] {
	result := t.backend.DivScalar(t.raw, scalar)
	return New[T, B](result, t.backend)
}

// ============================================================================
// Math Operations
// ============================================================================

// Exp computes the exponential (e^x) of each element.
//
// Example:
//
//	x := tensor.Randn[float32](Shape{2, 3}, backend)
//	y := x.Exp()  // e^x for each element
func (t *Tensor[T, B]) Exp() *Tensor[T, B] {
	result := t.backend.Exp(t.raw)
	return New[T, B](result, t.backend)
}

// Sqrt computes the square root of each element.
//
// Example:
//
//	x := tensor.Randn[float32](Shape{2, 3}, backend)
//	y := x.Sqrt()  // sqrt(x) for each element
func (t *Tensor[T, B]) Sqrt() *Tensor[T, B] {
	result := t.backend.Sqrt(t.raw)
	return New[T, B](result, t.backend)
}

// Abs computes the absolute value of each element.
//
// Example:
//
//	x := tensor.Randn[float32](Shape{2, 3}, backend)
//	y := x.Abs()  // |x| for each element
func (t *Tensor[T, B]) Abs() *Tensor[T, B] {
	result := t.backend.Abs(t.raw)
	return New[T, B](result, t.backend)
}

// ============================================================================
// Activation Functions
// ============================================================================

// Softmax computes the softmax function along the specified dimension.
//
// Softmax(x_i) = exp(x_i) / sum(exp(x_j)) for all j in dimension.
// Supports negative dimension indexing (-1 = last dimension).
//
// Example:
//
//	logits := tensor.Randn[float32](Shape{2, 10}, backend)
//	probs := logits.Softmax(1)  // softmax along last dimension
func (t *Tensor[T, B]) Softmax(dim int) *Tensor[T, B] {
	result := t.backend.Softmax(t.raw, dim)
	return New[T, B](result, t.backend)
}

// ============================================================================
// Comparison Operations
//
// All comparison operations return Tensor[bool, B].
// ============================================================================

// Greater returns a boolean tensor where each element is true if the
// corresponding element in this tensor is greater than the corresponding
// element in other.
//
// Supports broadcasting between tensors of different shapes.
//
// Example:
//
//	a := tensor.Arange[float32](0, 5, backend)
//	b := tensor.Full[float32](Shape{5}, 2.0, backend)
//	mask := a.Greater(b)  // [false, false, false, true, true]
func (t *Tensor[T, B]) Greater(other *Tensor[T, B]) *Tensor[bool, B] {
	result := t.backend.Greater(t.raw, other.raw)
	return New[bool, B](result, t.backend)
}

// Gt is a short alias for Greater.
//
// Example:
//
//	mask := a.Gt(b)  // same as a.Greater(b)
func (t *Tensor[T, B]) Gt(other *Tensor[T, B]) *Tensor[bool, B] {
	return t.Greater(other)
}

// GreaterEqual returns a boolean tensor where each element is true if the
// corresponding element in this tensor is greater than or equal to the
// corresponding element in other.
//
// Supports broadcasting between tensors of different shapes.
//
// Example:
//
//	a := tensor.Arange[float32](0, 5, backend)
//	b := tensor.Full[float32](Shape{5}, 2.0, backend)
//	mask := a.GreaterEqual(b)  // [false, false, true, true, true]
func (t *Tensor[T, B]) GreaterEqual(other *Tensor[T, B]) *Tensor[bool, B] {
	result := t.backend.GreaterEqual(t.raw, other.raw)
	return New[bool, B](result, t.backend)
}

// Ge is a short alias for GreaterEqual.
//
// Example:
//
//	mask := a.Ge(b)  // same as a.GreaterEqual(b)
func (t *Tensor[T, B]) Ge(other *Tensor[T, B]) *Tensor[bool, B] {
	return t.GreaterEqual(other)
}

// ============================================================================
// Reduction Operations
// ============================================================================

// Sum computes the sum of all elements in the tensor, returning a scalar.
//
// The result is a tensor with shape [] (scalar).
//
// Example:
//
//	x := tensor.Randn[float32](Shape{3, 4}, backend)
//	total := x.Sum()  // sum of all 12 elements
func (t *Tensor[T, B]) Sum() *Tensor[T, B] {
	result := t.backend.Sum(t.raw)
	return New[T, B](result, t.backend)
}

// SumDim computes the sum along the specified dimension.
//
// When keepDim is true, the reduced dimension is kept with size 1.
// Supports negative dimension indexing (-1 = last dimension).
//
// Example:
//
//	x := tensor.Randn[float32](Shape{3, 4}, backend)
//	rows := x.SumDim(1, false)  // Shape: [3], sum of each row
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	result := t.backend.SumDim(t.raw, dim, keepDim)
	return New[T, B](result, t.backend)
}

// Max computes the maximum of all elements in the tensor, returning a scalar.
//
// The result is a tensor with shape [] (scalar).
//
// Example:
//
//	x := tensor.Randn[float32](Shape{3, 4}, backend)
//	m := x.Max()  // maximum of all 12 elements
func (t *Tensor[T, B]) Max() *Tensor[T, B] {
	result := t.backend.Max(t.raw)
	return New[T, B](result, t.backend)
}

// ============================================================================
// Selection Operations
// ============================================================================

// Where selects elements from x where condition is true, and from y otherwise.
//
// The condition is a boolean tensor; x and y must share a dtype. All three
// tensors broadcast together to the result shape.
//
// Example:
//
//	cond := a.Greater(b)
//	z := tensor.Where(cond, a, b)  // element-wise max of a and b
func Where[T DType, B Backend](condition *Tensor[bool, B], x, y *Tensor[T, B]) *Tensor[T, B] {
	result := x.backend.Where(condition.raw, x.raw, y.raw)
	return New[T, B](result, x.backend)
}
