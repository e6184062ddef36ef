// Copyright 2025 Adagate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - gonum BLAS kernels for matrix multiplication
//   - Float32 and Float64 support
//   - Parallel batch processing
//   - NumPy-compatible broadcasting
//
// # Basic Usage
//
//	import (
//	    "github.com/adagate-ml/adagate/backend/cpu"
//	    "github.com/adagate-ml/adagate/tensor"
//	    "github.com/adagate-ml/adagate/nn"
//	)
//
//	func main() {
//	    // Create CPU backend
//	    backend := cpu.New()
//
//	    // Use with tensors
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	    z := x.Add(y)
//
//	    // Use with neural networks
//	    attn := nn.NewGatedAttention(nn.GatedAttentionConfig{
//	        NumHeads: 8,
//	        Features: 512,
//	    }, backend)
//	}
//
// # Thread Safety
//
// The CPU backend is safe for concurrent use. Each tensor operation
// is isolated and does not share mutable state.
package cpu
