// Copyright 2025 Adagate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, Dropout
//   - Attention: GatedAttention, ScaledDotProductAttention, CausalMask
//   - Utilities: Module interface, Parameter
//   - Initialization: Xavier, Zeros, Ones, Randn
//
// # Basic Usage
//
//	import (
//	    "github.com/adagate-ml/adagate/nn"
//	    "github.com/adagate-ml/adagate/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    attn := nn.NewGatedAttention(nn.GatedAttentionConfig{
//	        NumHeads:    8,
//	        Features:    512,
//	        DropoutRate: 0.1,
//	    }, backend)
//
//	    // Self-attention forward pass
//	    output, lQK, gate := attn.Forward(x, x, x, nil, false)
//	    _ = lQK  // L1 norm of the thresholded gate
//	    _ = gate // effective gate vector after hard thresholding
//	    _ = output
//	}
//
// # Attention
//
// GatedAttention is multi-head scaled dot-product attention with a learnable
// sparsity gate on the query projection. Gate entries whose magnitude falls
// below a fraction of the largest magnitude are zeroed, so the layer learns
// which feature columns to keep.
//
//	attn := nn.NewGatedAttention(nn.GatedAttentionConfig{NumHeads: 8, Features: 512}, backend)
//
// ScaledDotProductAttention is the bare attention primitive over
// [batch, heads, seq, head_dim] tensors with an optional additive mask:
//
//	output, weights := nn.ScaledDotProductAttention(q, k, v, nn.CausalMask(seq, backend), 0)
//
// # Layers
//
// Linear: Fully connected layer with Xavier initialization
//
//	layer := nn.NewLinear(inFeatures, outFeatures, backend)
//
// Dropout: Inverted dropout with an explicit training flag
//
//	drop := nn.NewDropout(0.1, backend)
//	y := drop.Forward(x, true)
package nn
