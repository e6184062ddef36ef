// Copyright 2025 Adagate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/adagate-ml/adagate/internal/nn"
	"github.com/adagate-ml/adagate/internal/tensor"
)

// GatedAttentionConfig configures a GatedAttention layer.
type GatedAttentionConfig = nn.GatedAttentionConfig

// GatedAttention implements multi-head scaled dot-product attention with a
// learnable sparsity gate on the query projection.
//
// On top of plain multi-head attention the layer:
//
//   - Scales the projected queries by a learnable gate vector (one entry
//     per feature). Gate entries whose magnitude falls below a fraction of
//     the largest magnitude are hard-zeroed for the pass, so the layer can
//     learn to switch feature dimensions off entirely.
//   - Normalizes projected queries and keys by the row L2 norms of their
//     projection weights, decoupling the attention logits from the weight
//     scale.
//   - Reports the L1 norm of the effective gate, usable as a sparsity
//     regularization term.
type GatedAttention[B tensor.Backend] = nn.GatedAttention[B]

// NewGatedAttention creates a new gated multi-head attention layer.
//
// Panics if cfg.Features is not divisible by cfg.NumHeads or if
// cfg.DropoutRate is outside [0, 1). The gate is initialized to ones.
//
// Example:
//
//	cfg := nn.GatedAttentionConfig{
//	    NumHeads:    8,
//	    Features:    512,
//	    DropoutRate: 0.1,
//	}
//	attn := nn.NewGatedAttention(cfg, backend)
//	output, lQK, gate := attn.Forward(x, x, x, nil, false)
func NewGatedAttention[B tensor.Backend](cfg GatedAttentionConfig, backend B) *GatedAttention[B] {
	return nn.NewGatedAttention(cfg, backend)
}

// ScaledDotProductAttention computes softmax(QK^T * scale + mask) @ V.
//
// Inputs are head-major 4D tensors [batch, heads, seq, head_dim]. The mask,
// when non-nil, is added to the scores before the softmax, so masked
// positions should carry a large negative value (see CausalMask). Passing
// scale = 0 selects the default 1/sqrt(head_dim).
//
// Returns the attended output and the attention weights
// [batch, heads, seq_q, seq_k].
func ScaledDotProductAttention[B tensor.Backend](
	query, key, value *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
	scale float32,
) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	return nn.ScaledDotProductAttention(query, key, value, mask, scale)
}

// CausalMask builds an additive causal mask [1, 1, seqLen, seqLen] with
// -inf above the diagonal, for use with ScaledDotProductAttention.
//
// Example:
//
//	mask := nn.CausalMask(seq, backend)
//	output, _ := nn.ScaledDotProductAttention(q, k, v, mask, 0)
func CausalMask[B tensor.Backend](seqLen int, backend B) *tensor.Tensor[float32, B] {
	return nn.CausalMask(seqLen, backend)
}
