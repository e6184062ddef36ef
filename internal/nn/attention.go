package nn

import (
	"math"

	"github.com/adagate-ml/adagate/internal/tensor"
)

// ScaledDotProductAttention computes attention scores using the scaled dot-product mechanism.
//
// This is the core attention primitive, implementing:
//
//	Attention(Q, K, V) = softmax(QK^T / sqrt(d_k)) * V
//
// Parameters:
//   - query: Query tensor [batch, heads, seq_q, head_dim]
//   - key: Key tensor [batch, heads, seq_k, head_dim]
//   - value: Value tensor [batch, heads, seq_k, head_dim]
//   - mask: Optional additive mask [batch, 1, seq_q, seq_k] or nil (-inf for masked positions)
//   - scale: Scaling factor (0 for auto-compute as 1/sqrt(head_dim))
//
// Returns:
//   - output: Attended values [batch, heads, seq_q, head_dim]
//   - weights: Attention weights [batch, heads, seq_q, seq_k]
//
// Example:
//
//	backend := cpu.New()
//	Q := tensor.Randn[float32](tensor.Shape{2, 8, 10, 64}, backend)
//	K := tensor.Randn[float32](tensor.Shape{2, 8, 10, 64}, backend)
//	V := tensor.Randn[float32](tensor.Shape{2, 8, 10, 64}, backend)
//	output, weights := nn.ScaledDotProductAttention(Q, K, V, nil, 0)
func ScaledDotProductAttention[B tensor.Backend](
	query, key, value *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
	scale float32,
) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	validateAttentionInputs(query, key, value)

	qHeadDim := query.Shape()[3]
	if scale == 0 {
		scale = float32(1.0 / math.Sqrt(float64(qHeadDim)))
	}

	// 1. Attention scores: Q @ K^T
	// K^T swaps the last two dimensions [batch, heads, seq_k, head_dim] -> [batch, heads, head_dim, seq_k]
	kT := key.Transpose(0, 1, 3, 2)
	scores := query.BatchMatMul(kT)

	// 2. Scale
	scores = scores.MulScalar(scale)

	// 3. Additive mask
	if mask != nil {
		scores = scores.Add(mask)
	}

	// 4. Softmax over keys
	weights := scores.Softmax(-1)

	// 5. Output: weights @ V
	output := weights.BatchMatMul(value)

	return output, weights
}

// validateAttentionInputs validates the input tensors for attention.
func validateAttentionInputs[B tensor.Backend](
	query, key, value *tensor.Tensor[float32, B],
) {
	if len(query.Shape()) != 4 {
		panic("ScaledDotProductAttention: query must be 4D [batch, heads, seq_q, head_dim]")
	}
	if len(key.Shape()) != 4 {
		panic("ScaledDotProductAttention: key must be 4D [batch, heads, seq_k, head_dim]")
	}
	if len(value.Shape()) != 4 {
		panic("ScaledDotProductAttention: value must be 4D [batch, heads, seq_k, head_dim]")
	}

	if query.Shape()[3] != key.Shape()[3] {
		panic("ScaledDotProductAttention: query and key must have same head_dim")
	}
	if key.Shape()[2] != value.Shape()[2] {
		panic("ScaledDotProductAttention: key and value must have same seq length")
	}
}

// CausalMask creates a causal (autoregressive) attention mask.
//
// Each position can only attend to earlier positions (including itself).
//
// Returns an additive mask tensor where:
//   - Upper triangle (future positions) = -inf
//   - Lower triangle + diagonal = 0
//
// Shape: [1, 1, seq_len, seq_len] (broadcastable to [batch, heads, seq, seq])
//
// Example:
//
//	// For seq_len=4:
//	// [[0,   -inf, -inf, -inf],
//	//  [0,   0,    -inf, -inf],
//	//  [0,   0,    0,    -inf],
//	//  [0,   0,    0,    0   ]]
func CausalMask[B tensor.Backend](seqLen int, backend B) *tensor.Tensor[float32, B] {
	mask := tensor.Zeros[float32](tensor.Shape{1, 1, seqLen, seqLen}, backend)

	negInf := float32(math.Inf(-1))
	data := mask.Data()

	for i := 0; i < seqLen; i++ {
		for j := i + 1; j < seqLen; j++ {
			data[i*seqLen+j] = negInf
		}
	}

	return mask
}
