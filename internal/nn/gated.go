package nn

import (
	"fmt"
	"math"

	"github.com/adagate-ml/adagate/internal/tensor"
)

const (
	// normEpsilon stabilizes the projection-weight row-norm denominators.
	normEpsilon = 1e-10

	// gateThreshold is the fraction of the largest |gate| entry below
	// which a gate entry is zeroed for the current forward pass.
	gateThreshold = 0.001
)

// GatedAttentionConfig holds the construction parameters for GatedAttention.
type GatedAttentionConfig struct {
	// NumHeads is the number of attention heads.
	NumHeads int

	// Features is the model dimension. Must be divisible by NumHeads.
	Features int

	// DropoutRate is the dropout probability applied to the attention
	// weights in training mode. Must be in [0, 1).
	DropoutRate float32
}

// GatedAttention implements multi-head scaled dot-product attention with a
// learnable sparsity gate on the query projection.
//
// The layer differs from plain multi-head attention in three ways:
//
//   - A gate vector (one entry per feature, initialized to ones) scales the
//     projected queries. Entries whose magnitude falls below a fraction of
//     the largest magnitude are hard-zeroed for the pass, so the layer can
//     learn to switch feature dimensions off entirely.
//   - Projected queries and keys are normalized by the row L2 norms of
//     their projection weights, which decouples the attention logits from
//     the weight scale.
//   - Forward additionally reports the L1 norm of the effective gate,
//     which callers can use as a sparsity regularization term.
//
// The layer holds no mutable forward state; concurrent Forward calls on
// one instance are safe as long as the parameters are not being mutated.
//
// Example:
//
//	backend := cpu.New()
//	attn := nn.NewGatedAttention[*cpu.CPUBackend](nn.GatedAttentionConfig{
//	    NumHeads:    4,
//	    Features:    256,
//	    DropoutRate: 0.1,
//	}, backend)
//	out, lQK, gate := attn.Forward(x, x, x, nil, false)  // self-attention
type GatedAttention[B tensor.Backend] struct {
	WQ   *Linear[B] // Query projection [features, features]
	WK   *Linear[B] // Key projection [features, features]
	WV   *Linear[B] // Value projection [features, features]
	WOut *Linear[B] // Output projection [features, features]

	// Gate is the learnable gate vector over query features, shape [features].
	Gate *Parameter[B]

	NumHeads int
	HeadDim  int
	Features int

	dropout *Dropout[B]
	backend B
}

// NewGatedAttention creates a new gated multi-head attention layer.
//
// Panics if cfg.Features is not divisible by cfg.NumHeads or if
// cfg.DropoutRate is outside [0, 1). The gate vector is initialized to
// ones, so a freshly constructed layer behaves like norm-regularized
// multi-head attention with no feature switched off.
func NewGatedAttention[B tensor.Backend](cfg GatedAttentionConfig, backend B) *GatedAttention[B] {
	if cfg.NumHeads <= 0 {
		panic(fmt.Sprintf("GatedAttention: num_heads must be positive, got %d", cfg.NumHeads))
	}
	if cfg.Features%cfg.NumHeads != 0 {
		panic(fmt.Sprintf("GatedAttention: features (%d) must be divisible by num_heads (%d)",
			cfg.Features, cfg.NumHeads))
	}

	return &GatedAttention[B]{
		WQ:       NewLinear[B](cfg.Features, cfg.Features, backend),
		WK:       NewLinear[B](cfg.Features, cfg.Features, backend),
		WV:       NewLinear[B](cfg.Features, cfg.Features, backend),
		WOut:     NewLinear[B](cfg.Features, cfg.Features, backend),
		Gate:     NewParameter("gate", Ones(tensor.Shape{cfg.Features}, backend)),
		NumHeads: cfg.NumHeads,
		HeadDim:  cfg.Features / cfg.NumHeads,
		Features: cfg.Features,
		dropout:  NewDropout(cfg.DropoutRate, backend),
		backend:  backend,
	}
}

// Forward computes gated multi-head attention.
//
// Args:
//   - query: Query tensor [batch, time1, features]
//   - key: Key tensor [batch, time2, features]
//   - value: Value tensor [batch, time2, features]
//   - mask: Optional keep-mask [batch, 1, time2] or [batch, time1, time2],
//     where non-zero means "may attend" and zero means "masked out"; nil
//     for no masking
//   - training: whether dropout is active
//
// Returns:
//   - output: [batch, time1, features]
//   - lQK: L1 norm of the effective gate (the sparsity penalty term)
//   - gate: the effective gate vector [features], thresholded entries zeroed
//
// For self-attention, pass the same tensor for query, key, and value.
func (g *GatedAttention[B]) Forward(
	query, key, value *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
	training bool,
) (*tensor.Tensor[float32, B], float32, *tensor.Tensor[float32, B]) {
	output, lQK, gate, _ := g.ForwardWithWeights(query, key, value, mask, training)
	return output, lQK, gate
}

// ForwardWithWeights computes gated multi-head attention and additionally
// returns the attention weights (post-softmax, pre-dropout).
//
// Returns:
//   - output: [batch, time1, features]
//   - lQK: L1 norm of the effective gate
//   - gate: the effective gate vector [features]
//   - weights: attention weights [batch, num_heads, time1, time2]; masked
//     positions are exactly zero
func (g *GatedAttention[B]) ForwardWithWeights(
	query, key, value *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
	training bool,
) (*tensor.Tensor[float32, B], float32, *tensor.Tensor[float32, B], *tensor.Tensor[float32, B]) {
	g.validateInputs(query, key, value, mask)

	batch := query.Shape()[0]
	time1 := query.Shape()[1]
	time2 := key.Shape()[1]

	q, k, v, lQK, gate := g.projectQKV(query, key, value, batch, time1, time2)

	// Scores: Q @ K^T / sqrt(d_k)
	kT := k.Transpose(0, 1, 3, 2)
	scores := q.BatchMatMul(kT)
	scores = scores.DivScalar(float32(math.Sqrt(float64(g.HeadDim))))

	weights := g.maskedSoftmax(scores, mask)

	// Dropout applies only to the weights used for the context, the
	// returned weights stay intact
	pAttn := g.dropout.Forward(weights, training)

	// Context: weights @ V, then merge heads
	context := pAttn.BatchMatMul(v)
	context = context.Transpose(0, 2, 1, 3).Reshape(batch, time1, g.Features)

	out2D := g.WOut.Forward(context.Reshape(batch*time1, g.Features))
	output := out2D.Reshape(batch, time1, g.Features)

	return output, lQK, gate, weights
}

// projectQKV transforms query, key and value into head-major form.
//
// Applies the four gated-projection steps: affine projections, hard
// gate thresholding on the query, row-norm normalization of Q and K,
// and the head split. Returns the projected tensors
// [batch, num_heads, time, head_dim], the L1 norm of the effective gate,
// and the effective gate vector.
func (g *GatedAttention[B]) projectQKV(
	query, key, value *tensor.Tensor[float32, B],
	batch, time1, time2 int,
) (q, k, v *tensor.Tensor[float32, B], lQK float32, gate *tensor.Tensor[float32, B]) {
	q = g.project(query, g.WQ, batch, time1)
	k = g.project(key, g.WK, batch, time2)
	v = g.project(value, g.WV, batch, time2)

	gate = g.effectiveGate()
	lQK = gate.Abs().Sum().Item()

	// Gate the query features, then normalize Q and K by the projection
	// row norms so logits are invariant to the weight scale
	gateRow := gate.Reshape(1, 1, g.Features)
	q = q.Mul(gateRow)

	normQ := rowNorms(g.WQ.Weight().Tensor())
	normK := rowNorms(g.WK.Weight().Tensor())
	q = q.Div(normQ.Reshape(1, 1, g.Features))
	k = k.Div(normK.Reshape(1, 1, g.Features))

	// [batch, time, features] -> [batch, num_heads, time, head_dim]
	q = q.Reshape(batch, time1, g.NumHeads, g.HeadDim).Transpose(0, 2, 1, 3)
	k = k.Reshape(batch, time2, g.NumHeads, g.HeadDim).Transpose(0, 2, 1, 3)
	v = v.Reshape(batch, time2, g.NumHeads, g.HeadDim).Transpose(0, 2, 1, 3)

	return q, k, v, lQK, gate
}

// effectiveGate applies the hard threshold to the gate vector.
//
// An entry survives iff |gate[j]| is strictly greater than
// gateThreshold * max|gate|; all other entries are zeroed. When the whole
// gate vector is zero, every entry fails the strict comparison and the
// effective gate is all zeros.
func (g *GatedAttention[B]) effectiveGate() *tensor.Tensor[float32, B] {
	aQ := g.Gate.Tensor()
	absA := aQ.Abs()
	maxAbs := absA.Max().Item()

	threshold := tensor.Full[float32](tensor.Shape{1}, gateThreshold*maxAbs, g.backend)
	survivors := absA.Greater(threshold)

	zeros := tensor.Zeros[float32](tensor.Shape{g.Features}, g.backend)
	return tensor.Where(survivors, aQ, zeros)
}

// maskedSoftmax computes softmax over the key axis, honoring the keep-mask.
//
// Masked positions are filled with the most negative finite float32 before
// the softmax and re-zeroed exactly afterwards, so a fully masked row
// produces zeros rather than NaNs leaking into the context.
func (g *GatedAttention[B]) maskedSoftmax(
	scores *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
) *tensor.Tensor[float32, B] {
	if mask == nil {
		return scores.Softmax(-1)
	}

	// [batch, 1|time1, time2] -> [batch, 1, 1|time1, time2], broadcast over heads
	zero := tensor.Full[float32](tensor.Shape{1}, 0, g.backend)
	keep := mask.Unsqueeze(1).Greater(zero)

	minFill := tensor.Full[float32](tensor.Shape{1}, -math.MaxFloat32, g.backend)
	masked := tensor.Where(keep, scores, minFill)

	weights := masked.Softmax(-1)

	zeroFill := tensor.Full[float32](tensor.Shape{1}, 0, g.backend)
	return tensor.Where(keep, weights, zeroFill)
}

// project reshapes 3D input to 2D, applies the linear layer, and reshapes back.
func (g *GatedAttention[B]) project(
	input *tensor.Tensor[float32, B],
	linear *Linear[B],
	batch, seq int,
) *tensor.Tensor[float32, B] {
	input2D := input.Reshape(batch*seq, g.Features)
	output2D := linear.Forward(input2D)
	return output2D.Reshape(batch, seq, g.Features)
}

// rowNorms computes the per-row L2 norms of a weight matrix plus epsilon.
//
// For a weight of shape [out_features, in_features] the result has shape
// [out_features]. The Clone forces the multiply onto the allocating path
// so the parameter buffer is never written.
func rowNorms[B tensor.Backend](w *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	squared := w.Clone().Mul(w)
	return squared.SumDim(1, false).Sqrt().AddScalar(normEpsilon)
}

// validateInputs checks the shapes of the forward inputs.
func (g *GatedAttention[B]) validateInputs(
	query, key, value *tensor.Tensor[float32, B],
	mask *tensor.Tensor[float32, B],
) {
	if len(query.Shape()) != 3 {
		panic("GatedAttention.Forward: query must be 3D [batch, time1, features]")
	}
	if len(key.Shape()) != 3 {
		panic("GatedAttention.Forward: key must be 3D [batch, time2, features]")
	}
	if len(value.Shape()) != 3 {
		panic("GatedAttention.Forward: value must be 3D [batch, time2, features]")
	}
	if query.Shape()[2] != g.Features || key.Shape()[2] != g.Features || value.Shape()[2] != g.Features {
		panic(fmt.Sprintf("GatedAttention.Forward: inputs must have %d features, got query %d, key %d, value %d",
			g.Features, query.Shape()[2], key.Shape()[2], value.Shape()[2]))
	}
	if key.Shape()[1] != value.Shape()[1] {
		panic("GatedAttention.Forward: key and value must have same time dimension")
	}
	if query.Shape()[0] != key.Shape()[0] || key.Shape()[0] != value.Shape()[0] {
		panic("GatedAttention.Forward: query, key and value must have same batch size")
	}

	if mask != nil {
		mShape := mask.Shape()
		if len(mShape) != 3 {
			panic("GatedAttention.Forward: mask must be 3D [batch, 1, time2] or [batch, time1, time2]")
		}
		if mShape[0] != query.Shape()[0] {
			panic(fmt.Sprintf("GatedAttention.Forward: mask batch %d does not match input batch %d",
				mShape[0], query.Shape()[0]))
		}
		if mShape[1] != 1 && mShape[1] != query.Shape()[1] {
			panic(fmt.Sprintf("GatedAttention.Forward: mask time1 must be 1 or %d, got %d",
				query.Shape()[1], mShape[1]))
		}
		if mShape[2] != key.Shape()[1] {
			panic(fmt.Sprintf("GatedAttention.Forward: mask time2 %d does not match key time %d",
				mShape[2], key.Shape()[1]))
		}
	}
}

// Parameters returns all trainable parameters: the four projection layers'
// weights and biases plus the gate vector.
func (g *GatedAttention[B]) Parameters() []*Parameter[B] {
	params := make([]*Parameter[B], 0, 9)
	params = append(params, g.WQ.Parameters()...)
	params = append(params, g.WK.Parameters()...)
	params = append(params, g.WV.Parameters()...)
	params = append(params, g.WOut.Parameters()...)
	params = append(params, g.Gate)
	return params
}

// DropoutRate returns the dropout probability applied to attention weights.
func (g *GatedAttention[B]) DropoutRate() float32 {
	return g.dropout.Rate()
}
