package nn

import (
	"math"
	"testing"

	"github.com/adagate-ml/adagate/internal/backend/cpu"
	"github.com/adagate-ml/adagate/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setIdentity turns a Linear layer into the identity transform.
func setIdentity[B tensor.Backend](l *Linear[B], n int) {
	data := l.Weight().Tensor().Data()
	for i := range data {
		data[i] = 0
	}
	for i := 0; i < n; i++ {
		data[i*n+i] = 1
	}
	bias := l.Bias().Tensor().Data()
	for i := range bias {
		bias[i] = 0
	}
}

// newIdentityGated builds a gated attention layer whose four projections
// are the identity, so the attention arithmetic can be checked by hand.
func newIdentityGated(backend *cpu.CPUBackend, features, numHeads int) *GatedAttention[*cpu.CPUBackend] {
	attn := NewGatedAttention(GatedAttentionConfig{
		NumHeads: numHeads,
		Features: features,
	}, backend)

	setIdentity(attn.WQ, features)
	setIdentity(attn.WK, features)
	setIdentity(attn.WV, features)
	setIdentity(attn.WOut, features)

	return attn
}

func TestNewGatedAttention_Basic(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{
		NumHeads:    4,
		Features:    32,
		DropoutRate: 0.1,
	}, backend)

	require.NotNil(t, attn)
	assert.NotNil(t, attn.WQ)
	assert.NotNil(t, attn.WK)
	assert.NotNil(t, attn.WV)
	assert.NotNil(t, attn.WOut)
	assert.Equal(t, 4, attn.NumHeads)
	assert.Equal(t, 8, attn.HeadDim)
	assert.Equal(t, 32, attn.Features)
	assert.Equal(t, float32(0.1), attn.DropoutRate())

	// Gate starts at ones
	require.True(t, attn.Gate.Tensor().Shape().Equal(tensor.Shape{32}))
	for _, v := range attn.Gate.Tensor().Data() {
		assert.Equal(t, float32(1), v)
	}

	// 4 projections x (weight + bias) + gate
	assert.Len(t, attn.Parameters(), 9)
}

func TestNewGatedAttention_Panics(t *testing.T) {
	backend := cpu.New()

	t.Run("IndivisibleFeatures", func(t *testing.T) {
		assert.Panics(t, func() {
			NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 5}, backend)
		})
	})

	t.Run("ZeroHeads", func(t *testing.T) {
		assert.Panics(t, func() {
			NewGatedAttention(GatedAttentionConfig{NumHeads: 0, Features: 8}, backend)
		})
	})

	t.Run("InvalidDropout", func(t *testing.T) {
		assert.Panics(t, func() {
			NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 8, DropoutRate: 1}, backend)
		})
	})
}

func TestGatedAttention_Shapes(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 4, Features: 16}, backend)

	batch, seq := 2, 5
	input := tensor.Randn[float32](tensor.Shape{batch, seq, 16}, backend)

	output, lQK, gate, weights := attn.ForwardWithWeights(input, input, input, nil, false)

	assert.True(t, output.Shape().Equal(tensor.Shape{batch, seq, 16}))
	assert.True(t, gate.Shape().Equal(tensor.Shape{16}))
	assert.True(t, weights.Shape().Equal(tensor.Shape{batch, 4, seq, seq}))

	// All-ones gate survives the threshold intact, so its L1 norm is the
	// feature count
	assert.InDelta(t, 16.0, lQK, 1e-5)
}

func TestGatedAttention_CrossAttention(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 8}, backend)

	query := tensor.Randn[float32](tensor.Shape{2, 3, 8}, backend)
	key := tensor.Randn[float32](tensor.Shape{2, 5, 8}, backend)
	value := tensor.Randn[float32](tensor.Shape{2, 5, 8}, backend)

	output, _, _, weights := attn.ForwardWithWeights(query, key, value, nil, false)

	assert.True(t, output.Shape().Equal(tensor.Shape{2, 3, 8}))
	assert.True(t, weights.Shape().Equal(tensor.Shape{2, 2, 3, 5}))
}

func TestGatedAttention_IdentityWeightsKnownValues(t *testing.T) {
	backend := cpu.New()

	attn := newIdentityGated(backend, 2, 1)

	// Orthonormal inputs, d_k = 2
	input, err := tensor.FromSlice([]float32{1, 0, 0, 1}, tensor.Shape{1, 2, 2}, backend)
	require.NoError(t, err)

	output, lQK, gate, weights := attn.ForwardWithWeights(input, input, input, nil, false)

	// With identity projections and a unit gate the layer reduces to plain
	// scaled dot-product attention: scores are I/sqrt(2)
	s := 1.0 / math.Sqrt(2)
	w1 := float32(math.Exp(s) / (math.Exp(s) + 1))
	w2 := 1 - w1

	assert.InDeltaSlice(t, []float32{w1, w2, w2, w1}, weights.Data(), 1e-5)
	assert.InDeltaSlice(t, []float32{w1, w2, w2, w1}, output.Data(), 1e-4)

	assert.InDelta(t, 2.0, lQK, 1e-6)
	assert.InDeltaSlice(t, []float32{1, 1}, gate.Data(), 1e-6)
}

func TestGatedAttention_GateThreshold(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 4}, backend)
	copy(attn.Gate.Tensor().Data(), []float32{1, 1e-5, -0.5, 0.002})

	input := tensor.Randn[float32](tensor.Shape{1, 3, 4}, backend)
	_, lQK, gate := attn.Forward(input, input, input, nil, false)

	// Threshold is 0.001 * max|gate| = 0.001; only the 1e-5 entry fails
	assert.InDeltaSlice(t, []float32{1, 0, -0.5, 0.002}, gate.Data(), 1e-7)
	assert.InDelta(t, 1.502, lQK, 1e-5)
}

func TestGatedAttention_AllZeroGate(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 4}, backend)
	copy(attn.Gate.Tensor().Data(), []float32{0, 0, 0, 0})

	input := tensor.Randn[float32](tensor.Shape{1, 2, 4}, backend)
	_, lQK, gate, weights := attn.ForwardWithWeights(input, input, input, nil, false)

	// The strict comparison zeroes everything when the gate is all zeros
	assert.InDelta(t, 0.0, lQK, 1e-7)
	for _, v := range gate.Data() {
		assert.Zero(t, v)
	}

	// Zero queries mean uniform attention
	for _, v := range weights.Data() {
		assert.InDelta(t, 0.5, v, 1e-5)
	}
}

func TestGatedAttention_GatedFeatureHasNoEffect(t *testing.T) {
	backend := cpu.New()

	attn := newIdentityGated(backend, 2, 1)
	copy(attn.Gate.Tensor().Data(), []float32{1, 1e-9})

	key, err := tensor.FromSlice([]float32{1, 0, 0, 1}, tensor.Shape{1, 2, 2}, backend)
	require.NoError(t, err)

	// Two queries that differ only in the gated-off feature
	queryA, err := tensor.FromSlice([]float32{1, 5}, tensor.Shape{1, 1, 2}, backend)
	require.NoError(t, err)
	queryB, err := tensor.FromSlice([]float32{1, -7}, tensor.Shape{1, 1, 2}, backend)
	require.NoError(t, err)

	outA, _, _, weightsA := attn.ForwardWithWeights(queryA, key, key, nil, false)
	outB, _, _, weightsB := attn.ForwardWithWeights(queryB, key, key, nil, false)

	assert.InDeltaSlice(t, weightsA.Data(), weightsB.Data(), 1e-6)
	assert.InDeltaSlice(t, outA.Data(), outB.Data(), 1e-6)
}

func TestGatedAttention_Mask(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 4}, backend)

	batch, seq := 1, 3
	query := tensor.Randn[float32](tensor.Shape{batch, seq, 4}, backend)

	// Last key position masked out for every query
	mask, err := tensor.FromSlice([]float32{1, 1, 0}, tensor.Shape{batch, 1, seq}, backend)
	require.NoError(t, err)

	_, _, _, weights := attn.ForwardWithWeights(query, query, query, mask, false)

	for h := 0; h < 2; h++ {
		for i := 0; i < seq; i++ {
			// Masked position carries exactly zero weight
			assert.Zero(t, weights.At(0, h, i, 2))

			// Surviving positions still form a distribution
			sum := weights.At(0, h, i, 0) + weights.At(0, h, i, 1)
			assert.InDelta(t, 1.0, sum, 1e-5)
		}
	}
}

func TestGatedAttention_MaskedKeyDoesNotAffectOutput(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 4}, backend)

	query := tensor.Randn[float32](tensor.Shape{1, 2, 4}, backend)
	keyA := tensor.Randn[float32](tensor.Shape{1, 3, 4}, backend)

	// keyB differs from keyA only at the masked position
	dataB := make([]float32, len(keyA.Data()))
	copy(dataB, keyA.Data())
	dataB[2*4], dataB[2*4+1], dataB[2*4+2], dataB[2*4+3] = 100, -100, 50, -50
	keyB, err := tensor.FromSlice(dataB, tensor.Shape{1, 3, 4}, backend)
	require.NoError(t, err)

	mask, err := tensor.FromSlice([]float32{1, 1, 0}, tensor.Shape{1, 1, 3}, backend)
	require.NoError(t, err)

	outA, _, _ := attn.Forward(query, keyA, keyA, mask, false)
	outB, _, _ := attn.Forward(query, keyB, keyB, mask, false)

	assert.InDeltaSlice(t, outA.Data(), outB.Data(), 1e-5)
}

func TestGatedAttention_FullyMaskedRow(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 4}, backend)

	query := tensor.Randn[float32](tensor.Shape{1, 2, 4}, backend)

	// Query row 1 may attend to nothing
	mask, err := tensor.FromSlice([]float32{
		1, 1,
		0, 0,
	}, tensor.Shape{1, 2, 2}, backend)
	require.NoError(t, err)

	_, _, _, weights := attn.ForwardWithWeights(query, query, query, mask, false)

	// The fully masked row is all zeros rather than NaN
	for h := 0; h < 2; h++ {
		for j := 0; j < 2; j++ {
			assert.Zero(t, weights.At(0, h, 1, j))
		}
	}
}

func TestGatedAttention_Deterministic(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 8, DropoutRate: 0.5}, backend)

	input := tensor.Randn[float32](tensor.Shape{2, 4, 8}, backend)

	// Dropout is inactive outside training, so repeated calls agree
	outA, lA, _ := attn.Forward(input, input, input, nil, false)
	outB, lB, _ := attn.Forward(input, input, input, nil, false)

	assert.InDelta(t, lA, lB, 1e-8)
	assert.InDeltaSlice(t, outA.Data(), outB.Data(), 1e-8)
}

func TestGatedAttention_DropoutTraining(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 8, DropoutRate: 0.5}, backend)

	input := tensor.Randn[float32](tensor.Shape{1, 4, 8}, backend)
	output, _, _, weights := attn.ForwardWithWeights(input, input, input, nil, true)

	assert.True(t, output.Shape().Equal(tensor.Shape{1, 4, 8}))

	// Returned weights are pre-dropout and still rows of a distribution
	for h := 0; h < 2; h++ {
		for i := 0; i < 4; i++ {
			var sum float32
			for j := 0; j < 4; j++ {
				sum += weights.At(0, h, i, j)
			}
			assert.InDelta(t, 1.0, sum, 1e-5)
		}
	}
}

func TestGatedAttention_ValidationPanics(t *testing.T) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 2, Features: 4}, backend)
	ok := tensor.Randn[float32](tensor.Shape{1, 2, 4}, backend)

	t.Run("NonThreeD", func(t *testing.T) {
		bad := tensor.Randn[float32](tensor.Shape{2, 4}, backend)
		assert.Panics(t, func() { attn.Forward(bad, ok, ok, nil, false) })
	})

	t.Run("FeatureMismatch", func(t *testing.T) {
		bad := tensor.Randn[float32](tensor.Shape{1, 2, 8}, backend)
		assert.Panics(t, func() { attn.Forward(bad, ok, ok, nil, false) })
	})

	t.Run("BatchMismatch", func(t *testing.T) {
		bad := tensor.Randn[float32](tensor.Shape{2, 2, 4}, backend)
		assert.Panics(t, func() { attn.Forward(bad, ok, ok, nil, false) })
	})

	t.Run("KeyValueTimeMismatch", func(t *testing.T) {
		bad := tensor.Randn[float32](tensor.Shape{1, 3, 4}, backend)
		assert.Panics(t, func() { attn.Forward(ok, ok, bad, nil, false) })
	})

	t.Run("MaskWrongRank", func(t *testing.T) {
		bad := tensor.Randn[float32](tensor.Shape{1, 2}, backend)
		assert.Panics(t, func() { attn.Forward(ok, ok, ok, bad, false) })
	})

	t.Run("MaskWrongTime2", func(t *testing.T) {
		bad := tensor.Randn[float32](tensor.Shape{1, 1, 5}, backend)
		assert.Panics(t, func() { attn.Forward(ok, ok, ok, bad, false) })
	})
}

func BenchmarkGatedAttention_Forward(b *testing.B) {
	backend := cpu.New()

	attn := NewGatedAttention(GatedAttentionConfig{NumHeads: 8, Features: 256}, backend)
	input := tensor.Randn[float32](tensor.Shape{2, 64, 256}, backend)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		attn.Forward(input, input, input, nil, false)
	}
}
