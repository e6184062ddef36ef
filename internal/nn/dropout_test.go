package nn

import (
	"testing"

	"github.com/adagate-ml/adagate/internal/backend/cpu"
	"github.com/adagate-ml/adagate/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropout_Inference(t *testing.T) {
	backend := cpu.New()
	drop := NewDropout(0.5, backend)

	x := tensor.Randn[float32](tensor.Shape{4, 8}, backend)
	y := drop.Forward(x, false)

	// Inference mode is the identity
	assert.Equal(t, x.Data(), y.Data())
}

func TestDropout_ZeroRate(t *testing.T) {
	backend := cpu.New()
	drop := NewDropout(0, backend)

	x := tensor.Randn[float32](tensor.Shape{4, 8}, backend)
	y := drop.Forward(x, true)

	assert.Equal(t, x.Data(), y.Data())
}

func TestDropout_Training(t *testing.T) {
	backend := cpu.New()

	rate := float32(0.5)
	drop := NewDropout(rate, backend)

	x := tensor.Ones[float32](tensor.Shape{100, 100}, backend)
	y := drop.Forward(x, true)

	require.True(t, y.Shape().Equal(x.Shape()))

	// Every element is either zeroed or scaled by 1/(1-rate)
	scaled := 1 / (1 - rate)
	zeros := 0
	for _, v := range y.Data() {
		if v == 0 {
			zeros++
			continue
		}
		assert.InDelta(t, scaled, v, 1e-5)
	}

	// With 10000 elements the zero fraction concentrates tightly around rate
	fraction := float64(zeros) / float64(x.NumElements())
	assert.InDelta(t, float64(rate), fraction, 0.05)
}

func TestDropout_InvalidRatePanics(t *testing.T) {
	backend := cpu.New()

	assert.Panics(t, func() { NewDropout(-0.1, backend) })
	assert.Panics(t, func() { NewDropout(1.0, backend) })
}

func TestDropout_NoParameters(t *testing.T) {
	backend := cpu.New()
	drop := NewDropout(0.1, backend)

	assert.Empty(t, drop.Parameters())
	assert.Equal(t, float32(0.1), drop.Rate())
}
