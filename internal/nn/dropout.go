package nn

import (
	"fmt"

	"github.com/adagate-ml/adagate/internal/tensor"
)

// Dropout implements inverted dropout.
//
// During training, each element is zeroed with probability rate and the
// survivors are scaled by 1/(1-rate) so the expected value is unchanged.
// In evaluation mode the input passes through untouched.
//
// The training mode is passed explicitly per call rather than stored on
// the layer, so a single instance is safe for concurrent use.
//
// Example:
//
//	drop := nn.NewDropout(0.1, backend)
//	y := drop.Forward(x, true)   // training: random mask applied
//	y = drop.Forward(x, false)   // inference: identity
type Dropout[B tensor.Backend] struct {
	rate    float32
	backend B
}

// NewDropout creates a new Dropout layer.
//
// Panics if rate is outside [0, 1).
func NewDropout[B tensor.Backend](rate float32, backend B) *Dropout[B] {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("Dropout: rate must be in [0, 1), got %v", rate))
	}
	return &Dropout[B]{
		rate:    rate,
		backend: backend,
	}
}

// Forward applies dropout to the input.
//
// When training is false or the rate is zero, the input is returned as is.
func (d *Dropout[B]) Forward(x *tensor.Tensor[float32, B], training bool) *tensor.Tensor[float32, B] {
	if !training || d.rate == 0 {
		return x
	}

	// Bernoulli keep-mask: uniform noise >= rate keeps the element
	noise := tensor.Rand[float32](x.Shape(), d.backend)
	threshold := tensor.Full[float32](tensor.Shape{1}, d.rate, d.backend)
	keep := noise.GreaterEqual(threshold)

	zeros := tensor.Zeros[float32](x.Shape(), d.backend)
	kept := tensor.Where(keep, x, zeros)

	// Inverted scaling keeps the expected activation constant
	return kept.DivScalar(1 - d.rate)
}

// Rate returns the dropout probability.
func (d *Dropout[B]) Rate() float32 {
	return d.rate
}

// Parameters returns an empty slice; dropout has no trainable parameters.
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}
