// Copyright 2025 Adagate ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/adagate-ml/adagate/internal/nn"
	"github.com/adagate-ml/adagate/internal/tensor"
)

// Module interface defines the common interface for single-input modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a trainable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer with Xavier initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(784, 128, backend)
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// Dropout represents an inverted dropout layer with an explicit training flag.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a new dropout layer with the given drop probability.
//
// Example:
//
//	backend := cpu.New()
//	drop := nn.NewDropout(0.1, backend)
//	y := drop.Forward(x, true) // training mode
func NewDropout[B tensor.Backend](rate float32, backend B) *Dropout[B] {
	return nn.NewDropout(rate, backend)
}

// Initialization

// Xavier creates a tensor initialized with Xavier/Glorot uniform initialization.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// Zeros creates a zero-initialized float32 tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}

// Ones creates a one-initialized float32 tensor.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Ones(shape, backend)
}

// Randn creates a float32 tensor initialized from the standard normal distribution.
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Randn(shape, backend)
}
