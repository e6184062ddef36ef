// Package nn implements the neural network layers of the adagate library.
//
// The package provides the building blocks around the gated attention layer:
//   - Module interface: base interface for single-input components
//   - Parameter: named trainable tensors
//   - Linear: fully connected layer
//   - Dropout: inverted dropout with an explicit training flag
//   - ScaledDotProductAttention: the core attention primitive
//   - GatedAttention: multi-head attention with a sparsity gate on the query projection
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/adagate-ml/adagate/internal/tensor"
)

// Module is the base interface for single-input neural network components.
//
// Modules with richer signatures (attention takes query/key/value/mask)
// expose their own Forward methods and only share the Parameters contract.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Linear expects [batch_size, in_features].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters.
	Parameters() []*Parameter[B]
}
