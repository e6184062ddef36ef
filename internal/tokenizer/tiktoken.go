// Package tokenizer provides the text frontend for the adagate demo.
//
// It wraps the pkoukk/tiktoken-go library so demo code can turn text into
// token IDs without carrying its own BPE implementation.
package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingCL100kBase is the encoding used by GPT-4 era models.
	EncodingCL100kBase = "cl100k_base"
	// EncodingP50kBase is the encoding used by GPT-3 era models.
	EncodingP50kBase = "p50k_base"
)

// TikToken wraps a tiktoken BPE encoding.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken creates a tokenizer with the specified encoding.
//
// The underlying library fetches the BPE ranks on first use, so this can
// fail without network access.
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int) string {
	return t.encoding.Decode(tokens)
}

// DecodeToken converts a single token ID to its text fragment.
func (t *TikToken) DecodeToken(token int) string {
	return t.encoding.Decode([]int{token})
}

// VocabSize returns the vocabulary size of the encoding.
func (t *TikToken) VocabSize() int {
	switch t.name {
	case EncodingCL100kBase:
		return 100256
	case EncodingP50kBase:
		return 50257
	default:
		return 100000
	}
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
