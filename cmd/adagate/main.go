// Package main provides the adagate demo CLI.
//
// It tokenizes a sentence, builds deterministic embeddings, runs gated
// multi-head self-attention over the tokens, and reports the strongest
// attention links together with the gate sparsity.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/adagate-ml/adagate/internal/backend/cpu"
	"github.com/adagate-ml/adagate/internal/nn"
	"github.com/adagate-ml/adagate/internal/tensor"
	"github.com/adagate-ml/adagate/internal/tokenizer"
)

const (
	features = 64
	numHeads = 4
)

func main() {
	text := flag.String("text", "the quick brown fox jumps over the lazy dog", "input sentence")
	flag.Parse()

	tok, err := tokenizer.NewTikToken(tokenizer.EncodingCL100kBase)
	if err != nil {
		log.Fatalf("load tokenizer: %v", err)
	}

	tokens := tok.Encode(*text)
	if len(tokens) == 0 {
		log.Fatal("input produced no tokens")
	}

	fmt.Printf("Input: %q\n", *text)
	fmt.Printf("Tokens (%d): %v\n\n", len(tokens), tokens)

	backend := cpu.New()

	embedded := embedTokens(tokens, backend)

	attn := nn.NewGatedAttention(nn.GatedAttentionConfig{
		NumHeads: numHeads,
		Features: features,
	}, backend)

	_, lQK, gate, weights := attn.ForwardWithWeights(embedded, embedded, embedded, nil, false)

	fmt.Println("Strongest attention links (head-averaged):")
	for i := range tokens {
		j, w := strongestLink(weights, i, len(tokens))
		fmt.Printf("  %-12q -> %-12q (weight %.3f)\n",
			tok.DecodeToken(tokens[i]), tok.DecodeToken(tokens[j]), w)
	}

	active := 0
	for _, v := range gate.Data() {
		if v != 0 {
			active++
		}
	}
	fmt.Printf("\nGate: %d/%d features active, L1 norm %.3f\n", active, features, lQK)
}

// embedTokens builds deterministic sinusoidal embeddings from token IDs,
// shape [1, len(tokens), features].
func embedTokens(tokens []int, backend *cpu.CPUBackend) *tensor.Tensor[float32, *cpu.CPUBackend] {
	data := make([]float32, len(tokens)*features)
	for t, id := range tokens {
		for d := 0; d < features; d++ {
			freq := math.Pow(10000, -float64(d)/features)
			phase := float64(id)*freq + float64(t)*0.1
			if d%2 == 0 {
				data[t*features+d] = float32(math.Sin(phase))
			} else {
				data[t*features+d] = float32(math.Cos(phase))
			}
		}
	}

	embedded, err := tensor.FromSlice(data, tensor.Shape{1, len(tokens), features}, backend)
	if err != nil {
		log.Fatalf("build embeddings: %v", err)
	}
	return embedded
}

// strongestLink returns the key position with the highest head-averaged
// attention weight for query position i, excluding self-attention links.
func strongestLink[B tensor.Backend](weights *tensor.Tensor[float32, B], i, seqLen int) (int, float32) {
	best, bestW := i, float32(-1)
	for j := 0; j < seqLen; j++ {
		if j == i && seqLen > 1 {
			continue
		}
		var sum float32
		for h := 0; h < numHeads; h++ {
			sum += weights.At(0, h, i, j)
		}
		avg := sum / numHeads
		if avg > bestW {
			best, bestW = j, avg
		}
	}
	return best, bestW
}
