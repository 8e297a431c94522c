package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Hashing is a feature-hashing text embedder. Each token is hashed to a
// dimension and a sign, so no vocabulary or training pass is needed and
// the embedding of a text is stable across processes. Vectors are
// L2-normalized.
type Hashing struct {
	dims int
}

// NewHashing creates a hashing embedder with the given dimensionality.
func NewHashing(dims int) *Hashing {
	if dims <= 0 {
		dims = 512
	}
	return &Hashing{dims: dims}
}

// Embed converts texts to hashed bag-of-words vectors.
func (h *Hashing) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = h.embedOne(text)
	}

	return vectors, nil
}

func (h *Hashing) embedOne(text string) []float32 {
	vec := make([]float32, h.dims)

	for _, token := range tokenize(text) {
		hasher := fnv.New64a()
		hasher.Write([]byte(token))
		sum := hasher.Sum64()

		// Low bits pick the dimension, one high bit picks the sign. The
		// sign keeps colliding tokens from always reinforcing each other.
		idx := int(sum % uint64(h.dims))
		if sum&(1<<63) != 0 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = float32(math.Sqrt(float64(norm)))
		for j := range vec {
			vec[j] /= norm
		}
	} else {
		// Empty or sign-cancelled text still needs a valid unit vector.
		vec[0] = 1
	}

	return vec
}

// Dimensions returns the configured dimensionality.
func (h *Hashing) Dimensions() int {
	return h.dims
}

// Name returns the provider name.
func (h *Hashing) Name() string {
	return "hashing"
}

// tokenize splits text into lowercase words.
func tokenize(text string) []string {
	var words []string
	var word strings.Builder

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word.WriteRune(r)
		} else if word.Len() > 0 {
			words = append(words, word.String())
			word.Reset()
		}
	}
	if word.Len() > 0 {
		words = append(words, word.String())
	}

	return words
}
