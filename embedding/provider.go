// Package embedding converts text to vectors for the store. The hashing
// provider gives deterministic, training-free embeddings suitable for
// tests and offline tooling; production deployments plug in a Provider
// backed by a real embedding model.
package embedding

import "context"

// Provider converts text to vectors.
type Provider interface {
	// Embed converts texts to vectors (batched for efficiency).
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimensionality.
	Dimensions() int

	// Name identifies the provider.
	Name() string
}

// Config identifies a provider instance. It is comparable so it can key
// a cache.
type Config struct {
	Name       string
	Dimensions int
}
