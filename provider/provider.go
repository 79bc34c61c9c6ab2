// Package provider implements the embedding and completion capabilities the
// retrieval core consumes. The core never branches on provider identity: it
// sees only this package's Provider interface.
package provider

import (
	"context"
	"fmt"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

// Provider is an interchangeable embedding/completion backend. All calls are
// stateless; implementations must be safe for concurrent use.
type Provider interface {
	// Embed returns the embedding vector of a text. Fails with
	// model.ErrEmbedding on provider or network failure.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Complete returns generated text for a prompt. Fails with
	// model.ErrCompletion on provider failure, rate limiting, or an invalid
	// response. May return an empty string for "no answer" semantics.
	Complete(ctx context.Context, prompt string) (string, error)

	// Dimension returns the embedding dimension of the backend model.
	Dimension() int

	// Close releases backend resources.
	Close() error
}

// New creates the provider selected by configuration. Unknown names and
// missing API keys fail fast with model.ErrInvalidConfig.
func New(ctx context.Context, name model.Provider) (Provider, error) {
	switch name {
	case model.ProviderGoogle:
		return NewGoogleProvider(ctx)
	case model.ProviderOpenAI:
		return NewOpenAIProvider()
	case model.ProviderLocal:
		return NewLocalProvider()
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", model.ErrInvalidConfig, name)
	}
}
