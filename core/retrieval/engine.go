package retrieval

import (
	"context"
	"log/slog"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

// Embedder is the text-embedding capability consumed by strategies.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Index is the vector-search capability consumed by strategies.
type Index interface {
	Search(ctx context.Context, collection string, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalResult, error)
}

// Completer is the text-generation capability consumed by strategies.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Engine bundles the external capabilities every strategy works against:
// an embedder, a vector index scoped to one collection, and a completer.
// The engine holds no mutable state, so strategies may share it freely.
type Engine struct {
	embedder   Embedder
	index      Index
	completer  Completer
	collection string
	log        *slog.Logger
}

// NewEngine creates a retrieval engine over the given capabilities
func NewEngine(embedder Embedder, index Index, completer Completer, collection string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		embedder:   embedder,
		index:      index,
		completer:  completer,
		collection: collection,
		log:        logger,
	}
}

// VectorRetrieve embeds the text verbatim and performs a similarity search.
// Results are ordered by descending cosine similarity.
func (e *Engine) VectorRetrieve(ctx context.Context, text string, config *model.QueryConfig) ([]*model.RetrievalResult, error) {
	embedding, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	return e.index.Search(ctx, e.collection, embedding, config)
}

// Complete forwards a prompt to the completion capability
func (e *Engine) Complete(ctx context.Context, prompt string) (string, error) {
	return e.completer.Complete(ctx, prompt)
}

// topScore returns the aggregate score of a result set: the top-1 cosine
// similarity. Results are already ordered, but scan anyway so merged sets
// from multiple searches score correctly.
func topScore(results []*model.RetrievalResult) float64 {
	score := 0.0
	for i, result := range results {
		if i == 0 || result.Score > score {
			score = result.Score
		}
	}
	return score
}
