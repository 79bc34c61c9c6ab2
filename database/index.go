package database

import (
	"context"
	"fmt"
	"time"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/helper"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

// VectorIndex exposes named-collection similarity search over the chunk
// store. It is the storage-side implementation of the retrieval engine's
// index capability.
type VectorIndex struct {
	collections *CollectionsDBHandler
	chunks      *ChunksDBHandler
}

// NewVectorIndex creates a vector index over the given handlers
func NewVectorIndex(collections *CollectionsDBHandler, chunks *ChunksDBHandler) *VectorIndex {
	return &VectorIndex{
		collections: collections,
		chunks:      chunks,
	}
}

// Search returns the most similar chunks of a collection, ordered by
// descending cosine similarity. Searching a missing collection fails with
// model.ErrIndex.
func (i *VectorIndex) Search(ctx context.Context, collection string, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalResult, error) {
	col, err := i.collections.SelectCollection(ctx, collection)
	if err != nil {
		return nil, err
	}

	chunks, err := i.chunks.SelectChunksBySimilarity(ctx, col.ID, embedding, config.TopK, config.SimilarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrIndex, err)
	}

	results := make([]*model.RetrievalResult, len(chunks))
	for n, chunk := range chunks {
		results[n] = &model.RetrievalResult{
			Chunk: chunk,
			Score: chunk.Similarity,
		}
	}

	return results, nil
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
// indexType: "hnsw" or "ivfflat"
// params: optional parameters for index creation
//   - For HNSW: "m" (int, default 16), "ef_construction" (int, default 64)
//   - For IVFFlat: "lists" (int, default 100)
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	// Drop existing index
	_, err := h.db.Instance.ExecContext(ctx, `DROP INDEX IF EXISTS idx_chunks_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	h.db.Logger.Info("Dropped existing vector index")

	var createIndexSQL string

	switch indexType {
	case "hnsw":
		m := 16
		efConstruction := 64

		if mVal, ok := params["m"].(int); ok {
			m = mVal
		}
		if efVal, ok := params["ef_construction"].(int); ok {
			efConstruction = efVal
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)

	case "ivfflat":
		lists := 100
		if listsVal, ok := params["lists"].(int); ok {
			lists = listsVal
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)

	default:
		return helper.NewError("change index type", fmt.Errorf("unknown index type %q, expected hnsw or ivfflat", indexType))
	}

	_, err = h.db.Instance.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	h.db.Logger.Info("Created vector index", "type", indexType)

	return nil
}
