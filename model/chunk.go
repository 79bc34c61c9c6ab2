package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk represents a stored unit of document text with its embedding.
// Chunks are owned by the vector store and read-only to the retrieval core.
type Chunk struct {
	ID           int       `json:"id"`
	RID          uuid.UUID `json:"rid"`
	CollectionID int       `json:"collection_id"`
	Content      string    `json:"content"`
	Embedding    []float32 `json:"embedding,omitempty"`
	ChunkIndex   *int      `json:"chunk_index,omitempty"`
	Metadata     Metadata  `json:"metadata,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	// Results
	Similarity float64 `json:"similarity,omitempty"`
}

// Collection represents a named set of chunks in the vector store.
type Collection struct {
	ID        int       `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Name      string    `json:"name"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
