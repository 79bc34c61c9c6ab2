package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/helper"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
	loadSql "github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/sql"
)

// ChunksDBHandlerFunctions defines the interface for chunk database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(ctx context.Context, chunk *model.Chunk) error
	SelectChunk(ctx context.Context, id int) (*model.Chunk, error)
	SelectChunksBySimilarity(ctx context.Context, collectionID int, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error)
	CountChunks(ctx context.Context, collectionID int) (int64, error)
	DeleteChunk(ctx context.Context, id int) error
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It loads the chunk-related SQL functions and creates the table with the
// given embedding dimension. If force is true, it will reload the SQL
// functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	handler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(handler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = handler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return handler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates the collection and vector indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("initialize chunks table", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk
func (h *ChunksDBHandler) InsertChunk(ctx context.Context, chunk *model.Chunk) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5)`,
		chunk.CollectionID,
		chunk.Content,
		pq.Array(chunk.Embedding),
		chunk.ChunkIndex,
		chunk.Metadata,
	)

	var embedding pgvector.Vector
	err := row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.CollectionID,
		&chunk.Content,
		&embedding,
		&chunk.ChunkIndex,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}
	chunk.Embedding = embedding.Slice()

	return nil
}

// SelectChunk selects a chunk by id
func (h *ChunksDBHandler) SelectChunk(ctx context.Context, id int) (*model.Chunk, error) {
	chunk := &model.Chunk{}
	var embedding pgvector.Vector
	row := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM select_chunk($1)`, id)

	err := row.Scan(
		&chunk.ID,
		&chunk.RID,
		&chunk.CollectionID,
		&chunk.Content,
		&embedding,
		&chunk.ChunkIndex,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}
	chunk.Embedding = embedding.Slice()

	return chunk, nil
}

// SelectChunksBySimilarity selects the top chunks of a collection by cosine
// similarity, ordered by descending similarity.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, collectionID int, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3, $4)`,
		collectionID,
		pq.Array(embedding),
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.RID,
			&chunk.CollectionID,
			&chunk.Content,
			&chunk.ChunkIndex,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// CountChunks counts the chunks of a collection
func (h *ChunksDBHandler) CountChunks(ctx context.Context, collectionID int) (int64, error) {
	var count int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT count_chunks($1)`, collectionID).Scan(&count)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}

	return count, nil
}

// DeleteChunk deletes a chunk by id
func (h *ChunksDBHandler) DeleteChunk(ctx context.Context, id int) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_chunk($1)`, id)
	if err != nil {
		return helper.NewError("delete chunk", err)
	}

	return nil
}
