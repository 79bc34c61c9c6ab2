package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/helper"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
	loadSql "github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/sql"
)

// CollectionsDBHandlerFunctions defines the interface for collection database operations.
type CollectionsDBHandlerFunctions interface {
	InsertCollection(ctx context.Context, collection *model.Collection) error
	SelectCollection(ctx context.Context, name string) (*model.Collection, error)
	SelectAllCollections(ctx context.Context) ([]*model.Collection, error)
	DeleteCollection(ctx context.Context, name string) error
}

// CollectionsDBHandler handles collection-related database operations
type CollectionsDBHandler struct {
	db *helper.Database
}

// NewCollectionsDBHandler creates a new collections database handler.
// It loads the collection-related SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewCollectionsDBHandler(db *helper.Database, force bool) (*CollectionsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	handler := &CollectionsDBHandler{
		db: db,
	}

	err := loadSql.LoadCollectionsSql(handler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load collections sql", err)
	}

	err = handler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized CollectionsDBHandler")

	return handler, nil
}

// CreateTable creates the 'collections' table if it does not exist.
func (h *CollectionsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_collections();`)
	if err != nil {
		return helper.NewError("initialize collections table", err)
	}

	h.db.Logger.Info("Checked/created table collections")

	return nil
}

// InsertCollection inserts a collection, updating its metadata if the name exists
func (h *CollectionsDBHandler) InsertCollection(ctx context.Context, collection *model.Collection) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_collection($1, $2)`,
		collection.Name,
		collection.Metadata,
	)

	err := row.Scan(
		&collection.ID,
		&collection.RID,
		&collection.Name,
		&collection.Metadata,
		&collection.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectCollection selects a collection by name. A missing collection is an
// index error so retrieval callers can distinguish it from driver failures.
func (h *CollectionsDBHandler) SelectCollection(ctx context.Context, name string) (*model.Collection, error) {
	collection := &model.Collection{}
	row := h.db.Instance.QueryRowContext(ctx, `SELECT * FROM select_collection($1)`, name)

	err := row.Scan(
		&collection.ID,
		&collection.RID,
		&collection.Name,
		&collection.Metadata,
		&collection.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: collection %q does not exist", model.ErrIndex, name)
	}
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return collection, nil
}

// SelectAllCollections selects all collections ordered by name
func (h *CollectionsDBHandler) SelectAllCollections(ctx context.Context) ([]*model.Collection, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_all_collections()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var collections []*model.Collection
	for rows.Next() {
		collection := &model.Collection{}
		err := rows.Scan(
			&collection.ID,
			&collection.RID,
			&collection.Name,
			&collection.Metadata,
			&collection.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		collections = append(collections, collection)
	}

	return collections, rows.Err()
}

// DeleteCollection deletes a collection and cascades to its chunks
func (h *CollectionsDBHandler) DeleteCollection(ctx context.Context, name string) error {
	_, err := h.db.Instance.ExecContext(ctx, `SELECT delete_collection($1)`, name)
	if err != nil {
		return helper.NewError("delete collection", err)
	}

	return nil
}
