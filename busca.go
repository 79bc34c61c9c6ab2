// Package busca provides semantic search over PDF document chunks stored in
// Postgres with pgvector, with multiple retrieval strategies and an
// interactive chat loop on top.
package busca

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/core/chat"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/core/retrieval"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/database"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/helper"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/provider"
	loadSql "github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/sql"
)

// Busca bundles the provider, the vector store handlers and the retrieval
// engine behind one entry point.
type Busca struct {
	DB          *helper.Database
	Collections *database.CollectionsDBHandler
	Chunks      *database.ChunksDBHandler
	Index       *database.VectorIndex
	Provider    provider.Provider
	Engine      *retrieval.Engine
	// Exactly one of strategy or selector is set, matching the configured
	// strategy name.
	strategy retrieval.Strategy
	selector *retrieval.BestSelector
	config   *model.Config
	log      *slog.Logger
}

// New creates a Busca instance: it connects to Postgres, loads the SQL
// functions, initializes the configured provider and builds the retrieval
// engine for the configured strategy.
func New(ctx context.Context, config *model.Config, dbConfig *helper.DatabaseConfiguration) (*Busca, error) {
	if config == nil {
		config = model.DefaultConfig()
	}
	err := config.Validate()
	if err != nil {
		return nil, helper.NewError("validate configuration", err)
	}

	level := slog.LevelInfo
	if config.Verbose {
		level = slog.LevelDebug
	}
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: level,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	prov, err := provider.New(ctx, config.Provider)
	if err != nil {
		return nil, helper.NewError("initialize provider", err)
	}

	db, err := helper.NewDatabase("busca", dbConfig, logger)
	if err != nil {
		return nil, helper.NewError("connect to database", err)
	}

	err = loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// force=false to not reload if functions already exist
	collections, err := database.NewCollectionsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create collections handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, prov.Dimension(), false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	index := database.NewVectorIndex(collections, chunks)
	engine := retrieval.NewEngine(prov, index, prov, config.Collection, logger)

	b := &Busca{
		DB:          db,
		Collections: collections,
		Chunks:      chunks,
		Index:       index,
		Provider:    prov,
		Engine:      engine,
		config:      config,
		log:         logger,
	}

	if config.Strategy == model.StrategyBest {
		b.selector = retrieval.NewBestSelector(engine)
	} else {
		b.strategy, err = retrieval.NewStrategy(engine, config.Strategy)
		if err != nil {
			return nil, helper.NewError("create retrieval strategy", err)
		}
	}

	return b, nil
}

// Close closes the provider and the database connection
func (b *Busca) Close() error {
	if b.Provider != nil {
		err := b.Provider.Close()
		if err != nil {
			b.log.Warn("Failed to close provider", "error", err.Error())
		}
	}
	if b.DB != nil && b.DB.Instance != nil {
		return b.DB.Instance.Close()
	}
	return nil
}

// AddTexts embeds pre-chunked texts and stores them in the configured
// collection, creating the collection when missing. Returns the number of
// chunks inserted.
func (b *Busca) AddTexts(ctx context.Context, texts []string, metadata model.Metadata) (int, error) {
	collection := &model.Collection{Name: b.config.Collection, Metadata: metadata}
	err := b.Collections.InsertCollection(ctx, collection)
	if err != nil {
		return 0, helper.NewError("upsert collection", err)
	}

	inserted := 0
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}

		embedding, err := b.Provider.Embed(ctx, text)
		if err != nil {
			return inserted, helper.NewError("embed chunk", err)
		}

		chunkIndex := i
		chunk := &model.Chunk{
			CollectionID: collection.ID,
			Content:      text,
			Embedding:    embedding,
			ChunkIndex:   &chunkIndex,
			Metadata:     metadata,
		}
		err = b.Chunks.InsertChunk(ctx, chunk)
		if err != nil {
			return inserted, helper.NewError("insert chunk", err)
		}
		inserted++
	}

	b.log.Info("Inserted chunks", "collection", b.config.Collection, "count", inserted)
	return inserted, nil
}

// Retrieve runs the configured strategy (or the best selector) for one
// question and returns the winning outcome.
func (b *Busca) Retrieve(ctx context.Context, question string) (*model.StrategyOutcome, error) {
	queryConfig := model.QueryConfigFrom(b.config)

	if b.selector != nil {
		report, err := b.selector.Select(ctx, question, queryConfig)
		if err != nil {
			return nil, err
		}
		return report.Best(), nil
	}

	return b.strategy.Retrieve(ctx, question, queryConfig)
}

// Ask answers a single question from the stored documents
func (b *Busca) Ask(ctx context.Context, question string) (string, error) {
	session, err := b.Session(strings.NewReader(""), io.Discard)
	if err != nil {
		return "", err
	}
	return session.Turn(ctx, question)
}

// Chat runs the interactive loop on stdin/stdout until an exit keyword
func (b *Busca) Chat(ctx context.Context) error {
	session, err := b.Session(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	return session.Run(ctx)
}

// Session creates a chat session over the configured strategy reading from
// in and printing to out.
func (b *Busca) Session(in io.Reader, out io.Writer) (*chat.Session, error) {
	if b.selector != nil {
		return chat.NewSession(b.config, nil, b.selector, b.Engine, in, out, b.log)
	}
	return chat.NewSession(b.config, b.strategy, nil, b.Engine, in, out, b.log)
}
