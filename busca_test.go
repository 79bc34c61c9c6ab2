package busca

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/core/retrieval"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

type fakeIndex struct {
	results []*model.RetrievalResult
}

func (f *fakeIndex) Search(ctx context.Context, collection string, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalResult, error) {
	return f.results, nil
}

type fakeCompleter struct {
	reply string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return f.reply, nil
}

// initBusca builds a Busca over faked capabilities, skipping provider and
// database setup.
func initBusca(t *testing.T, config *model.Config, index *fakeIndex, completer *fakeCompleter) *Busca {
	t.Helper()
	require.NoError(t, config.Validate())

	logger := slog.New(slog.DiscardHandler)
	engine := retrieval.NewEngine(&fakeEmbedder{}, index, completer, config.Collection, logger)

	b := &Busca{
		Engine: engine,
		config: config,
		log:    logger,
	}
	if config.Strategy == model.StrategyBest {
		b.selector = retrieval.NewBestSelector(engine)
	} else {
		strategy, err := retrieval.NewStrategy(engine, config.Strategy)
		require.NoError(t, err)
		b.strategy = strategy
	}
	return b
}

func storedChunk(content string, score float64) *model.RetrievalResult {
	return &model.RetrievalResult{
		Chunk: &model.Chunk{RID: uuid.New(), Content: content},
		Score: score,
	}
}

func TestNew(t *testing.T) {
	t.Run("Invalid strategy fails fast", func(t *testing.T) {
		config := model.DefaultConfig()
		config.Strategy = model.Strategy("bm25")

		_, err := New(context.Background(), config, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidConfig)
	})

	t.Run("Invalid top k fails fast", func(t *testing.T) {
		config := model.DefaultConfig()
		config.TopK = 0

		_, err := New(context.Background(), config, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidConfig)
	})

	t.Run("Missing provider credentials fail fast", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", "")
		config := model.DefaultConfig()
		config.Provider = model.ProviderGoogle

		_, err := New(context.Background(), config, nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrInvalidConfig)
	})

	t.Run("Busca with nil handles Close gracefully", func(t *testing.T) {
		b := &Busca{}

		err := b.Close()

		assert.NoError(t, err)
	})
}

func TestRetrieve(t *testing.T) {
	t.Run("Single strategy returns its outcome", func(t *testing.T) {
		config := model.DefaultConfig()
		index := &fakeIndex{results: []*model.RetrievalResult{storedChunk("prazo de entrega", 0.9)}}
		b := initBusca(t, config, index, &fakeCompleter{reply: "resposta"})

		outcome, err := b.Retrieve(context.Background(), "qual o prazo?")

		require.NoError(t, err)
		assert.Equal(t, model.StrategyDefault, outcome.Strategy)
		assert.Equal(t, []string{"prazo de entrega"}, outcome.ContextTexts())
		assert.Equal(t, 0.9, outcome.Score)
	})

	t.Run("Best mode returns the winning outcome", func(t *testing.T) {
		config := model.DefaultConfig()
		config.Strategy = model.StrategyBest
		index := &fakeIndex{results: []*model.RetrievalResult{storedChunk("prazo de entrega", 0.9)}}
		b := initBusca(t, config, index, &fakeCompleter{reply: "resposta"})

		outcome, err := b.Retrieve(context.Background(), "qual o prazo?")

		require.NoError(t, err)
		require.NotNil(t, outcome)
		assert.NotEmpty(t, outcome.ContextTexts())
	})
}

func TestAsk(t *testing.T) {
	config := model.DefaultConfig()
	index := &fakeIndex{results: []*model.RetrievalResult{storedChunk("o prazo de entrega é de 30 dias", 0.9)}}
	b := initBusca(t, config, index, &fakeCompleter{reply: "O prazo é de 30 dias."})

	answer, err := b.Ask(context.Background(), "qual o prazo de entrega?")

	require.NoError(t, err)
	assert.Equal(t, "O prazo é de 30 dias.", answer)
}

func TestSession(t *testing.T) {
	config := model.DefaultConfig()
	index := &fakeIndex{results: []*model.RetrievalResult{storedChunk("trecho", 0.8)}}
	b := initBusca(t, config, index, &fakeCompleter{reply: "resposta"})

	out := &bytes.Buffer{}
	session, err := b.Session(strings.NewReader("pergunta\nsair\n"), out)
	require.NoError(t, err)

	err = session.Run(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "resposta")
	assert.Contains(t, out.String(), "Encerrando o chat")
}
