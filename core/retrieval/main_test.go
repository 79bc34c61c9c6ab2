package retrieval

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

// fakeEmbedder returns a deterministic vector derived from the input length
// and records every input for assertions.
type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	inputs []string
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.inputs = append(f.inputs, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{float32(len(text)), 1}, nil
}

// fakeIndex returns one scripted result set per search call; the last set
// repeats when calls outnumber scripts.
type fakeIndex struct {
	mu     sync.Mutex
	calls  int
	rounds [][]*model.RetrievalResult
	err    error
}

func (f *fakeIndex) Search(ctx context.Context, collection string, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.rounds) == 0 {
		return nil, nil
	}
	i := f.calls - 1
	if i >= len(f.rounds) {
		i = len(f.rounds) - 1
	}
	return f.rounds[i], nil
}

// fakeCompleter replies with one scripted answer per completion call.
type fakeCompleter struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	replies []string
	err     error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	i := f.calls - 1
	if i >= len(f.replies) {
		i = len(f.replies) - 1
	}
	return f.replies[i], nil
}

func newTestEngine(embedder *fakeEmbedder, index *fakeIndex, completer *fakeCompleter) *Engine {
	return NewEngine(embedder, index, completer, "documentos_pdf", slog.New(slog.DiscardHandler))
}

func result(content string, score float64) *model.RetrievalResult {
	return &model.RetrievalResult{
		Chunk: &model.Chunk{
			RID:     uuid.New(),
			Content: content,
		},
		Score: score,
	}
}
