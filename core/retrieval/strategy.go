package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

// Strategy executes one retrieval enhancement strategy for a single query.
// Outcomes live for one chat turn and are never persisted.
type Strategy interface {
	Name() model.Strategy
	Retrieve(ctx context.Context, query string, config *model.QueryConfig) (*model.StrategyOutcome, error)
}

// NewStrategy returns the executor for a configured strategy name. The
// "best" selector is not an executor; use NewBestSelector for it.
func NewStrategy(engine *Engine, name model.Strategy) (Strategy, error) {
	switch name {
	case model.StrategyDefault:
		return NewDefaultStrategy(engine), nil
	case model.StrategyHyde:
		return NewHydeStrategy(engine), nil
	case model.StrategyQuery2Doc:
		return NewQuery2DocStrategy(engine), nil
	case model.StrategyIterRetGen:
		return NewIterRetGenStrategy(engine), nil
	default:
		return nil, fmt.Errorf("%w: no executor for strategy %q", model.ErrInvalidConfig, name)
	}
}

// AllStrategies returns every executor in the fixed priority order used by
// the best selector for tie-breaking.
func AllStrategies(engine *Engine) []Strategy {
	return []Strategy{
		NewDefaultStrategy(engine),
		NewHydeStrategy(engine),
		NewQuery2DocStrategy(engine),
		NewIterRetGenStrategy(engine),
	}
}

// DefaultStrategy embeds the query verbatim and searches. It is the
// baseline every other strategy is judged against. No completion calls.
type DefaultStrategy struct {
	engine *Engine
}

// NewDefaultStrategy creates a new default strategy
func NewDefaultStrategy(engine *Engine) *DefaultStrategy {
	return &DefaultStrategy{engine: engine}
}

func (s *DefaultStrategy) Name() model.Strategy {
	return model.StrategyDefault
}

// Retrieve performs a plain vector similarity search
func (s *DefaultStrategy) Retrieve(ctx context.Context, query string, config *model.QueryConfig) (*model.StrategyOutcome, error) {
	results, err := s.engine.VectorRetrieve(ctx, query, config)
	if err != nil {
		return nil, err
	}

	return &model.StrategyOutcome{
		Strategy: model.StrategyDefault,
		Results:  results,
		Score:    topScore(results),
	}, nil
}

const hydePrompt = `Write a short, plausible passage that directly answers the question below, as if it were quoted from a reference document. Write only the passage, with no preamble.

QUESTION:
%s

PASSAGE:`

// HydeStrategy generates a hypothetical answer and embeds that instead of
// the query: answer-shaped text embeds closer to answer-bearing chunks than
// question-shaped text. Falls back to the default strategy when the
// completion fails or comes back empty.
type HydeStrategy struct {
	engine *Engine
}

// NewHydeStrategy creates a new hypothetical document embeddings strategy
func NewHydeStrategy(engine *Engine) *HydeStrategy {
	return &HydeStrategy{engine: engine}
}

func (s *HydeStrategy) Name() model.Strategy {
	return model.StrategyHyde
}

// Retrieve searches with the embedding of a hypothetical answer
func (s *HydeStrategy) Retrieve(ctx context.Context, query string, config *model.QueryConfig) (*model.StrategyOutcome, error) {
	hypothetical, err := s.engine.Complete(ctx, fmt.Sprintf(hydePrompt, query))
	if err != nil || strings.TrimSpace(hypothetical) == "" {
		return degradedFallback(ctx, s.engine, model.StrategyHyde, query, config, err)
	}

	results, err := s.engine.VectorRetrieve(ctx, hypothetical, config)
	if err != nil {
		return nil, err
	}

	return &model.StrategyOutcome{
		Strategy: model.StrategyHyde,
		Results:  results,
		Score:    topScore(results),
		Trace: []model.TraceStep{
			{Kind: model.TraceHypothetical, Content: hypothetical},
		},
	}, nil
}

const query2docPrompt = `Write a short pseudo-document of two or three sentences that answers the question below. Write only the pseudo-document, with no preamble.

QUESTION:
%s

PSEUDO-DOCUMENT:`

// Query2DocStrategy expands the query with a generated pseudo-document and
// embeds the concatenation. Unlike hyde it keeps the original query text,
// biasing retrieval toward both lexical and semantic match. Falls back to
// the default strategy when the completion fails or comes back empty.
type Query2DocStrategy struct {
	engine *Engine
}

// NewQuery2DocStrategy creates a new query expansion strategy
func NewQuery2DocStrategy(engine *Engine) *Query2DocStrategy {
	return &Query2DocStrategy{engine: engine}
}

func (s *Query2DocStrategy) Name() model.Strategy {
	return model.StrategyQuery2Doc
}

// Retrieve searches with the embedding of the query plus a pseudo-document
func (s *Query2DocStrategy) Retrieve(ctx context.Context, query string, config *model.QueryConfig) (*model.StrategyOutcome, error) {
	pseudoDoc, err := s.engine.Complete(ctx, fmt.Sprintf(query2docPrompt, query))
	if err != nil || strings.TrimSpace(pseudoDoc) == "" {
		return degradedFallback(ctx, s.engine, model.StrategyQuery2Doc, query, config, err)
	}

	// Original query first, separated by whitespace.
	expanded := query + " " + pseudoDoc

	results, err := s.engine.VectorRetrieve(ctx, expanded, config)
	if err != nil {
		return nil, err
	}

	return &model.StrategyOutcome{
		Strategy: model.StrategyQuery2Doc,
		Results:  results,
		Score:    topScore(results),
		Trace: []model.TraceStep{
			{Kind: model.TraceExpandedQuery, Content: expanded},
		},
	}, nil
}

// degradedFallback runs the default strategy's behavior on behalf of a
// strategy whose completion step failed, marking the outcome as degraded.
func degradedFallback(ctx context.Context, engine *Engine, name model.Strategy, query string, config *model.QueryConfig, cause error) (*model.StrategyOutcome, error) {
	reason := "completion returned empty text"
	if cause != nil {
		reason = cause.Error()
	}
	engine.log.Warn("Strategy degraded to default retrieval", "strategy", string(name), "reason", reason)

	results, err := engine.VectorRetrieve(ctx, query, config)
	if err != nil {
		return nil, err
	}

	return &model.StrategyOutcome{
		Strategy: name,
		Results:  results,
		Score:    topScore(results),
		Degraded: true,
		Trace: []model.TraceStep{
			{Kind: model.TraceDegraded, Content: reason},
		},
	}, nil
}
