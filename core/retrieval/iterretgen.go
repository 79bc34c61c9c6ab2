package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

const draftPrompt = `Using only the context below, draft a brief answer to the question. If the context is insufficient, answer as well as the context allows.

CONTEXT:
%s

QUESTION:
%s

DRAFT ANSWER:`

const gapPrompt = `A question and a draft answer are given below. Identify what specific missing information would most improve the answer. Reply with a short search query for that information, or with the single word NONE if nothing is missing.

QUESTION:
%s

DRAFT ANSWER:
%s

MISSING INFORMATION QUERY:`

const refinePrompt = `Using only the context below, refine the draft answer to the question. Write only the refined answer.

CONTEXT:
%s

QUESTION:
%s

DRAFT ANSWER:
%s

REFINED ANSWER:`

// IterRetGenStrategy runs two fixed retrieval-generation rounds: a first
// search drives a draft answer, a gap query synthesized from the draft
// drives a second search, and the result sets are merged. A single pass can
// miss context that only partial reasoning reveals; this trades extra
// completion round-trips for more targeted recall. When the draft already
// suffices the strategy terminates after round one and skips the extra
// calls.
type IterRetGenStrategy struct {
	engine *Engine
}

// NewIterRetGenStrategy creates a new iterative retrieval-generation strategy
func NewIterRetGenStrategy(engine *Engine) *IterRetGenStrategy {
	return &IterRetGenStrategy{engine: engine}
}

func (s *IterRetGenStrategy) Name() model.Strategy {
	return model.StrategyIterRetGen
}

// Retrieve performs draft, gap-detection and refinement rounds
func (s *IterRetGenStrategy) Retrieve(ctx context.Context, query string, config *model.QueryConfig) (*model.StrategyOutcome, error) {
	// Draft round: plain retrieval plus a preliminary answer.
	round1, err := s.engine.VectorRetrieve(ctx, query, config)
	if err != nil {
		return nil, err
	}

	draft, err := s.engine.Complete(ctx, fmt.Sprintf(draftPrompt, joinContext(round1), query))
	if err != nil {
		return nil, err
	}

	// Gap-detection round.
	gapQuery, err := s.engine.Complete(ctx, fmt.Sprintf(gapPrompt, query, draft))
	if err != nil {
		return nil, err
	}

	if isNoGap(gapQuery) {
		// The first pass already suffices.
		return &model.StrategyOutcome{
			Strategy: model.StrategyIterRetGen,
			Results:  round1,
			Score:    topScore(round1),
			Trace: []model.TraceStep{
				{Kind: model.TraceDraftAnswer, Content: draft},
			},
		}, nil
	}

	// Refinement round: targeted retrieval with the gap query, merged with
	// round-1 chunks first and deduplicated by chunk identifier.
	round2, err := s.engine.VectorRetrieve(ctx, gapQuery, config)
	if err != nil {
		return nil, err
	}

	merged := mergeResults(round1, round2)

	refined, err := s.engine.Complete(ctx, fmt.Sprintf(refinePrompt, joinContext(merged), query, draft))
	if err != nil {
		return nil, err
	}

	return &model.StrategyOutcome{
		Strategy: model.StrategyIterRetGen,
		Results:  merged,
		Score:    topScore(merged),
		Trace: []model.TraceStep{
			{Kind: model.TraceDraftAnswer, Content: draft},
			{Kind: model.TraceGapQuery, Content: gapQuery},
			{Kind: model.TraceDraftAnswer, Content: refined},
		},
	}, nil
}

// isNoGap reports whether a gap-detection reply signals that nothing is
// missing: empty text or the designated NONE sentinel.
func isNoGap(reply string) bool {
	trimmed := strings.TrimSpace(reply)
	return trimmed == "" || strings.EqualFold(trimmed, "none") || strings.EqualFold(trimmed, "none.")
}

// mergeResults concatenates two result sets, keeping first-set chunks ahead
// of second-set-only chunks and dropping duplicate chunk identifiers.
func mergeResults(first, second []*model.RetrievalResult) []*model.RetrievalResult {
	seen := make(map[uuid.UUID]bool, len(first)+len(second))
	merged := make([]*model.RetrievalResult, 0, len(first)+len(second))

	for _, result := range append(append([]*model.RetrievalResult{}, first...), second...) {
		if seen[result.Chunk.RID] {
			continue
		}
		seen[result.Chunk.RID] = true
		merged = append(merged, result)
	}

	return merged
}

// joinContext formats retrieved chunks into one prompt context block.
func joinContext(results []*model.RetrievalResult) string {
	texts := make([]string, 0, len(results))
	for _, result := range results {
		texts = append(texts, result.Chunk.Content)
	}
	return strings.Join(texts, "\n\n---\n\n")
}
