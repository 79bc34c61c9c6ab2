package model

// RetrievalResult represents a chunk retrieved by a similarity search.
type RetrievalResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"` // Cosine similarity score
}

// TraceKind labels an intermediate artifact produced by a strategy.
type TraceKind string

const (
	TraceHypothetical  TraceKind = "hypothetical_answer"
	TraceExpandedQuery TraceKind = "expanded_query"
	TraceDraftAnswer   TraceKind = "draft_answer"
	TraceGapQuery      TraceKind = "gap_query"
	TraceDegraded      TraceKind = "degraded"
)

// TraceStep is one intermediate artifact recorded during strategy execution.
type TraceStep struct {
	Kind    TraceKind `json:"kind"`
	Content string    `json:"content"`
}

// StrategyOutcome is the result of one strategy invocation. It lives for a
// single chat turn and is never persisted.
type StrategyOutcome struct {
	Strategy Strategy           `json:"strategy"`
	Results  []*RetrievalResult `json:"results"`
	Score    float64            `json:"score"` // Top-1 cosine similarity of Results
	Trace    []TraceStep        `json:"trace,omitempty"`
	Degraded bool               `json:"degraded,omitempty"`
}

// ContextTexts returns the selected context as ordered chunk texts.
func (o *StrategyOutcome) ContextTexts() []string {
	texts := make([]string, 0, len(o.Results))
	for _, result := range o.Results {
		texts = append(texts, result.Chunk.Content)
	}
	return texts
}

// StrategyFailure records a strategy excluded from comparison.
type StrategyFailure struct {
	Strategy Strategy `json:"strategy"`
	Err      error    `json:"-"`
}

// ComparisonReport describes one run of the best selector. Outcomes keeps
// the fixed priority order, not the score order.
type ComparisonReport struct {
	Outcomes []*StrategyOutcome `json:"outcomes"`
	Failures []StrategyFailure  `json:"failures,omitempty"`
	Winner   Strategy           `json:"winner"`
}

// Best returns the winning outcome of the report.
func (r *ComparisonReport) Best() *StrategyOutcome {
	for _, outcome := range r.Outcomes {
		if outcome.Strategy == r.Winner {
			return outcome
		}
	}
	return nil
}
