package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

// BestSelector runs every executor with the same query and picks the
// outcome with the highest aggregate score. Scores are comparable because
// every strategy reports the top-1 cosine similarity from the same index.
type BestSelector struct {
	strategies []Strategy
	log        *slog.Logger
}

// NewBestSelector creates a selector over all executors of an engine
func NewBestSelector(engine *Engine) *BestSelector {
	return &BestSelector{
		strategies: AllStrategies(engine),
		log:        engine.log,
	}
}

// Select fans the query out to every strategy concurrently, joins the
// outcomes, and picks the winner. The strategies share no mutable state, so
// the fan-out is purely a latency optimization; failures are isolated per
// strategy and excluded from comparison. A scoring tie goes to the earlier
// strategy in the fixed priority order, so selection is reproducible. When
// every strategy fails, Select reports model.ErrSelectionExhausted.
func (s *BestSelector) Select(ctx context.Context, query string, config *model.QueryConfig) (*model.ComparisonReport, error) {
	outcomes := make([]*model.StrategyOutcome, len(s.strategies))
	errs := make([]error, len(s.strategies))

	var wg sync.WaitGroup
	for i, strategy := range s.strategies {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i], errs[i] = strategy.Retrieve(ctx, query, config)
		}()
	}
	wg.Wait()

	report := &model.ComparisonReport{}
	var winner *model.StrategyOutcome
	for i, strategy := range s.strategies {
		if errs[i] != nil {
			s.log.Warn("Strategy excluded from comparison", "strategy", string(strategy.Name()), "error", errs[i].Error())
			report.Failures = append(report.Failures, model.StrategyFailure{
				Strategy: strategy.Name(),
				Err:      errs[i],
			})
			continue
		}

		report.Outcomes = append(report.Outcomes, outcomes[i])
		// Strict comparison keeps the earlier strategy on ties.
		if winner == nil || outcomes[i].Score > winner.Score {
			winner = outcomes[i]
		}
	}

	if winner == nil {
		return report, fmt.Errorf("%w: %d strategies failed", model.ErrSelectionExhausted, len(report.Failures))
	}

	report.Winner = winner.Strategy
	s.log.Info("Selected best strategy", "winner", string(report.Winner), "score", winner.Score)

	return report, nil
}
