package chat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

type fakeStrategy struct {
	calls   int
	outcome *model.StrategyOutcome
	errs    []error
}

func (f *fakeStrategy) Retrieve(ctx context.Context, query string, config *model.QueryConfig) (*model.StrategyOutcome, error) {
	f.calls++
	if len(f.errs) >= f.calls && f.errs[f.calls-1] != nil {
		return nil, f.errs[f.calls-1]
	}
	return f.outcome, nil
}

type fakeSelector struct {
	calls  int
	report *model.ComparisonReport
	err    error
}

func (f *fakeSelector) Select(ctx context.Context, query string, config *model.QueryConfig) (*model.ComparisonReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeCompleter struct {
	calls   int
	prompts []string
	reply   string
	err     error
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testOutcome(strategy model.Strategy, contents ...string) *model.StrategyOutcome {
	outcome := &model.StrategyOutcome{Strategy: strategy, Score: 0.8}
	for _, content := range contents {
		outcome.Results = append(outcome.Results, &model.RetrievalResult{
			Chunk: &model.Chunk{RID: uuid.New(), Content: content},
			Score: 0.8,
		})
	}
	return outcome
}

func testConfig() *model.Config {
	config := model.DefaultConfig()
	config.Timeout = 0
	return config
}

func newTestSession(t *testing.T, config *model.Config, strategy Strategy, selector Selector, completer Completer, input string) (*Session, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	session, err := NewSession(config, strategy, selector, completer, strings.NewReader(input), out, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return session, out
}

func TestNewSession(t *testing.T) {
	strategy := &fakeStrategy{outcome: testOutcome(model.StrategyDefault)}
	completer := &fakeCompleter{}

	t.Run("Rejects nil config", func(t *testing.T) {
		_, err := NewSession(nil, strategy, nil, completer, strings.NewReader(""), &bytes.Buffer{}, nil)
		assert.ErrorIs(t, err, model.ErrInvalidConfig)
	})

	t.Run("Rejects both strategy and selector", func(t *testing.T) {
		selector := &fakeSelector{}
		_, err := NewSession(testConfig(), strategy, selector, completer, strings.NewReader(""), &bytes.Buffer{}, nil)
		assert.ErrorIs(t, err, model.ErrInvalidConfig)
	})

	t.Run("Rejects neither strategy nor selector", func(t *testing.T) {
		_, err := NewSession(testConfig(), nil, nil, completer, strings.NewReader(""), &bytes.Buffer{}, nil)
		assert.ErrorIs(t, err, model.ErrInvalidConfig)
	})

	t.Run("Rejects nil completer", func(t *testing.T) {
		_, err := NewSession(testConfig(), strategy, nil, nil, strings.NewReader(""), &bytes.Buffer{}, nil)
		assert.ErrorIs(t, err, model.ErrInvalidConfig)
	})
}

func TestSessionRunExit(t *testing.T) {
	for _, keyword := range []string{"sair", "exit", "quit", "SAIR", "  quit  "} {
		t.Run("Exit keyword "+strings.TrimSpace(keyword), func(t *testing.T) {
			strategy := &fakeStrategy{outcome: testOutcome(model.StrategyDefault, "trecho")}
			completer := &fakeCompleter{reply: "resposta"}
			session, out := newTestSession(t, testConfig(), strategy, nil, completer, keyword+"\n")

			err := session.Run(context.Background())

			require.NoError(t, err)
			assert.Contains(t, out.String(), "Encerrando o chat")
			assert.Equal(t, 0, strategy.calls)
			assert.Equal(t, 0, completer.calls)
		})
	}

	t.Run("End of input terminates without error", func(t *testing.T) {
		strategy := &fakeStrategy{outcome: testOutcome(model.StrategyDefault)}
		session, _ := newTestSession(t, testConfig(), strategy, nil, &fakeCompleter{}, "")

		err := session.Run(context.Background())

		require.NoError(t, err)
	})

	t.Run("Blank lines are skipped", func(t *testing.T) {
		strategy := &fakeStrategy{outcome: testOutcome(model.StrategyDefault, "trecho")}
		completer := &fakeCompleter{reply: "resposta"}
		session, _ := newTestSession(t, testConfig(), strategy, nil, completer, "\n   \nsair\n")

		err := session.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, strategy.calls)
	})
}

func TestSessionRunTurns(t *testing.T) {
	t.Run("Answers a question from retrieved context", func(t *testing.T) {
		strategy := &fakeStrategy{outcome: testOutcome(model.StrategyDefault, "prazo de entrega de 30 dias")}
		completer := &fakeCompleter{reply: "O prazo é de 30 dias."}
		session, out := newTestSession(t, testConfig(), strategy, nil, completer, "qual o prazo de entrega?\nsair\n")

		err := session.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, strategy.calls)
		require.Equal(t, 1, completer.calls)
		assert.Contains(t, completer.prompts[0], "prazo de entrega de 30 dias")
		assert.Contains(t, completer.prompts[0], "qual o prazo de entrega?")
		assert.Contains(t, completer.prompts[0], "Responda somente com base no CONTEXTO")
		assert.Contains(t, out.String(), "Resposta:")
		assert.Contains(t, out.String(), "O prazo é de 30 dias.")
	})

	t.Run("Survives a failed turn and keeps accepting questions", func(t *testing.T) {
		strategy := &fakeStrategy{
			outcome: testOutcome(model.StrategyDefault, "trecho"),
			errs:    []error{model.ErrEmbedding},
		}
		completer := &fakeCompleter{reply: "resposta"}
		session, out := newTestSession(t, testConfig(), strategy, nil, completer, "primeira pergunta\nsegunda pergunta\nsair\n")

		err := session.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, strategy.calls)
		assert.Equal(t, 1, completer.calls)
		assert.Contains(t, out.String(), "Ocorreu um erro durante o chat")
		assert.Contains(t, out.String(), "resposta")
	})

	t.Run("Verbose prints the strategy trace", func(t *testing.T) {
		outcome := testOutcome(model.StrategyHyde, "trecho")
		outcome.Trace = []model.TraceStep{{Kind: model.TraceHypothetical, Content: "resposta hipotética"}}
		strategy := &fakeStrategy{outcome: outcome}
		config := testConfig()
		config.Verbose = true
		session, out := newTestSession(t, config, strategy, nil, &fakeCompleter{reply: "resposta"}, "pergunta\nsair\n")

		err := session.Run(context.Background())

		require.NoError(t, err)
		assert.Contains(t, out.String(), "resposta hipotética")
		assert.Contains(t, out.String(), "trecho")
	})

	t.Run("Without verbose the trace stays hidden", func(t *testing.T) {
		outcome := testOutcome(model.StrategyHyde, "trecho")
		outcome.Trace = []model.TraceStep{{Kind: model.TraceHypothetical, Content: "resposta hipotética"}}
		strategy := &fakeStrategy{outcome: outcome}
		session, out := newTestSession(t, testConfig(), strategy, nil, &fakeCompleter{reply: "resposta"}, "pergunta\nsair\n")

		err := session.Run(context.Background())

		require.NoError(t, err)
		assert.NotContains(t, out.String(), "resposta hipotética")
	})
}

func TestSessionBestMode(t *testing.T) {
	newReport := func() *model.ComparisonReport {
		return &model.ComparisonReport{
			Outcomes: []*model.StrategyOutcome{
				testOutcome(model.StrategyDefault, "trecho padrão"),
				testOutcome(model.StrategyHyde, "trecho hyde"),
			},
			Winner: model.StrategyHyde,
		}
	}

	t.Run("Uses the winning outcome as context", func(t *testing.T) {
		selector := &fakeSelector{report: newReport()}
		completer := &fakeCompleter{reply: "resposta"}
		config := testConfig()
		config.Strategy = model.StrategyBest
		session, _ := newTestSession(t, config, nil, selector, completer, "pergunta\nsair\n")

		err := session.Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, selector.calls)
		require.Equal(t, 1, completer.calls)
		assert.Contains(t, completer.prompts[0], "trecho hyde")
		assert.NotContains(t, completer.prompts[0], "trecho padrão")
	})

	t.Run("Verbose prints the comparison report", func(t *testing.T) {
		report := newReport()
		report.Failures = []model.StrategyFailure{{Strategy: model.StrategyIterRetGen, Err: model.ErrCompletion}}
		selector := &fakeSelector{report: report}
		config := testConfig()
		config.Strategy = model.StrategyBest
		config.Verbose = true
		session, out := newTestSession(t, config, nil, selector, &fakeCompleter{reply: "resposta"}, "pergunta\nsair\n")

		err := session.Run(context.Background())

		require.NoError(t, err)
		assert.Contains(t, out.String(), string(model.StrategyHyde))
		assert.Contains(t, out.String(), string(model.StrategyIterRetGen))
	})

	t.Run("Exhausted selection fails the turn, not the session", func(t *testing.T) {
		selector := &fakeSelector{err: model.ErrSelectionExhausted}
		config := testConfig()
		config.Strategy = model.StrategyBest
		session, out := newTestSession(t, config, nil, selector, &fakeCompleter{}, "pergunta\nsair\n")

		err := session.Run(context.Background())

		require.NoError(t, err)
		assert.Contains(t, out.String(), "Ocorreu um erro durante o chat")
		assert.Contains(t, out.String(), "Encerrando o chat")
	})
}

func TestSessionTurn(t *testing.T) {
	t.Run("Surfaces completion errors", func(t *testing.T) {
		strategy := &fakeStrategy{outcome: testOutcome(model.StrategyDefault, "trecho")}
		completer := &fakeCompleter{err: model.ErrCompletion}
		session, _ := newTestSession(t, testConfig(), strategy, nil, completer, "")

		_, err := session.Turn(context.Background(), "pergunta")

		assert.ErrorIs(t, err, model.ErrCompletion)
	})

	t.Run("Empty context still asks the completer", func(t *testing.T) {
		strategy := &fakeStrategy{outcome: testOutcome(model.StrategyDefault)}
		completer := &fakeCompleter{reply: "Não tenho informações necessárias para responder sua pergunta."}
		session, _ := newTestSession(t, testConfig(), strategy, nil, completer, "")

		answer, err := session.Turn(context.Background(), "qual é a capital da França?")

		require.NoError(t, err)
		assert.Equal(t, 1, completer.calls)
		assert.Contains(t, answer, "Não tenho informações")
	})

	t.Run("Cancelled context is respected by capabilities", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		strategy := &fakeStrategy{errs: []error{ctx.Err()}}
		session, _ := newTestSession(t, testConfig(), strategy, nil, &fakeCompleter{}, "")

		_, err := session.Turn(ctx, "pergunta")

		assert.True(t, errors.Is(err, context.Canceled))
	})
}
