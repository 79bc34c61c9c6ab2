// Package chat implements the interactive question loop on top of the
// retrieval strategies. Each turn is independent; no conversational memory
// is kept between questions.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

// answerPrompt constrains the completer to the retrieved context. The model
// must refuse instead of inventing answers from external knowledge.
const answerPrompt = `CONTEXTO:
%v

REGRAS:
- Responda somente com base no CONTEXTO.
- Se a informação não estiver explicitamente no CONTEXTO, responda:
  "Não tenho informações necessárias para responder sua pergunta."
- Nunca invente ou use conhecimento externo.
- Nunca produza opiniões ou interpretações além do que está escrito.

PERGUNTA DO USUÁRIO:
%v

RESPONDA A "PERGUNTA DO USUÁRIO"`

// exitKeywords terminate the session loop without an error.
var exitKeywords = []string{"sair", "exit", "quit"}

// Strategy is the single-strategy retrieval capability of a session.
type Strategy interface {
	Retrieve(ctx context.Context, query string, config *model.QueryConfig) (*model.StrategyOutcome, error)
}

// Selector is the multi-strategy retrieval capability used in best mode.
type Selector interface {
	Select(ctx context.Context, query string, config *model.QueryConfig) (*model.ComparisonReport, error)
}

// Completer generates the final answer from the assembled prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Session drives the interactive loop. Exactly one of strategy or selector
// is set, depending on the configured strategy name.
type Session struct {
	strategy  Strategy
	selector  Selector
	completer Completer
	config    *model.Config
	in        io.Reader
	out       io.Writer
	log       *slog.Logger
}

// NewSession creates a session reading questions from in and printing to out.
// Pass a selector for best mode and a strategy otherwise.
func NewSession(config *model.Config, strategy Strategy, selector Selector, completer Completer, in io.Reader, out io.Writer, logger *slog.Logger) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config must not be nil", model.ErrInvalidConfig)
	}
	if (strategy == nil) == (selector == nil) {
		return nil, fmt.Errorf("%w: exactly one of strategy or selector must be set", model.ErrInvalidConfig)
	}
	if completer == nil {
		return nil, fmt.Errorf("%w: completer must not be nil", model.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		strategy:  strategy,
		selector:  selector,
		completer: completer,
		config:    config,
		in:        in,
		out:       out,
		log:       logger,
	}, nil
}

// Run reads questions until an exit keyword or end of input. A failed turn
// prints the error and keeps the loop alive for further questions.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "--- Chat com Documentos (Provedor: %v, Coleção: %v, Estratégia: %v) ---\n", s.config.Provider, s.config.Collection, s.config.Strategy)
	fmt.Fprintln(s.out, "Digite sua pergunta ou 'sair' para terminar.")

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "\nPergunta: ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if isExitKeyword(question) {
			fmt.Fprintln(s.out, "Encerrando o chat. Até logo!")
			return nil
		}

		answer, err := s.Turn(ctx, question)
		if err != nil {
			s.log.Error("Chat turn failed", "question", question, "error", err.Error())
			fmt.Fprintf(s.out, "\nOcorreu um erro durante o chat: %v\n", err)
			continue
		}

		fmt.Fprintln(s.out, "\nResposta:")
		fmt.Fprintln(s.out, answer)
	}
}

// Turn runs a single question through retrieval and answer generation.
// The configured timeout bounds the whole turn.
func (s *Session) Turn(ctx context.Context, question string) (string, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	outcome, err := s.retrieve(ctx, question)
	if err != nil {
		return "", err
	}

	// In best mode only the comparison statistics are shown, not the
	// winner's documents.
	if s.config.Verbose && s.selector == nil {
		s.printTrace(outcome)
	}

	contextText := strings.Join(outcome.ContextTexts(), "\n\n---\n\n")
	if contextText == "" {
		s.log.Debug("No relevant chunks found", "question", question)
	}

	answer, err := s.completer.Complete(ctx, fmt.Sprintf(answerPrompt, contextText, question))
	if err != nil {
		return "", err
	}

	return answer, nil
}

// retrieve resolves the winning outcome for a question, through the selector
// in best mode and through the single configured strategy otherwise.
func (s *Session) retrieve(ctx context.Context, question string) (*model.StrategyOutcome, error) {
	queryConfig := model.QueryConfigFrom(s.config)

	if s.selector != nil {
		report, err := s.selector.Select(ctx, question, queryConfig)
		if err != nil {
			return nil, err
		}
		if s.config.Verbose {
			s.printReport(report)
		}
		return report.Best(), nil
	}

	return s.strategy.Retrieve(ctx, question, queryConfig)
}

func (s *Session) printTrace(outcome *model.StrategyOutcome) {
	fmt.Fprintln(s.out, color.CyanString("\n--- Rastreamento da Estratégia: %v ---", outcome.Strategy))
	if outcome.Degraded {
		fmt.Fprintln(s.out, color.YellowString("Estratégia degradada para a busca padrão."))
	}
	for _, step := range outcome.Trace {
		fmt.Fprintf(s.out, "%v: %v\n", color.BlueString(string(step.Kind)), step.Content)
	}
	for i, result := range outcome.Results {
		fmt.Fprintf(s.out, "Doc %v (Score: %.4f): %v\n", i+1, result.Score, truncate(result.Chunk.Content, 100))
	}
	fmt.Fprintln(s.out, color.CyanString("--------------------------"))
}

func (s *Session) printReport(report *model.ComparisonReport) {
	fmt.Fprintln(s.out, color.CyanString("\n--- Comparação de Estratégias ---"))
	for _, outcome := range report.Outcomes {
		fmt.Fprintf(s.out, "%v: %.4f\n", outcome.Strategy, outcome.Score)
	}
	for _, failure := range report.Failures {
		fmt.Fprintf(s.out, "%v: %v\n", failure.Strategy, color.RedString("%v", failure.Err))
	}
	fmt.Fprintln(s.out, color.CyanString("Vencedora: %v", report.Winner))
}

func isExitKeyword(question string) bool {
	lowered := strings.ToLower(question)
	for _, keyword := range exitKeywords {
		if lowered == keyword {
			return true
		}
	}
	return false
}

func truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
