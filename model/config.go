package model

import (
	"fmt"
	"time"
)

// Strategy identifies one retrieval enhancement strategy.
type Strategy string

const (
	StrategyDefault    Strategy = "default"
	StrategyHyde       Strategy = "hyde"
	StrategyQuery2Doc  Strategy = "query2doc"
	StrategyIterRetGen Strategy = "iter-retgen"
	StrategyBest       Strategy = "best"
)

// AllStrategies lists the executor strategies in their fixed priority order.
// The order doubles as the tie-break order of the best selector.
var AllStrategies = []Strategy{
	StrategyDefault,
	StrategyHyde,
	StrategyQuery2Doc,
	StrategyIterRetGen,
}

// ParseStrategy validates a strategy name from configuration.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyDefault, StrategyHyde, StrategyQuery2Doc, StrategyIterRetGen, StrategyBest:
		return Strategy(name), nil
	default:
		return "", fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, name)
	}
}

// Provider identifies an embedding/completion backend.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderOpenAI Provider = "openai"
	ProviderLocal  Provider = "local"
)

// ParseProvider validates a provider name from configuration.
func ParseProvider(name string) (Provider, error) {
	switch Provider(name) {
	case ProviderGoogle, ProviderOpenAI, ProviderLocal:
		return Provider(name), nil
	default:
		return "", fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, name)
	}
}

// Config is the process-wide configuration, built once at startup and passed
// by reference into the session and every strategy invocation.
type Config struct {
	Provider   Provider      `json:"provider"`
	Strategy   Strategy      `json:"strategy"`
	Collection string        `json:"collection"`
	TopK       int           `json:"top_k"`
	Timeout    time.Duration `json:"timeout"`
	Verbose    bool          `json:"verbose"`
}

// DefaultConfig returns the configuration matching the CLI defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:   ProviderGoogle,
		Strategy:   StrategyDefault,
		Collection: "documentos_pdf",
		TopK:       10,
		Timeout:    60 * time.Second,
	}
}

// Validate checks the configuration for values the engine cannot work with.
func (c *Config) Validate() error {
	if _, err := ParseProvider(string(c.Provider)); err != nil {
		return err
	}
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return err
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: collection name is empty", ErrInvalidConfig)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfig, c.TopK)
	}
	return nil
}

// QueryConfig represents configuration for a single retrieval query.
type QueryConfig struct {
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
}

// QueryConfigFrom derives the per-query configuration from the session config.
func QueryConfigFrom(c *Config) *QueryConfig {
	return &QueryConfig{TopK: c.TopK}
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:                10,
		SimilarityThreshold: 0.0,
	}
}
