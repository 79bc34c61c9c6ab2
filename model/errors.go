package model

import "errors"

// Error taxonomy shared by all layers. Collaborator failures are wrapped
// with one of the upstream sentinels so strategies can discriminate with
// errors.Is without depending on provider packages.
var (
	// ErrInvalidConfig marks configuration errors (bad strategy or provider
	// name, missing collection).
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbedding marks embedding generation failures.
	ErrEmbedding = errors.New("embedding failed")

	// ErrIndex marks vector index failures, including missing collections.
	ErrIndex = errors.New("index search failed")

	// ErrCompletion marks text completion failures.
	ErrCompletion = errors.New("completion failed")

	// ErrSelectionExhausted is reported by the best selector when every
	// strategy failed.
	ErrSelectionExhausted = errors.New("all retrieval strategies failed")
)
