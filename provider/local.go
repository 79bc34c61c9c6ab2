package provider

import (
	"context"
	"fmt"

	"github.com/knights-analytics/hugot"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/helper"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

const localEmbeddingDim = 384

// LocalProvider embeds text with a local sentence transformer model
// (all-MiniLM-L6-v2, 384 dimensions). It cannot generate text, so it only
// works with the default strategy.
type LocalProvider struct {
	session *hugot.Session
	embed   func(text string) ([]float32, error)
}

// NewLocalProvider downloads the model if needed and initializes the
// feature-extraction pipeline.
func NewLocalProvider() (*LocalProvider, error) {
	modelPath, err := helper.PrepareModel("sentence-transformers/all-MiniLM-L6-v2", "onnx/model.onnx")
	if err != nil {
		return nil, helper.NewError("prepare local model", err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, helper.NewError("create hugot session", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, helper.NewError("create sentence pipeline", fmt.Errorf("%w (cleanup error: %v)", err, destroyErr))
		}
		return nil, helper.NewError("create sentence pipeline", err)
	}

	embed := func(text string) ([]float32, error) {
		result, err := sentencePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, err
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}
		return result.Embeddings[0], nil
	}

	return &LocalProvider{
		session: session,
		embed:   embed,
	}, nil
}

// Embed generates an embedding for the given text
func (p *LocalProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding, err := p.embed(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrEmbedding, err)
	}
	return embedding, nil
}

// Complete always fails: the local model is embedding-only.
func (p *LocalProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return "", fmt.Errorf("%w: the local provider cannot generate text, use the default strategy", model.ErrCompletion)
}

// Dimension returns the embedding dimension of all-MiniLM-L6-v2
func (p *LocalProvider) Dimension() int {
	return localEmbeddingDim
}

// Close destroys the hugot session
func (p *LocalProvider) Close() error {
	return p.session.Destroy()
}
