package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/helper"
	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

const googleEmbeddingDim = 768

// GoogleProvider backs embeddings and completions with the Gemini API.
type GoogleProvider struct {
	client     *genai.Client
	generative *genai.GenerativeModel
	embedding  *genai.EmbeddingModel
}

// NewGoogleProvider creates a Google provider from the GOOGLE_API_KEY
// environment variable. GOOGLE_CHAT_MODEL optionally overrides the
// generative model name.
func NewGoogleProvider(ctx context.Context) (*GoogleProvider, error) {
	key := os.Getenv("GOOGLE_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY is required for the google provider", model.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return nil, helper.NewError("create google client", err)
	}

	chatModel := "gemini-1.5-flash"
	if m := os.Getenv("GOOGLE_CHAT_MODEL"); m != "" {
		chatModel = m
	}

	return &GoogleProvider{
		client:     client,
		generative: client.GenerativeModel(chatModel),
		embedding:  client.EmbeddingModel("embedding-001"),
	}, nil
}

// Embed generates an embedding for the given text
func (p *GoogleProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.embedding.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrEmbedding, err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", model.ErrEmbedding)
	}

	return resp.Embedding.Values, nil
}

// Complete generates text for the given prompt
func (p *GoogleProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.generative.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrCompletion, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: response contains no candidates", model.ErrCompletion)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

// Dimension returns the embedding dimension of embedding-001
func (p *GoogleProvider) Dimension() int {
	return googleEmbeddingDim
}

// Close closes the underlying client
func (p *GoogleProvider) Close() error {
	return p.client.Close()
}
