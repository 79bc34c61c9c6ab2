package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/MauMorais-MBAEngSwComIA/busca-semantica-langchain-postgres/model"
)

const openAIEmbeddingDim = 1536

// OpenAIProvider backs embeddings and completions with the OpenAI API.
type OpenAIProvider struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
}

// NewOpenAIProvider creates an OpenAI provider from the OPENAI_API_KEY
// environment variable. OPENAI_BASE_URL and OPENAI_CHAT_MODEL are optional
// overrides.
func NewOpenAIProvider() (*OpenAIProvider, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is required for the openai provider", model.ErrInvalidConfig)
	}

	config := openai.DefaultConfig(key)
	if base := os.Getenv("OPENAI_BASE_URL"); base != "" {
		config.BaseURL = base
	}

	chatModel := openai.GPT4oMini
	if m := os.Getenv("OPENAI_CHAT_MODEL"); m != "" {
		chatModel = m
	}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(config),
		chatModel:      chatModel,
		embeddingModel: openai.AdaEmbeddingV2,
	}, nil
}

// Embed generates an embedding for the given text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: p.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", model.ErrEmbedding)
	}

	return resp.Data[0].Embedding, nil
}

// Complete generates text for the given prompt
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrCompletion, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contains no choices", model.ErrCompletion)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Dimension returns the embedding dimension of text-embedding-ada-002
func (p *OpenAIProvider) Dimension() int {
	return openAIEmbeddingDim
}

// Close is a no-op for the HTTP-based OpenAI client
func (p *OpenAIProvider) Close() error {
	return nil
}
