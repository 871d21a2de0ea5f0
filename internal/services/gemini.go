package services

import (
	"context"
	"fmt"

	"go.uber.org/ratelimit"
	"google.golang.org/genai"
)

const maxAnswerTokens = 400

// contentGenerator is the slice of the genai Models service we use.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator implements Generator on the Gemini API.
type GeminiGenerator struct {
	models  contentGenerator
	limiter ratelimit.Limiter
}

// NewGeminiGenerator creates the Gemini client. rps paces outbound calls.
func NewGeminiGenerator(ctx context.Context, apiKey string, rps int) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newGeminiGenerator(client.Models, rps), nil
}

func newGeminiGenerator(models contentGenerator, rps int) *GeminiGenerator {
	if rps < 1 {
		rps = 1
	}
	return &GeminiGenerator{
		models:  models,
		limiter: ratelimit.New(rps),
	}
}

func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	g.limiter.Take()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	resp, err := g.models.GenerateContent(ctx, model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{MaxOutputTokens: maxAnswerTokens},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil {
		return "", ErrEmptyResponse
	}
	return resp.Text(), nil
}
