package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	resp     *genai.GenerateContentResponse
	err      error
	gotModel string
	gotText  string
	config   *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.gotText = contents[0].Parts[0].Text
	}
	f.config = config
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}},
	}
}

func TestGeminiGenerate(t *testing.T) {
	fake := &fakeModels{resp: textResponse("an answer")}
	gen := newGeminiGenerator(fake, 100)

	text, err := gen.Generate(context.Background(), "gemini-2.5-flash", "prompt")

	require.NoError(t, err)
	assert.Equal(t, "an answer", text)
	assert.Equal(t, "gemini-2.5-flash", fake.gotModel)
	assert.Equal(t, "prompt", fake.gotText)
	require.NotNil(t, fake.config)
	assert.EqualValues(t, maxAnswerTokens, fake.config.MaxOutputTokens)
}

func TestGeminiGenerateError(t *testing.T) {
	gen := newGeminiGenerator(&fakeModels{err: errors.New("quota exceeded")}, 100)

	_, err := gen.Generate(context.Background(), "m", "p")

	assert.ErrorContains(t, err, "quota exceeded")
}

func TestGeminiGenerateNilResponse(t *testing.T) {
	gen := newGeminiGenerator(&fakeModels{}, 100)

	_, err := gen.Generate(context.Background(), "m", "p")

	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestGeminiGenerateCancelledContext(t *testing.T) {
	fake := &fakeModels{resp: textResponse("x")}
	gen := newGeminiGenerator(fake, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, "m", "p")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.gotModel)
}

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), "", 1)
	assert.Error(t, err)
}
