package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENV", "DEBUG", "ALLOWED_ORIGINS", "FRONTEND_URL", "GEMINI_API_KEY", "GEMINI_MODELS",
		"GEMINI_TIMEOUT", "GEMINI_RPS", "ASK_TIMEOUT", "STORE_BACKEND", "FEEDBACK_FILE", "REDIS_URI",
	} {
		t.Setenv(key, "")
	}

	c := Load()

	assert.Equal(t, "5000", c.Port)
	assert.Equal(t, "development", c.Environment)
	assert.False(t, c.IsProduction())
	assert.Equal(t, []string{"http://localhost:5173"}, c.AllowedOrigins)
	assert.Equal(t, DefaultModels, c.GeminiModels)
	assert.Equal(t, 8*time.Second, c.GeminiTimeout)
	assert.Equal(t, 20*time.Second, c.AskTimeout)
	assert.Equal(t, 5, c.GeminiRPS)
	assert.Equal(t, "file", c.StoreBackend)
	assert.Equal(t, "feedback.json", c.FeedbackFile)
	assert.Empty(t, c.RedisURI)
	assert.False(t, c.RemoteConfigured())
	assert.False(t, c.CloudinaryConfigured())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", " Production ")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("GEMINI_MODELS", "m1, m2")
	t.Setenv("GEMINI_TIMEOUT", "3s")
	t.Setenv("GEMINI_RPS", "0")
	t.Setenv("ASK_TIMEOUT", "not-a-duration")
	t.Setenv("STORE_BACKEND", "Mongo")

	c := Load()

	assert.True(t, c.IsProduction())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, c.AllowedOrigins)
	assert.True(t, c.RemoteConfigured())
	assert.Equal(t, []string{"m1", "m2"}, c.GeminiModels)
	assert.Equal(t, 3*time.Second, c.GeminiTimeout)
	assert.Equal(t, 5, c.GeminiRPS, "invalid rps falls back to default")
	assert.Equal(t, 20*time.Second, c.AskTimeout, "invalid duration falls back to default")
	assert.Equal(t, "mongo", c.StoreBackend)
}

func TestLoadDoesNotShareDefaultModels(t *testing.T) {
	t.Setenv("GEMINI_MODELS", "")
	c := Load()
	c.GeminiModels[0] = "changed"
	assert.Equal(t, "gemini-2.5-flash", DefaultModels[0])
}
