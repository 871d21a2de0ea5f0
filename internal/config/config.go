package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultModels is the Gemini fallback chain, most preferred first.
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-1.5-pro-latest",
}

type Config struct {
	Port           string
	Environment    string   // ENV: production, development, etc.
	Debug          bool
	Version        string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	TrustProxy     bool     // take client IPs from X-Forwarded-For / X-Real-IP

	GeminiAPIKey  string
	GeminiModels  []string
	GeminiTimeout time.Duration // per model call
	GeminiRPS     int
	AskTimeout    time.Duration // whole /api/ask request

	StoreBackend string // file, mongo, postgres
	FeedbackFile string
	MongoURI     string
	PostgresURI  string
	RedisURI     string // empty disables Redis features

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	SentryDSN string
}

func Load() *Config {
	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = parseList(getEnv("FRONTEND_URL", "http://localhost:5173"))
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173"}
	}

	models := parseList(getEnv("GEMINI_MODELS", ""))
	if len(models) == 0 {
		models = append([]string(nil), DefaultModels...)
	}

	debug, _ := strconv.ParseBool(getEnv("DEBUG", "false"))
	trustProxy, _ := strconv.ParseBool(getEnv("TRUST_PROXY", "false"))
	rps, err := strconv.Atoi(getEnv("GEMINI_RPS", "5"))
	if err != nil || rps < 1 {
		rps = 5
	}

	return &Config{
		Port:                getEnv("PORT", "5000"),
		Environment:         strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
		Debug:               debug,
		Version:             getEnv("VERSION", "dev"),
		AllowedOrigins:      allowedOrigins,
		TrustProxy:          trustProxy,
		GeminiAPIKey:        strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		GeminiModels:        models,
		GeminiTimeout:       getDuration("GEMINI_TIMEOUT", 8*time.Second),
		GeminiRPS:           rps,
		AskTimeout:          getDuration("ASK_TIMEOUT", 20*time.Second),
		StoreBackend:        strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", "file"))),
		FeedbackFile:        getEnv("FEEDBACK_FILE", "feedback.json"),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/feedback")),
		PostgresURI:         getEnv("POSTGRES_URI", "postgres://localhost:5432/feedback?sslmode=disable"),
		RedisURI:            getEnv("REDIS_URI", ""),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RemoteConfigured reports whether a Gemini credential is present.
func (c *Config) RemoteConfigured() bool {
	return c.GeminiAPIKey != ""
}

// CloudinaryConfigured reports whether all three Cloudinary credentials are set.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
