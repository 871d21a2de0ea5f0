package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	SourceRemote        = "remote"
	SourceLocal         = "local"
	SourceLocalFallback = "local-fallback"

	fallbackNote = "Remote AI failed, using local response"
)

// Generator is the remote text-generation capability.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// AnswerCache stores remote answers by question. Implementations are best effort.
type AnswerCache interface {
	GetAnswer(ctx context.Context, question string) (Answer, bool)
	PutAnswer(ctx context.Context, question string, answer Answer)
}

type Answer struct {
	Answer    string `json:"answer"`
	Source    string `json:"source"`
	ModelUsed string `json:"modelUsed,omitempty"`
	Cached    bool   `json:"cached,omitempty"`
	// Error and Note explain a local-fallback answer. Diagnostic only.
	Error string `json:"error,omitempty"`
	Note  string `json:"note,omitempty"`
}

type ResolverConfig struct {
	Models      []string
	CallTimeout time.Duration
}

// Resolver answers questions through an ordered model list, falling back to
// LocalAnswer. Resolve never fails.
type Resolver struct {
	gen         Generator
	models      []string
	callTimeout time.Duration
	cache       AnswerCache
	logger      *zap.Logger
}

// NewResolver builds a resolver. gen may be nil, in which case every answer is local.
func NewResolver(gen Generator, cfg ResolverConfig, cache AnswerCache, logger *zap.Logger) *Resolver {
	return &Resolver{
		gen:         gen,
		models:      append([]string(nil), cfg.Models...),
		callTimeout: cfg.CallTimeout,
		cache:       cache,
		logger:      logger,
	}
}

// RemoteConfigured reports whether a generator is wired in.
func (r *Resolver) RemoteConfigured() bool {
	return r.gen != nil
}

// Models returns the fallback chain in priority order.
func (r *Resolver) Models() []string {
	return append([]string(nil), r.models...)
}

func (r *Resolver) Resolve(ctx context.Context, question string) Answer {
	if r.gen == nil {
		return Answer{Answer: LocalAnswer(question), Source: SourceLocal}
	}

	if r.cache != nil {
		if cached, ok := r.cache.GetAnswer(ctx, question); ok {
			cached.Cached = true
			return cached
		}
	}

	prompt := buildPrompt(question)
	var lastErr error
	for _, model := range r.models {
		if ctx.Err() != nil {
			lastErr = &RemoteCallError{Model: model, Err: ctx.Err()}
			break
		}

		text, err := r.call(ctx, model, prompt)
		if err != nil {
			lastErr = err
			r.logger.Warn("model call failed", zap.String("model", model), zap.Error(err))
			continue
		}

		answer := Answer{Answer: text, Source: SourceRemote, ModelUsed: model}
		if r.cache != nil {
			r.cache.PutAnswer(ctx, question, answer)
		}
		r.logger.Debug("model answered", zap.String("model", model), zap.Int("chars", len(text)))
		return answer
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no models configured")
	}
	r.logger.Warn("all models failed, answering locally", zap.Error(lastErr))
	return Answer{
		Answer: LocalAnswer(question),
		Source: SourceLocalFallback,
		Error:  lastErr.Error(),
		Note:   fallbackNote,
	}
}

func (r *Resolver) call(ctx context.Context, model, prompt string) (string, error) {
	callCtx := ctx
	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	type result struct {
		text string
		err  error
	}
	// Buffered so the goroutine can finish after we stop waiting.
	done := make(chan result, 1)
	go func() {
		text, err := r.gen.Generate(callCtx, model, prompt)
		done <- result{text: text, err: err}
	}()

	var text string
	select {
	case res := <-done:
		if res.err != nil {
			return "", &RemoteCallError{Model: model, Err: res.err}
		}
		text = res.text
	case <-callCtx.Done():
		return "", &RemoteCallError{Model: model, Err: callCtx.Err()}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &RemoteCallError{Model: model, Err: ErrEmptyResponse}
	}
	return text, nil
}

func buildPrompt(question string) string {
	return fmt.Sprintf(`The user asked: %q

Please provide a helpful, concise answer (max 150 words).
If the question is about feedback systems or this Feedback Tracker application,
focus on helpful information about it. Otherwise, provide a general helpful response.

Use a friendly tone, short paragraphs or bullet points, and emojis where appropriate.`,
		strings.TrimSpace(question))
}
