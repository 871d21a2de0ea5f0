package middleware

import (
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
)

// Sentry attaches a Sentry hub to each request and reports panics before
// re-raising them for the recoverer.
func Sentry() func(http.Handler) http.Handler {
	handler := sentryhttp.New(sentryhttp.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
	return handler.Handle
}
