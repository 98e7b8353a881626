// Package reqctx tags each scrape submission with an id for log correlation.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type key int

const requestKey key = 0

// RequestContext identifies one scrape submission
type RequestContext struct {
	RequestID string
	URL       string
	StartTime time.Time
}

// Elapsed returns the time since the submission started
func (rc *RequestContext) Elapsed() time.Duration {
	return time.Since(rc.StartTime)
}

// WithRequestContext attaches a fresh RequestContext for url, unless ctx already carries one
func WithRequestContext(ctx context.Context, url string) context.Context {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok && rc != nil {
		return ctx
	}
	return context.WithValue(ctx, requestKey, &RequestContext{
		RequestID: generateID(),
		URL:       url,
		StartTime: time.Now(),
	})
}

// GetRequestContext returns the RequestContext carried by ctx, or a placeholder
func GetRequestContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{
		RequestID: "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns logger enriched with the request id and url of ctx
func Logger(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	rc := GetRequestContext(ctx)
	return logger.With().
		Str("request_id", rc.RequestID).
		Str("url", rc.URL).
		Logger()
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RequestError wraps an error with the submission id
type RequestError struct {
	RequestID string
	Err       error
}

// Error implements the error interface
func (e *RequestError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RequestID, e.Err)
}

// Unwrap returns the underlying error
func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a RequestError from ctx
func NewRequestError(ctx context.Context, err error) error {
	return &RequestError{
		RequestID: GetRequestContext(ctx).RequestID,
		Err:       err,
	}
}
