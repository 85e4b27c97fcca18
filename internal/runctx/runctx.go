// Package runctx tags a scrape run with an identity that follows it
// through logs and error reports.
package runctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type key int

const runKey key = 0

// RunContext identifies one scrape run.
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// WithRunContext stamps ctx with a fresh run identity.
func WithRunContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     generateID(),
		StartTime: time.Now(),
	})
}

// FromContext returns the run identity stored in ctx, or a placeholder
// when the context was never stamped.
func FromContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// RunError wraps a fatal run error with the run identity
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError wraps err with the run identity carried by ctx.
func NewRunError(ctx context.Context, err error) error {
	rc := FromContext(ctx)
	return &RunError{
		RunID: rc.RunID,
		Err:   err,
	}
}
