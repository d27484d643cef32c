package internal

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type contextKey string

const requestIDKey contextKey = "requestID"

// newRequestID creates an identifier that ties a checkout attempt's log lines
// together across the handler, flow and gateway call.
func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("pay-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// WithRequestID attaches a request ID to the context, keeping an existing one.
func WithRequestID(ctx context.Context) context.Context {
	if _, ok := ctx.Value(requestIDKey).(string); ok {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, newRequestID())
}

// GetRequestID returns the request ID from the context, or "" if absent.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
