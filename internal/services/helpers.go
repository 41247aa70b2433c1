package services

import (
	"context"
	"strings"
)

// ensureContext guards against callers passing a nil context.
func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// truncate trims surrounding whitespace and caps free-form text at limit runes.
// Oversized input is truncated rather than rejected.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
