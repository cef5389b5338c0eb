package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Translator is the external translation collaborator: one call, one text.
// Quality is the provider's concern; this package only guarantees that texts
// and translations never get misaligned.
type Translator interface {
	Translate(ctx context.Context, text string, targetLanguage string) (string, error)
}

// RateLimitError marks provider failures that should be retried with
// exponential backoff before falling back.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("translation rate limited: %v", e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether an error belongs to the retryable class:
// explicit rate-limit errors, provider responses carrying a 429 signature,
// and timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var rateLimited *RateLimitError
	if errors.As(err, &rateLimited) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "429") ||
		strings.Contains(message, "too many requests") ||
		strings.Contains(message, "rate limit")
}

// TranslateFunc adapts a plain function to the Translator interface.
type TranslateFunc func(ctx context.Context, text string, targetLanguage string) (string, error)

func (f TranslateFunc) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	return f(ctx, text, targetLanguage)
}
