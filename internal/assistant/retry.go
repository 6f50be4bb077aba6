package assistant

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

const (
	maxAttempts   = 3
	initialDelay  = 500 * time.Millisecond
	backoffFactor = 2
)

// generateWithRetry calls the generator, retrying transient failures
// with exponential backoff. Context cancellation and non-retryable API
// errors fail immediately.
func generateWithRetry(ctx context.Context, gen Generator, system, prompt string, logger *slog.Logger) (string, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		answer, err := gen.GenerateContent(ctx, system, prompt)
		if err == nil {
			return answer, nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) {
			return "", err
		}
		if attempt == maxAttempts {
			break
		}

		logger.Warn("model call failed, retrying",
			"attempt", attempt, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= backoffFactor
	}

	return "", lastErr
}

// isRetryable reports whether an error is worth retrying: rate limits
// and server-side failures are, client errors are not. Errors of
// unknown shape are retried, erring toward availability.
func isRetryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	return true
}
