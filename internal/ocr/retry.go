package ocr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// statusError is a non-2xx response from the recognizer.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("ocr: recognizer error %d: %s", e.code, e.body)
}

// retryable reports whether the recognizer asked us to back off or failed
// transiently.
func (e *statusError) retryable() bool {
	switch e.code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func retryWithBackoff(ctx context.Context, maxRetries int, base time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		var se *statusError
		if !errors.As(lastErr, &se) || !se.retryable() {
			return lastErr
		}

		if attempt < maxRetries {
			backoff := base << uint(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}
