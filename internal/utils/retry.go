package utils

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxRetries int           // Maximum number of retries
	BaseDelay  time.Duration // Base delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns a sensible default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   time.Minute,
	}
}

// IsRetryableError checks if an error is worth retrying. Only transient
// transport and quota conditions qualify; auth and not-found failures are
// permanent.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if netErr, ok := err.(net.Error); ok {
		return netErr.Timeout()
	}

	errStr := strings.ToLower(err.Error())

	permanentErrors := []string{
		"invalid_grant",
		"unauthorized",
		"forbidden",
		"not found",
		"notfound",
		"bad credentials",
	}
	for _, permanent := range permanentErrors {
		if strings.Contains(errStr, permanent) {
			return false
		}
	}

	retryableErrors := []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary failure",
		"rate limit",
		"ratelimited",
		"too many requests",
		"429",
		"service unavailable",
		"internal server error",
		"bad gateway",
		"gateway timeout",
		"network is unreachable",
		"backenderror",
		"userratelimitexceeded",
	}
	for _, retryable := range retryableErrors {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}

	return false
}

// GetRetryDelay calculates the delay for the next attempt based on error type
func GetRetryDelay(err error, attempt int, baseDelay time.Duration) time.Duration {
	if err == nil {
		return baseDelay
	}

	errStr := strings.ToLower(err.Error())

	// Quota errors need longer waits
	if strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "too many requests") || strings.Contains(errStr, "userratelimitexceeded") {
		delay := time.Duration(attempt+1) * 5 * time.Second
		if delay > 5*time.Minute {
			delay = 5 * time.Minute
		}
		return delay
	}

	// Default exponential backoff
	delay := time.Duration(float64(baseDelay) * math.Pow(2, float64(attempt)))
	if delay > 2*time.Minute {
		delay = 2 * time.Minute
	}
	return delay
}

// RetryWithBackoff executes a function with backoff retry logic
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := GetRetryDelay(lastErr, attempt-1, config.BaseDelay)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}

			// Add jitter to prevent thundering herd
			jitter := time.Duration(rand.Float64() * float64(delay) * 0.1)
			delay += jitter

			logrus.Debugf("Retry attempt %d/%d after %v (last error: %v)",
				attempt+1, config.MaxRetries+1, delay, lastErr)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := operation()
		if err == nil {
			if attempt > 0 {
				logrus.Debugf("Operation succeeded on attempt %d", attempt+1)
			}
			return nil
		}

		lastErr = err

		if !IsRetryableError(err) {
			logrus.Debugf("Error is not retryable: %v", err)
			return err
		}

		if attempt == config.MaxRetries {
			logrus.Warnf("Max retries (%d) exceeded, giving up. Last error: %v", config.MaxRetries, err)
			break
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", config.MaxRetries+1, lastErr)
}
