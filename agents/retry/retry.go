/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package retry retries model calls that fail with quota or transient
// server errors.
package retry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
)

// Config controls how often and how patiently a call is retried.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	// Zero disables retrying.
	MaxRetries int `env:"MAX_RETRIES, default=5"`
	// BaseBackoff doubles on every retry, up to MaxBackoff.
	BaseBackoff time.Duration `env:"BASE_BACKOFF, default=1s"`
	MaxBackoff  time.Duration `env:"MAX_BACKOFF, default=60s"`
	// MaxJitter bounds the random delay added to each backoff.
	MaxJitter time.Duration `env:"MAX_JITTER, default=500ms"`
}

// Validate rejects negative settings.
func (c Config) Validate() error {
	var errs []error
	if c.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}
	if c.BaseBackoff < 0 {
		errs = append(errs, errors.New("base backoff cannot be negative"))
	}
	if c.MaxBackoff < 0 {
		errs = append(errs, errors.New("max backoff cannot be negative"))
	}
	if c.MaxJitter < 0 {
		errs = append(errs, errors.New("max jitter cannot be negative"))
	}
	return errors.Join(errs...)
}

// DefaultConfig uses long backoffs because quota windows take a while to refill.
func DefaultConfig() Config {
	return Config{
		MaxRetries:  5,
		BaseBackoff: time.Second,
		MaxBackoff:  60 * time.Second,
		MaxJitter:   500 * time.Millisecond,
	}
}

// Classifier reports whether an error is worth another attempt.
type Classifier func(error) bool

// Do calls fn until it succeeds, fails with an error the classifier rejects,
// the retries run out, or ctx is done.
func Do[T any](ctx context.Context, cfg Config, operation string, retryable Classifier, fn func(context.Context) (T, error)) (T, error) {
	var (
		out     T
		lastErr error
	)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		out, lastErr = fn(ctx)
		if lastErr == nil {
			return out, nil
		}
		if !retryable(lastErr) || attempt == cfg.MaxRetries {
			break
		}

		wait := cfg.delay(attempt)
		clog.FromContext(ctx).With("operation", operation).
			With("attempt", attempt+1).
			With("max_retries", cfg.MaxRetries).
			With("backoff", wait).
			With("error", lastErr.Error()).
			Warn("Transient model error, retrying")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return out, ctx.Err()
		case <-timer.C:
		}
	}

	if !retryable(lastErr) || cfg.MaxRetries == 0 {
		return out, lastErr
	}
	return out, fmt.Errorf("%s failed after %d retries: %w", operation, cfg.MaxRetries, lastErr)
}

// delay doubles BaseBackoff per attempt up to MaxBackoff, then adds jitter.
func (c Config) delay(attempt int) time.Duration {
	backoff := min(c.BaseBackoff, c.MaxBackoff)
	for range attempt {
		if backoff > c.MaxBackoff/2 {
			backoff = c.MaxBackoff
			break
		}
		backoff *= 2
	}
	if c.MaxJitter <= 0 {
		return backoff
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(c.MaxJitter)))
	if err != nil {
		return backoff
	}
	return backoff + time.Duration(n.Int64())
}

var transientMarkers = []string{
	"Resource exhausted",
	"RESOURCE_EXHAUSTED",
	"429",
	"rate limit",
	"quota exceeded",
	"Overloaded",
	"503",
	"Internal error",
	"server error",
}

// TransientMessage matches the error text providers use for throttling and
// temporary outages.
func TransientMessage(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
