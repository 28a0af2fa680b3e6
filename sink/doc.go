/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package sink delivers match results to durable destinations: a JSON-lines
// file for review and a Kafka topic for downstream consumers.
package sink

import (
	"context"
	"errors"

	"chainguard.dev/trialscreen/screening/matcher"
)

// Sink receives completed match results. Implementations are safe for
// concurrent use.
type Sink interface {
	Write(ctx context.Context, result *matcher.MatchResult) error
	Close() error
}

// Multi writes every result to each sink in order.
type Multi []Sink

// Write implements Sink. All sinks are attempted even when one fails.
func (m Multi) Write(ctx context.Context, result *matcher.MatchResult) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Sink.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
