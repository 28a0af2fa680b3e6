/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package claudeexecutor

import (
	"errors"
	"net/http"

	"chainguard.dev/trialscreen/agents/retry"
	"github.com/anthropics/anthropic-sdk-go"
)

// statusOverloaded is Anthropic's non-standard overload status.
const statusOverloaded = 529

// isRetryableClaudeError classifies API errors by status. Anything else, such
// as a proxy or transport failure, is classified by its message.
func isRetryableClaudeError(err error) bool {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return retry.TransientMessage(err)
	}
	switch apiErr.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout, statusOverloaded:
		return true
	default:
		return false
	}
}
