/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"errors"
	"net/http"

	"chainguard.dev/trialscreen/agents/retry"
	"google.golang.org/genai"
)

// isRetryableVertexError reports rate limits, quota exhaustion and transient
// server errors.
func isRetryableVertexError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	return retry.TransientMessage(err)
}
