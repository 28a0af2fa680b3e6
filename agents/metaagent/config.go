/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metaagent

import (
	"errors"

	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/agents/retry"
)

// Config configures an Agent. Nothing here is read from the environment.
type Config struct {
	// Model selects the provider by prefix: gemini-* or claude-*.
	Model string

	// APIKey selects the public provider API. When empty, Vertex AI is used
	// with Project and Region.
	APIKey  string
	Project string
	Region  string

	// Temperature is applied as given; zero is deterministic sampling.
	Temperature float64

	// MaxOutputTokens overrides the executor default when positive.
	MaxOutputTokens int

	// Retry overrides the default retry policy when non-nil.
	Retry *retry.Config

	// SystemInstructions is a fully bound system prompt. Optional.
	SystemInstructions *promptbuilder.Prompt

	// UserPrompt is the template the request is bound into.
	UserPrompt *promptbuilder.Prompt
}

func (c Config) validate() error {
	var errs []error
	if c.UserPrompt == nil {
		errs = append(errs, errors.New("user prompt is required"))
	}
	if c.APIKey == "" && (c.Project == "" || c.Region == "") {
		errs = append(errs, errors.New("project and region are required without an API key"))
	}
	if c.MaxOutputTokens < 0 {
		errs = append(errs, errors.New("max output tokens cannot be negative"))
	}
	return errors.Join(errs...)
}
