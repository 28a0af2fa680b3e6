/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package metaagent turns a prompt pair and a response type into a structured
generator backed by whichever provider the model name selects.

	agent, err := metaagent.New[*verifier.Request, *verifier.Response](ctx, metaagent.Config{
		Model:              "gemini-2.5-flash",
		Project:            projectID,
		Region:             "us-central1",
		SystemInstructions: systemPrompt,
		UserPrompt:         userPrompt,
	})
	if err != nil {
		return err
	}
	resp, err := agent.Execute(ctx, req)

Models starting with "gemini-" run on google.golang.org/genai, models starting
with "claude-" on the Anthropic SDK. With an APIKey the public APIs are used,
otherwise Vertex AI in Project and Region. Responses are decoded from JSON and
validated when the response type implements result.Validator; unusable output
is reported as *result.ExtractionError.
*/
package metaagent
