/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package claudeexecutor runs single-shot structured generation against Claude,
either through the Anthropic API or Vertex AI.

Claude has no response-schema parameter, so WithResponseSchema appends the
JSON schema to the system prompt and the answer is decoded with the result
package.

	client := anthropic.NewClient(vertex.WithGoogleAuth(ctx, "us-east5", projectID))
	exec, err := claudeexecutor.New[*Request, *Verdict](&client.Messages, prompt,
		claudeexecutor.WithTemperature[*Request, *Verdict](0),
		claudeexecutor.WithResponseSchema[*Request, *Verdict](schema.ReflectType[Verdict]()),
	)
*/
package claudeexecutor
