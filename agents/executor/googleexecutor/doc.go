/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package googleexecutor runs single-shot structured generation against Gemini.

The executor binds a request into its prompt template, asks the model for a
JSON response (optionally constrained by a response schema), and decodes it
with the result package. Transient Vertex AI errors are retried with backoff.

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  projectID,
		Location: "us-central1",
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return err
	}

	exec, err := googleexecutor.New[*Request, *Verdict](client.Models, prompt,
		googleexecutor.WithModel[*Request, *Verdict]("gemini-2.5-flash"),
		googleexecutor.WithTemperature[*Request, *Verdict](0),
		googleexecutor.WithResponseSchema[*Request, *Verdict](schema.ForGemini(schema.ReflectType[Verdict]())),
	)
	if err != nil {
		return err
	}
	verdict, err := exec.Execute(ctx, req)

Every call is recorded as an agenttrace.Trace and contributes to the shared
genai token and request metrics.
*/
package googleexecutor
