/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package result turns raw model output into validated values.

Models frequently wrap JSON in markdown fences or add a sentence before it.
ExtractJSON locates the JSON payload and Extract decodes it into the target
type. When the target type implements Validator, Extract also validates it.
Either failure is reported as an *ExtractionError carrying the raw text, so
callers never receive a half-parsed value:

	verdict, err := result.Extract[*Verdict](text)
	if err != nil {
		var xe *result.ExtractionError
		if errors.As(err, &xe) {
			log.With("raw", xe.Raw).Warn("Model returned unusable output")
		}
		return err
	}
*/
package result
