/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Validator is implemented by response types that can check their own
// invariants after decoding.
type Validator interface {
	Validate() error
}

// ExtractionError reports model output that did not decode or validate.
type ExtractionError struct {
	// Raw is the unmodified model output.
	Raw string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting structured output: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IsExtractionError reports whether err wraps an *ExtractionError.
func IsExtractionError(err error) bool {
	var xe *ExtractionError
	return errors.As(err, &xe)
}

// ExtractJSON returns the JSON payload of a model response. A ```json fenced
// block wins; otherwise generic fences are stripped; otherwise the outermost
// object or array in the text is used.
func ExtractJSON(text string) string {
	if body, ok := fenced(text, "```json"); ok {
		return body
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if nl := strings.IndexByte(trimmed, '\n'); nl >= 0 && !strings.ContainsAny(trimmed[:nl], "{[") {
			trimmed = trimmed[nl+1:]
		}
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		return strings.TrimSpace(trimmed)
	}

	if json.Valid([]byte(trimmed)) {
		return trimmed
	}

	start := strings.IndexAny(trimmed, "{[")
	if start == -1 {
		return trimmed
	}
	closer := byte('}')
	if trimmed[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(trimmed, closer)
	if end < start {
		return trimmed
	}
	return trimmed[start : end+1]
}

// fenced returns the body of the first block opened by marker on its own line.
func fenced(text, marker string) (string, bool) {
	var buf bytes.Buffer
	in := false
	for line := range strings.SplitSeq(text, "\n") {
		switch {
		case !in && strings.TrimSpace(line) == marker:
			in = true
		case in && strings.TrimSpace(line) == "```":
			return strings.TrimSpace(buf.String()), true
		case in:
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
		}
	}
	if in {
		return strings.TrimSpace(buf.String()), true
	}
	return "", false
}

// Extract decodes the JSON payload of text into T and validates it when T
// implements Validator. Unknown fields are rejected, as is a JSON null
// decoded into a pointer type.
func Extract[T any](text string) (T, error) {
	var out T

	payload := ExtractJSON(text)
	if payload == "" {
		return out, &ExtractionError{Raw: text, Err: errors.New("no JSON content in response")}
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	var decoded T
	if err := dec.Decode(&decoded); err != nil {
		return out, &ExtractionError{Raw: text, Err: err}
	}
	if v := reflect.ValueOf(&decoded).Elem(); v.Kind() == reflect.Pointer && v.IsNil() {
		return out, &ExtractionError{Raw: text, Err: errors.New("empty response")}
	}

	if v, ok := any(decoded).(Validator); ok {
		if err := v.Validate(); err != nil {
			return out, &ExtractionError{Raw: text, Err: fmt.Errorf("validation: %w", err)}
		}
	}
	return decoded, nil
}
