/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// segment is either literal template text or a placeholder name.
type segment struct {
	text        string
	placeholder bool
}

func tokenize(template string) ([]segment, error) {
	var segments []segment
	for len(template) > 0 {
		start := strings.Index(template, "{{")
		if start == -1 {
			segments = append(segments, segment{text: template})
			break
		}
		if start > 0 {
			segments = append(segments, segment{text: template[:start]})
		}
		end := strings.Index(template[start:], "}}")
		if end == -1 {
			return nil, errors.New("unclosed binding: missing '}}'")
		}
		name := strings.TrimSpace(template[start+2 : start+end])
		if !isIdentifier(name) {
			return nil, fmt.Errorf("invalid binding identifier %q", name)
		}
		segments = append(segments, segment{text: name, placeholder: true})
		template = template[start+end+2:]
	}
	return segments, nil
}

// isIdentifier accepts a letter followed by letters, digits or underscores.
func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case unicode.IsLetter(r):
		case i > 0 && (unicode.IsDigit(r) || r == '_'):
		default:
			return false
		}
	}
	return s != ""
}
