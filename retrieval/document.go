/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package retrieval

// Document is one retrieved patient snippet.
type Document struct {
	ID       string            `json:"id"`
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata"`
	// Distance is the cosine distance to the query; smaller is closer.
	Distance float64 `json:"distance"`
}

// Texts returns the document texts in order.
func Texts(docs []Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Document)
	}
	return out
}

// matches reports whether every filter entry equals the document metadata.
func matches(meta, filter map[string]string) bool {
	for k, v := range filter {
		if meta[k] != v {
			return false
		}
	}
	return true
}
