/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package sink

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"chainguard.dev/trialscreen/screening/matcher"
)

// JSONL writes one JSON object per line.
type JSONL struct {
	mu     sync.Mutex
	w      *bufio.Writer
	closer io.Closer
}

// NewJSONL writes to w. Close flushes but does not close w.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{w: bufio.NewWriter(w)}
}

// CreateJSONL truncates or creates path.
func CreateJSONL(path string) (*JSONL, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	j := NewJSONL(f)
	j.closer = f
	return j, nil
}

// Write implements Sink.
func (j *JSONL) Write(_ context.Context, result *matcher.MatchResult) error {
	if result == nil {
		return errors.New("result is nil")
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result for %s: %w", result.PatientID, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(append(b, '\n')); err != nil {
		return err
	}
	return j.w.Flush()
}

// Close implements Sink.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	err := j.w.Flush()
	if j.closer != nil {
		err = errors.Join(err, j.closer.Close())
	}
	return err
}

// ReadJSONL decodes and validates results written by JSONL. Blank lines are
// skipped.
func ReadJSONL(r io.Reader) ([]*matcher.MatchResult, error) {
	var out []*matcher.MatchResult
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; sc.Scan(); line++ {
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		var res matcher.MatchResult
		if err := dec.Decode(&res); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if err := res.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, &res)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
