/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package googleexecutor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/agents/result"
	"chainguard.dev/trialscreen/agents/retry"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

type question struct {
	Text string
}

func (q *question) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindList("question", []string{q.Text})
}

type answer struct {
	Answer string `json:"answer"`
}

func (a *answer) Validate() error {
	if a.Answer == "" {
		return errors.New("answer is required")
	}
	return nil
}

type fakeModels struct {
	responses []*genai.GenerateContentResponse
	errs      []error

	calls     int
	gotModel  string
	gotPrompt string
	gotConfig *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.gotModel, f.gotConfig = model, config
	f.gotPrompt = contents[0].Parts[0].Text
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	if err != nil {
		return nil, err
	}
	return f.responses[min(i, len(f.responses)-1)], nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content:      &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
			FinishReason: genai.FinishReasonStop,
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 12, CandidatesTokenCount: 4},
	}
}

var fastRetry = retry.Config{MaxRetries: 2, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

func newTestExecutor(t *testing.T, models Generator, opts ...Option[*question, *answer]) Interface[*question, *answer] {
	t.Helper()
	opts = append([]Option[*question, *answer]{WithRetryConfig[*question, *answer](fastRetry)}, opts...)
	exec, err := New(models, promptbuilder.MustNewPrompt("Q: {{question}}"), opts...)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return exec
}

func TestExecute(t *testing.T) {
	models := &fakeModels{responses: []*genai.GenerateContentResponse{textResponse("```json\n{\"answer\": \"yes\"}\n```")}}
	schema := &genai.Schema{Type: genai.TypeObject}
	exec := newTestExecutor(t, models,
		WithModel[*question, *answer]("gemini-2.0-flash-exp"),
		WithTemperature[*question, *answer](0),
		WithSystemInstructions[*question, *answer](promptbuilder.MustNewPrompt("Be strict.")),
		WithResponseSchema[*question, *answer](schema),
	)

	got, err := exec.Execute(context.Background(), &question{Text: "eligible?"})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if diff := cmp.Diff(&answer{Answer: "yes"}, got); diff != "" {
		t.Errorf("Execute() mismatch (-want +got):\n%s", diff)
	}

	if models.gotModel != "gemini-2.0-flash-exp" {
		t.Errorf("model = %q, want gemini-2.0-flash-exp", models.gotModel)
	}
	if models.gotPrompt != "Q: 1. eligible?" {
		t.Errorf("prompt = %q", models.gotPrompt)
	}
	cfg := models.gotConfig
	if cfg.Temperature == nil || *cfg.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", cfg.Temperature)
	}
	if cfg.ResponseMIMEType != "application/json" || cfg.ResponseSchema != schema {
		t.Errorf("response config = %q %v, want application/json with schema", cfg.ResponseMIMEType, cfg.ResponseSchema)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "Be strict." {
		t.Errorf("system instruction = %+v", cfg.SystemInstruction)
	}
}

func TestExecuteRetriesTransientErrors(t *testing.T) {
	models := &fakeModels{
		errs:      []error{genai.APIError{Code: 429, Message: "quota"}, errors.New("503 Service Unavailable")},
		responses: []*genai.GenerateContentResponse{textResponse(`{"answer": "ok"}`)},
	}
	got, err := newTestExecutor(t, models).Execute(context.Background(), &question{Text: "q"})
	if err != nil {
		t.Fatalf("Execute() = %v", err)
	}
	if got.Answer != "ok" || models.calls != 3 {
		t.Errorf("Execute() = %+v after %d calls, want ok after 3", got, models.calls)
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name           string
		models         *fakeModels
		wantExtraction bool
		wantCalls      int
	}{{
		name:      "permanent error",
		models:    &fakeModels{errs: []error{genai.APIError{Code: 400, Message: "bad request"}}},
		wantCalls: 1,
	}, {
		name:           "invalid json",
		models:         &fakeModels{responses: []*genai.GenerateContentResponse{textResponse(`{"answer": `)}},
		wantExtraction: true,
		wantCalls:      1,
	}, {
		name:           "fails validation",
		models:         &fakeModels{responses: []*genai.GenerateContentResponse{textResponse(`{"answer": ""}`)}},
		wantExtraction: true,
		wantCalls:      1,
	}, {
		name:           "no candidates",
		models:         &fakeModels{responses: []*genai.GenerateContentResponse{{}}},
		wantExtraction: true,
		wantCalls:      1,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestExecutor(t, tt.models).Execute(context.Background(), &question{Text: "q"})
			if err == nil {
				t.Fatalf("Execute() = %+v, want error", got)
			}
			if got != nil {
				t.Errorf("Execute() value = %+v, want nil", got)
			}
			if result.IsExtractionError(err) != tt.wantExtraction {
				t.Errorf("IsExtractionError(%v) = %t, want %t", err, !tt.wantExtraction, tt.wantExtraction)
			}
			if tt.models.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", tt.models.calls, tt.wantCalls)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	prompt := promptbuilder.MustNewPrompt("{{question}}")
	unbound := promptbuilder.MustNewPrompt("{{fields}}")
	tests := []struct {
		name string
		opt  Option[*question, *answer]
		want string
	}{
		{"claude model", WithModel[*question, *answer]("claude-sonnet-4@20250514"), "Gemini model"},
		{"temperature", WithTemperature[*question, *answer](2.5), "temperature"},
		{"tokens", WithMaxOutputTokens[*question, *answer](0), "positive"},
		{"too many tokens", WithMaxOutputTokens[*question, *answer](40000), "exceeds"},
		{"nil system", WithSystemInstructions[*question, *answer](nil), "nil"},
		{"unbound system", WithSystemInstructions[*question, *answer](unbound), "fields"},
		{"mime", WithResponseMIMEType[*question, *answer]("text/html"), "MIME"},
		{"nil schema", WithResponseSchema[*question, *answer](nil), "nil"},
		{"retry", WithRetryConfig[*question, *answer](retry.Config{MaxRetries: -1}), "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&fakeModels{}, prompt, tt.opt)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("New() = %v, want error containing %q", err, tt.want)
			}
		})
	}

	if _, err := New[*question, *answer](nil, prompt); err == nil {
		t.Error("New(nil models) = nil, want error")
	}
	if _, err := New[*question, *answer](&fakeModels{}, nil); err == nil {
		t.Error("New(nil prompt) = nil, want error")
	}
}

func TestIsRetryableVertexError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{genai.APIError{Code: 429}, true},
		{genai.APIError{Code: 503}, true},
		{genai.APIError{Code: 400, Message: "invalid"}, false},
		{errors.New("RESOURCE_EXHAUSTED"), true},
		{errors.New("permission denied"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := isRetryableVertexError(tt.err); got != tt.want {
			t.Errorf("isRetryableVertexError(%v) = %t, want %t", tt.err, got, tt.want)
		}
	}
}
