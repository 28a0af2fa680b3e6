/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteriaparser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/trialscreen/agents/metaagent"
	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/agents/result"
	"chainguard.dev/trialscreen/screening/criteria"
	"github.com/chainguard-dev/clog"
)

// Request carries the trial text to convert.
type Request struct {
	StudyText string
}

type trialText struct {
	XMLName struct{} `xml:"trial_text"`
	Content string   `xml:",chardata"`
}

// Bind implements promptbuilder.Bindable. The text is wrapped in an escaped
// element so it cannot close the surrounding instructions.
func (r *Request) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	return p.BindXML("study_text", trialText{Content: r.StudyText})
}

// Parser converts trial descriptions into criteria.
type Parser struct {
	agent metaagent.Agent[*Request, *criteria.StudyCriteria]
}

// New wraps an existing agent.
func New(agent metaagent.Agent[*Request, *criteria.StudyCriteria]) (*Parser, error) {
	if agent == nil {
		return nil, errors.New("agent is required")
	}
	return &Parser{agent: agent}, nil
}

// NewFromConfig builds the agent from cfg with the authoring prompts.
func NewFromConfig(ctx context.Context, cfg metaagent.Config) (*Parser, error) {
	cfg.SystemInstructions = systemPrompt
	cfg.UserPrompt = userPrompt
	cfg.Temperature = 0
	agent, err := metaagent.New[*Request, *criteria.StudyCriteria](ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating criteria parser agent: %w", err)
	}
	return New(agent)
}

// Parse drafts criteria for studyText. The result has passed
// StudyCriteria.Validate and carries a study id.
func (p *Parser) Parse(ctx context.Context, studyText string) (*criteria.StudyCriteria, error) {
	if strings.TrimSpace(studyText) == "" {
		return nil, errors.New("study text is empty")
	}
	sc, err := p.agent.Execute(ctx, &Request{StudyText: studyText})
	if err != nil {
		return nil, fmt.Errorf("parsing study text: %w", err)
	}
	if sc == nil {
		return nil, &result.ExtractionError{Err: errors.New("no criteria returned")}
	}
	if strings.TrimSpace(sc.StudyID) == "" {
		return nil, &result.ExtractionError{Err: errors.New("study_id is required")}
	}

	clog.FromContext(ctx).With("study_id", sc.StudyID).
		With("inclusion", len(sc.Inclusion)).
		With("exclusion", len(sc.Exclusion)).
		Info("Drafted study criteria")
	return sc, nil
}
