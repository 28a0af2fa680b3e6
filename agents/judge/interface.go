/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/screening/criteria"
	"chainguard.dev/trialscreen/screening/matcher"
)

const (
	// MinScore and MaxScore bound every rubric score.
	MinScore = 1
	MaxScore = 5
)

// Request contains everything the judge may look at.
type Request struct {
	Patient  criteria.Patient
	Criteria *criteria.StudyCriteria
	Result   *matcher.MatchResult
	// Evidence defaults to Result.Evidence when empty.
	Evidence []string
}

// Bind implements promptbuilder.Bindable.
func (r *Request) Bind(p *promptbuilder.Prompt) (*promptbuilder.Prompt, error) {
	evidence := r.Evidence
	if len(evidence) == 0 && r.Result != nil {
		evidence = r.Result.Evidence
	}

	var err error
	if p, err = p.BindJSON("criteria", r.Criteria); err != nil {
		return nil, err
	}
	if p, err = p.BindJSON("patient", r.Patient.Fields()); err != nil {
		return nil, err
	}
	if p, err = p.BindList("evidence", evidence); err != nil {
		return nil, err
	}
	return p.BindJSON("match_result", r.Result)
}

func (r *Request) validate() error {
	var errs []error
	if r.Criteria == nil {
		errs = append(errs, errors.New("criteria is required"))
	}
	if r.Result == nil {
		errs = append(errs, errors.New("match result is required"))
	}
	if r.Patient.ID() == "" {
		errs = append(errs, errors.New("patient is required"))
	}
	return errors.Join(errs...)
}

// Judgement contains the rubric scores for one match result.
type Judgement struct {
	ConsistencyWithCriteria    int `json:"consistency_with_criteria" jsonschema:"required,minimum=1,maximum=5,description=Is the final decision consistent with the criteria and patient data?"`
	Groundedness               int `json:"groundedness" jsonschema:"required,minimum=1,maximum=5,description=Are reasons supported by provided evidence without hallucination?"`
	UncertaintyAppropriateness int `json:"uncertainty_appropriateness" jsonschema:"required,minimum=1,maximum=5,description=If uncertain: is that justified? If not uncertain: was that safe?"`
	HallucinationRisk          int `json:"hallucination_risk" jsonschema:"required,minimum=1,maximum=5,description=Risk of made-up facts from 1 (low) to 5 (high)"`
	EvidenceRelevance          int `json:"evidence_relevance" jsonschema:"required,minimum=1,maximum=5,description=Do the retrieved snippets bear on the criteria that decided the outcome?"`

	Notes []string `json:"notes" jsonschema:"description=Short notes"`
}

// Scores returns the rubric scores keyed by their JSON name.
func (j *Judgement) Scores() map[string]int {
	return map[string]int{
		"consistency_with_criteria":   j.ConsistencyWithCriteria,
		"groundedness":                j.Groundedness,
		"uncertainty_appropriateness": j.UncertaintyAppropriateness,
		"hallucination_risk":          j.HallucinationRisk,
		"evidence_relevance":          j.EvidenceRelevance,
	}
}

// Validate implements result.Validator.
func (j *Judgement) Validate() error {
	if j == nil {
		return errors.New("judgement is empty")
	}
	var errs []error
	for _, name := range Dimensions {
		if v := j.Scores()[name]; v < MinScore || v > MaxScore {
			errs = append(errs, fmt.Errorf("%s: score %d is out of range [%d, %d]", name, v, MinScore, MaxScore))
		}
	}
	return errors.Join(errs...)
}

// Dimensions lists the rubric names in report order.
var Dimensions = []string{
	"consistency_with_criteria",
	"groundedness",
	"uncertainty_appropriateness",
	"hallucination_risk",
	"evidence_relevance",
}

// Score is the mean of the rubric scores normalised to [0, 1], with
// hallucination risk inverted so that 1 is always ideal.
func (j *Judgement) Score() float64 {
	scores := j.Scores()
	var sum float64
	for _, name := range Dimensions {
		v := scores[name]
		if name == "hallucination_risk" {
			v = MaxScore + MinScore - v
		}
		sum += float64(v-MinScore) / float64(MaxScore-MinScore)
	}
	return sum / float64(len(Dimensions))
}

// String returns a one-line summary followed by the notes.
func (j *Judgement) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Grade: %.2f (consistency=%d groundedness=%d uncertainty=%d hallucination_risk=%d evidence=%d)",
		j.Score(), j.ConsistencyWithCriteria, j.Groundedness, j.UncertaintyAppropriateness, j.HallucinationRisk, j.EvidenceRelevance)
	for _, n := range j.Notes {
		fmt.Fprintf(&sb, "\n  Note: %s", n)
	}
	return sb.String()
}

// Interface defines the contract for judge implementations.
type Interface interface {
	Judge(ctx context.Context, request *Request) (*Judgement, error)
}
