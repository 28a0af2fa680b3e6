/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import "chainguard.dev/trialscreen/agents/promptbuilder"

var systemPrompt = promptbuilder.MustNewPrompt(`You are an evaluator (LLM-as-a-judge) for a clinical trial prescreening system.
You must score the model output using ONLY the provided inputs.
Be strict about hallucinations: referencing missing fields (HbA1c, pregnancy, CGM history, smartphone, etc.) as if known should increase hallucination_risk.
Score evidence_relevance by whether the evidence snippets concern the criteria that decided the outcome.
Return JSON matching the schema exactly.`)

var userPrompt = promptbuilder.MustNewPrompt(`STUDY CRITERIA JSON:
{{criteria}}

PATIENT FIELDS:
{{patient}}

EVIDENCE SNIPPETS:
{{evidence}}

MODEL OUTPUT (match_result):
{{match_result}}

Task:
Provide 1-5 scores and short notes.`)
