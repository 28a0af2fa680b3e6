/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package verifier

import "chainguard.dev/trialscreen/agents/promptbuilder"

var systemPrompt = promptbuilder.MustNewPrompt(`You are a strict verifier for clinical trial prescreening decisions.
You must:
- Check whether the RULE-BASED decision is consistent with the provided criteria and patient data.
- Only use the provided patient fields and retrieved evidence.
- Do NOT guess missing medical facts. If key info is missing to decide safely, you should suggest 'uncertain'.
Return JSON matching the schema exactly.`)

var userPrompt = promptbuilder.MustNewPrompt(`STUDY CRITERIA JSON:
{{criteria}}

PATIENT FIELDS:
{{patient}}

REQUIRED EVIDENCE FIELDS:
{{required_evidence}}

RETRIEVED EVIDENCE SNIPPETS:
{{evidence}}

RULE-BASED OUTPUT:
decision = {{rule_decision}}
reasons:
{{rule_reasons}}

Task:
1) Decide if you AGREE with the rule-based decision.
2) If you DISAGREE, provide suggested_decision.
3) If information is missing to decide safely, suggested_decision must be "uncertain".
   A blank required evidence field counts as missing information.
4) Add short notes explaining the check.`)
