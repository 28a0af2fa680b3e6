/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package criteriaparser

import (
	"chainguard.dev/trialscreen/agents/promptbuilder"
	"chainguard.dev/trialscreen/screening/criteria"
)

var systemPrompt = promptbuilder.Must(promptbuilder.MustNewPrompt(`You convert clinical trial inclusion/exclusion criteria into STRICT JSON.
You MUST only use fields from this allowed list:
{{allowed_fields}}

Rules:
- If a criterion is not available in the dataset (e.g., pregnancy, HbA1c, smartphone, CGM history), do NOT invent a field.
  Instead: omit it from criteria and mention it as missing in description or in a note.
- Conservative mapping examples:
  - "Type 2 Diabetes" -> comorbidities contains_any ["type 2 diabetes", "t2d", "diabetes mellitus type 2"]
  - "Type 1 Diabetes" -> exclusion: comorbidities contains_any ["type 1 diabetes", "t1d"]
  - "Non-insulin treated" -> inclusion: insulin_user == false
  - "Age between 40 and 70" -> inclusion: age >= 40 AND age <= 70
  - "High risk cardiovascular" -> proxy: comorbidities contains_any
    ["coronary artery disease","cad","myocardial infarction","mi","stroke","heart failure","hf","hypertension"]
    (Add a note that it's a proxy.)
Output must match the provided schema exactly.`).BindJSON("allowed_fields", criteria.Fields))

var userPrompt = promptbuilder.MustNewPrompt(`Convert this trial into StudyCriteria JSON.

TRIAL TEXT:
{{study_text}}`)
