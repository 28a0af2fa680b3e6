/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package criteria defines the vocabulary shared by the screening pipeline:
the closed set of patient fields, the comparison operators, study criteria,
patient records and eligibility decisions.

# Fields and Operators

Criteria may only reference the fields the patient dataset models:

	age, gender, egfr, insulin_user, current_medications, comorbidities

Each field has a Kind. Numeric fields (age, egfr) compare parsed floats,
insulin_user compares truthiness, and the remaining fields are free text.

The operator set is closed:

	>=  <=  >  <  ==  contains_any  contains_all  not_contains_any

The three contains* operators take a list value; every other operator takes a
scalar. A criterion whose value shape does not match its operator is a
configuration defect and is reported as a *MalformedCriterionError by
Validate rather than being interpreted at screening time.

# Loading Criteria

StudyCriteria round-trips through JSON and YAML:

	study_id: DM-040
	title: Type 2 diabetes, non-insulin
	inclusion:
	  - field: comorbidities
	    op: contains_any
	    value: [type 2 diabetes, t2d]
	  - field: age
	    op: ">="
	    value: 40
	exclusion:
	  - field: comorbidities
	    op: contains_any
	    value: [type 1 diabetes, t1d]

Use Load or LoadFile to decode and validate in one step.
*/
package criteria
