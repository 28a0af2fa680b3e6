/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package promptbuilder assembles LLM prompts from developer-authored templates
and request data without letting the data rewrite the template.

Templates are literal strings with {{name}} placeholders. The template is
tokenized once, when the prompt is created, so a bound value that itself
contains "{{...}}" is emitted verbatim and never substituted again.

	var verify = promptbuilder.MustNewPrompt(`STUDY CRITERIA JSON:
	{{criteria}}

	RETRIEVED EVIDENCE SNIPPETS:
	{{evidence}}`)

	p, err := verify.BindJSON("criteria", study)
	if err != nil {
		return err
	}
	p, err = p.BindList("evidence", snippets)
	if err != nil {
		return err
	}
	text, err := p.Build()

Every Bind method returns a new Prompt; the receiver is left untouched so a
package-level template can be shared by concurrent requests. Build fails if
any placeholder is still unbound.

Request types implement Bindable so executors can bind them generically.
*/
package promptbuilder
