package scenario

import (
	"fmt"
	"strings"

	"scenariogen.app/server/common/llm"
)

// BugStub fills every free-text slot of a bug report when the fields carry
// too little signal to infer an issue.
const BugStub = "Issue not enough detail provided"

// Prompt is the composed (system, user) instruction pair.
type Prompt struct {
	System string
	User   string
}

// LLM converts the prompt to the backend-facing form.
func (p Prompt) LLM() llm.Prompt {
	return llm.Prompt{System: p.System, User: p.User}
}

// Compose builds the prompt for the given grammar. It is pure: identical
// inputs produce byte-identical prompts.
func Compose(rc ResolvedContext, issueType IssueType) Prompt {
	var system strings.Builder
	system.WriteString(systemPreamble)

	switch issueType {
	case IssueTypeBug:
		system.WriteString(bugGrammar)
	default:
		writeFeatureGrammar(&system, rc)
	}

	return Prompt{
		System: strings.TrimRight(system.String(), "\n"),
		User:   composeUser(rc, issueType),
	}
}

const systemPreamble = `You are a strict test authoring assistant.
Return plain text only. No markdown, no code fences, no backticks.
`

const bugGrammar = `Issue type is Bug. Output only this exact bug template, with these literal headers in this order:
Bug Summary: ...

Observed: ...

Expected: ...

Steps to Reproduce:
1. ...
2. ...
3. ...
Infer the issue from the selected text, element, outer HTML and title. List at least 3 numbered steps.
If the fields do not carry enough detail to infer a concrete issue, fill every free-text slot with exactly: ` + BugStub + `
Never leave a section blank and never omit a section.
`

func writeFeatureGrammar(b *strings.Builder, rc ResolvedContext) {
	b.WriteString("Issue type is Feature. Output only valid Gherkin with exactly one Feature and exactly one Scenario.\n")
	b.WriteString("The Scenario must include:\n")
	b.WriteString("- a Given step with the page title context.\n")
	b.WriteString("- a Given step saying the link is expected to be visible.\n")
	b.WriteString("- a When step inspecting the page content for the inspection context.\n")
	b.WriteString("- a Then step checking the visible link by exact name.\n")
	if rc.NameFallback {
		b.WriteString("- an And step checking visible elements by role, because no accessible name was provided.\n")
	}
	b.WriteString("Use this exact Feature template shape:\n")
	b.WriteString("Feature: Link visibility on titled page\n")
	b.WriteString("\n")
	b.WriteString("Scenario: Verify page title context and link visibility\n")
	// Values are quoted verbatim: the model must assert the exact page text.
	fmt.Fprintf(b, "Given I am on the \"%s\" page\n", rc.PageTitle)
	fmt.Fprintf(b, "And the link \"%s\" is expected to be visible\n", rc.LinkName)
	fmt.Fprintf(b, "When I inspect the page content for \"%s\"\n", rc.InspectionContext)
	fmt.Fprintf(b, "Then the link \"%s\" should be visible\n", rc.LinkName)
	if rc.NameFallback {
		fmt.Fprintf(b, "And elements with role \"%s\" should be visible\n", rc.RoleLabel)
	}
}

var authoringRules = []string{
	"Authoring rules:",
	"- Use the provided page title in the Given step when available; otherwise use '" + fallbackPageTitle + "'.",
	"- Use accessible name as the link name when available.",
	"- If accessible name is empty and selected text exists, use selected text as the link name.",
	"- If both are empty, use '" + fallbackLinkName + "' as the link name.",
	"- For the role label use provided role when available; otherwise use '" + fallbackRoleLabel + "'.",
	"- The inspection context uses selected text first, then element key, then URL, else '" + fallbackInspectText + "'.",
	"- For Bug output, infer issue details from provided fields or use the stub text exactly when data is weak.",
}

func composeUser(rc ResolvedContext, issueType IssueType) string {
	lines := []string{
		"URL: " + rc.URL,
		"Title: " + rc.Title,
		"Element key: " + rc.ElementKey,
		"Role: " + rc.Role,
		"Accessible name: " + rc.Name,
		"Selected text: " + rc.SelectedText,
		"Image name: " + rc.ImageName,
		"Outer HTML: " + rc.OuterHTML,
		"Suggested Then: " + rc.ThenLine,
		"Issue type: " + string(issueType),
		"Page title context: " + rc.PageTitle,
		"Link name: " + rc.LinkName,
		"Role label: " + rc.RoleLabel,
		"Inspection context: " + rc.InspectionContext,
	}
	lines = append(lines, authoringRules...)
	return strings.Join(lines, "\n")
}
