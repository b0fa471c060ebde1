package scenario

import "strings"

const (
	fallbackPageTitle   = "current page"
	fallbackLinkName    = "target link"
	fallbackRoleLabel   = "link"
	fallbackInspectText = "page context"
)

// ResolvedContext is the fully disambiguated input to prompt composition.
// Build it with Resolve; it is never mutated afterwards.
type ResolvedContext struct {
	// Raw fields, whitespace-trimmed, restated verbatim in the prompt.
	URL          string
	Title        string
	ElementKey   string
	Role         string
	Name         string
	SelectedText string
	ImageName    string
	OuterHTML    string
	ThenLine     string
	IssueType    IssueType

	PageTitle         string
	LinkName          string
	RoleLabel         string
	InspectionContext string
	// NameFallback is set when no accessible name was given, which makes the
	// role-based visibility step mandatory.
	NameFallback bool
}

// Resolve applies the fixed precedence chains. It cannot fail: an empty
// request resolves to the literal fallbacks.
func Resolve(req GenerationRequest) ResolvedContext {
	rc := ResolvedContext{
		URL:          strings.TrimSpace(req.URL),
		Title:        strings.TrimSpace(req.Title),
		ElementKey:   strings.TrimSpace(req.ElementKey),
		Role:         strings.TrimSpace(req.Role),
		Name:         strings.TrimSpace(req.Name),
		SelectedText: strings.TrimSpace(req.SelectedText),
		ImageName:    strings.TrimSpace(req.ImageName),
		OuterHTML:    strings.TrimSpace(req.OuterHTML),
		ThenLine:     strings.TrimSpace(req.ThenLine),
		IssueType:    ParseIssueType(req.IssueType),
	}

	rc.PageTitle = resolvePageTitle(rc)
	rc.LinkName = resolveLinkName(rc)
	rc.RoleLabel = resolveRoleLabel(rc)
	rc.InspectionContext = resolveInspectionContext(rc)
	rc.NameFallback = rc.Name == ""

	return rc
}

func resolvePageTitle(rc ResolvedContext) string {
	return firstNonEmpty(rc.Title, fallbackPageTitle)
}

func resolveLinkName(rc ResolvedContext) string {
	return firstNonEmpty(rc.Name, rc.SelectedText, fallbackLinkName)
}

func resolveRoleLabel(rc ResolvedContext) string {
	return firstNonEmpty(rc.Role, fallbackRoleLabel)
}

func resolveInspectionContext(rc ResolvedContext) string {
	return firstNonEmpty(rc.SelectedText, rc.ElementKey, rc.URL, fallbackInspectText)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
