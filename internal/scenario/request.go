package scenario

import "strings"

// IssueType selects the output grammar.
type IssueType string

const (
	IssueTypeFeature IssueType = "Feature"
	IssueTypeBug     IssueType = "Bug"
)

// ParseIssueType is total: anything other than "Bug" selects the Feature grammar.
func ParseIssueType(s string) IssueType {
	if strings.TrimSpace(s) == string(IssueTypeBug) {
		return IssueTypeBug
	}
	return IssueTypeFeature
}

// GenerationRequest describes a page element or selection. Every field is
// optional.
type GenerationRequest struct {
	URL          string
	Title        string
	ElementKey   string
	Role         string
	Name         string // accessible name
	SelectedText string
	ImageName    string
	OuterHTML    string
	ThenLine     string // suggested Then step from the caller
	IssueType    string
	Provider     string
	Model        string
	OllamaURL    string
}
