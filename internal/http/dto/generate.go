package dto

import "scenariogen.app/server/internal/scenario"

// GenerateScenarioRequest is the request body of POST /generate-scenario.
// Every field is optional.
type GenerateScenarioRequest struct {
	URL          string `json:"url,omitempty" jsonschema:"description=Page URL"`
	Title        string `json:"title,omitempty" jsonschema:"description=Page title"`
	ElementKey   string `json:"elementKey,omitempty" jsonschema:"description=Stable key or selector of the element"`
	Role         string `json:"role,omitempty" jsonschema:"description=ARIA role of the element"`
	Name         string `json:"name,omitempty" jsonschema:"description=Accessible name of the element"`
	SelectedText string `json:"selectedText,omitempty" jsonschema:"description=Text selected on the page"`
	ImageName    string `json:"imageName,omitempty" jsonschema:"description=Name of a captured screenshot"`
	OuterHTML    string `json:"outerHTML,omitempty" jsonschema:"description=Outer HTML of the element"`
	ThenLine     string `json:"thenLine,omitempty" jsonschema:"description=Suggested Then step"`
	IssueType    string `json:"issueType,omitempty" jsonschema:"enum=Feature,enum=Bug,default=Feature"`
	Provider     string `json:"provider,omitempty" jsonschema:"enum=openai,enum=ollama,default=openai"`
	Model        string `json:"model,omitempty" jsonschema:"description=Backend model; defaults per provider"`
	OllamaURL    string `json:"ollamaUrl,omitempty" jsonschema:"description=Ollama base URL; defaults to the server setting"`
}

func (r GenerateScenarioRequest) ToDomain() scenario.GenerationRequest {
	return scenario.GenerationRequest{
		URL:          r.URL,
		Title:        r.Title,
		ElementKey:   r.ElementKey,
		Role:         r.Role,
		Name:         r.Name,
		SelectedText: r.SelectedText,
		ImageName:    r.ImageName,
		OuterHTML:    r.OuterHTML,
		ThenLine:     r.ThenLine,
		IssueType:    r.IssueType,
		Provider:     r.Provider,
		Model:        r.Model,
		OllamaURL:    r.OllamaURL,
	}
}

type GenerateScenarioResponse struct {
	OK       bool   `json:"ok"`
	Scenario string `json:"scenario,omitempty"`
	Error    string `json:"error,omitempty"`
}

func Success(text string) GenerateScenarioResponse {
	return GenerateScenarioResponse{OK: true, Scenario: text}
}

func Failure(msg string) GenerateScenarioResponse {
	return GenerateScenarioResponse{OK: false, Error: msg}
}
