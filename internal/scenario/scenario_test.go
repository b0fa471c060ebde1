package scenario_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"scenariogen.app/server/internal/scenario"
)

var _ = Describe("ParseIssueType", func() {
	DescribeTable("is total with Feature as default",
		func(input string, expected scenario.IssueType) {
			Expect(scenario.ParseIssueType(input)).To(Equal(expected))
		},
		Entry("empty", "", scenario.IssueTypeFeature),
		Entry("Feature", "Feature", scenario.IssueTypeFeature),
		Entry("Bug", "Bug", scenario.IssueTypeBug),
		Entry("Bug with padding", " Bug ", scenario.IssueTypeBug),
		Entry("lowercase bug is not recognised", "bug", scenario.IssueTypeFeature),
		Entry("unknown", "Chore", scenario.IssueTypeFeature),
	)
})

var _ = Describe("Resolve", func() {
	It("resolves an empty request to the literal fallbacks", func() {
		rc := scenario.Resolve(scenario.GenerationRequest{})

		Expect(rc.PageTitle).To(Equal("current page"))
		Expect(rc.LinkName).To(Equal("target link"))
		Expect(rc.RoleLabel).To(Equal("link"))
		Expect(rc.InspectionContext).To(Equal("page context"))
		Expect(rc.NameFallback).To(BeTrue())
		Expect(rc.IssueType).To(Equal(scenario.IssueTypeFeature))
	})

	DescribeTable("link name precedence",
		func(name, selected, expected string) {
			rc := scenario.Resolve(scenario.GenerationRequest{Name: name, SelectedText: selected})
			Expect(rc.LinkName).To(Equal(expected))
		},
		Entry("accessible name wins", "Pricing", "Start free trial", "Pricing"),
		Entry("selected text when name is empty", "", "Start free trial", "Start free trial"),
		Entry("whitespace name counts as empty", "   ", "Start free trial", "Start free trial"),
		Entry("literal when both empty", "", "", "target link"),
	)

	DescribeTable("inspection context precedence",
		func(req scenario.GenerationRequest, expected string) {
			Expect(scenario.Resolve(req).InspectionContext).To(Equal(expected))
		},
		Entry("selected text first",
			scenario.GenerationRequest{SelectedText: "Buy", ElementKey: "a#buy", URL: "https://x"}, "Buy"),
		Entry("element key second",
			scenario.GenerationRequest{ElementKey: "a#buy", URL: "https://x"}, "a#buy"),
		Entry("url third",
			scenario.GenerationRequest{URL: "https://x"}, "https://x"),
		Entry("literal last",
			scenario.GenerationRequest{}, "page context"),
	)

	It("uses the provided title and role", func() {
		rc := scenario.Resolve(scenario.GenerationRequest{Title: " Pricing ", Role: "button", Name: "Go"})

		Expect(rc.PageTitle).To(Equal("Pricing"))
		Expect(rc.RoleLabel).To(Equal("button"))
		Expect(rc.NameFallback).To(BeFalse())
	})

	It("is deterministic", func() {
		req := scenario.GenerationRequest{Title: "Pricing", SelectedText: "Start free trial", URL: "https://x"}
		Expect(scenario.Resolve(req)).To(Equal(scenario.Resolve(req)))
	})
})

var _ = Describe("Compose", func() {
	var pricing scenario.GenerationRequest

	BeforeEach(func() {
		pricing = scenario.GenerationRequest{
			URL:   "https://example.com/pricing",
			Title: "Pricing",
			Name:  "Start free trial",
		}
	})

	It("produces byte-identical prompts for identical input", func() {
		first := scenario.Compose(scenario.Resolve(pricing), scenario.IssueTypeFeature)
		second := scenario.Compose(scenario.Resolve(pricing), scenario.IssueTypeFeature)
		Expect(first).To(Equal(second))
	})

	Describe("Feature grammar", func() {
		It("requests one Feature and one Scenario with the required steps", func() {
			p := scenario.Compose(scenario.Resolve(pricing), scenario.IssueTypeFeature)

			Expect(strings.Count(p.System, "\nFeature: ")).To(Equal(1))
			Expect(strings.Count(p.System, "\nScenario: ")).To(Equal(1))
			Expect(p.System).To(ContainSubstring(`Given I am on the "Pricing" page`))
			Expect(p.System).To(ContainSubstring(`And the link "Start free trial" is expected to be visible`))
			Expect(p.System).To(ContainSubstring(`When I inspect the page content for "https://example.com/pricing"`))
			Expect(p.System).To(ContainSubstring(`Then the link "Start free trial" should be visible`))
			Expect(p.System).To(ContainSubstring("No markdown"))
			Expect(p.System).NotTo(ContainSubstring("Bug Summary:"))
		})

		It("omits the role step when an accessible name is present", func() {
			p := scenario.Compose(scenario.Resolve(pricing), scenario.IssueTypeFeature)
			Expect(p.System).NotTo(ContainSubstring("elements with role"))
		})

		It("adds the role step when the name fell through to a fallback", func() {
			req := scenario.GenerationRequest{Title: "Pricing", SelectedText: "Start free trial"}
			p := scenario.Compose(scenario.Resolve(req), scenario.IssueTypeFeature)

			Expect(p.System).To(ContainSubstring(`Then the link "Start free trial" should be visible`))
			Expect(p.System).To(ContainSubstring(`And elements with role "link" should be visible`))
		})

		It("falls back to the Feature grammar for an unrecognised issue type", func() {
			req := pricing
			req.IssueType = "Epic"
			rc := scenario.Resolve(req)
			p := scenario.Compose(rc, rc.IssueType)

			Expect(p.System).To(ContainSubstring("Scenario: Verify page title context and link visibility"))
			Expect(p.User).To(ContainSubstring("Issue type: Feature"))
		})

		It("quotes page text verbatim without escaping", func() {
			req := scenario.GenerationRequest{
				Title: `Say "Hi"`,
				Name:  "Café\u00a0menu",
				URL:   `https://example.com/a\b`,
			}
			p := scenario.Compose(scenario.Resolve(req), scenario.IssueTypeFeature)

			Expect(p.System).To(ContainSubstring(`Given I am on the "Say "Hi"" page`))
			Expect(p.System).To(ContainSubstring("Then the link \"Café\u00a0menu\" should be visible"))
			Expect(p.System).To(ContainSubstring(`When I inspect the page content for "https://example.com/a\b"`))
			Expect(p.System).NotTo(ContainSubstring(`\"`))
			Expect(p.System).NotTo(ContainSubstring(`\u00a0`))
		})
	})

	Describe("Bug grammar", func() {
		It("requests the five literal sections in order", func() {
			p := scenario.Compose(scenario.Resolve(pricing), scenario.IssueTypeBug)

			headers := []string{"Bug Summary:", "\n\nObserved:", "\n\nExpected:", "\n\nSteps to Reproduce:\n1. ", "\n2. ", "\n3. "}
			last := -1
			for _, h := range headers {
				idx := strings.Index(p.System, h)
				Expect(idx).To(BeNumerically(">", last), "header %q out of order", h)
				last = idx
			}
			Expect(p.System).To(ContainSubstring(scenario.BugStub))
			Expect(p.System).NotTo(ContainSubstring("Scenario:"))
		})
	})

	It("restates every field as a labeled line in the user instruction", func() {
		req := scenario.GenerationRequest{
			URL:          "https://example.com",
			Title:        "Home",
			ElementKey:   "a#cta",
			Role:         "button",
			Name:         "Sign up",
			SelectedText: "Sign up now",
			ImageName:    "hero.png",
			OuterHTML:    "<a id=\"cta\">Sign up</a>",
			ThenLine:     "Then I see the form",
			IssueType:    "Bug",
		}
		rc := scenario.Resolve(req)
		p := scenario.Compose(rc, rc.IssueType)

		for _, line := range []string{
			"URL: https://example.com",
			"Title: Home",
			"Element key: a#cta",
			"Role: button",
			"Accessible name: Sign up",
			"Selected text: Sign up now",
			"Image name: hero.png",
			"Outer HTML: <a id=\"cta\">Sign up</a>",
			"Suggested Then: Then I see the form",
			"Issue type: Bug",
			"Page title context: Home",
			"Link name: Sign up",
			"Role label: button",
			"Inspection context: Sign up now",
			"Authoring rules:",
		} {
			Expect(strings.Split(p.User, "\n")).To(ContainElement(line))
		}
	})

	It("converts to the backend prompt unchanged", func() {
		p := scenario.Compose(scenario.Resolve(pricing), scenario.IssueTypeFeature)
		Expect(p.LLM().System).To(Equal(p.System))
		Expect(p.LLM().User).To(Equal(p.User))
	})
})

var _ = Describe("Normalize", func() {
	It("trims the answer", func() {
		text, err := scenario.Normalize("\n  Feature: x\nScenario: y  \n")
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Feature: x\nScenario: y"))
	})

	DescribeTable("rejects blank answers",
		func(raw string) {
			_, err := scenario.Normalize(raw)
			Expect(err).To(HaveOccurred())
			Expect(scenario.FailureKindOf(err)).To(Equal(scenario.FailureEmptyResult))
			Expect(err).To(MatchError("Empty response"))
		},
		Entry("empty", ""),
		Entry("spaces", "   "),
		Entry("newlines and tabs", "\n\t\n"),
	)
})

var _ = Describe("FailureKindOf", func() {
	It("reads the kind through wrapping", func() {
		err := errors.Join(errors.New("ctx"), &scenario.Failure{Kind: scenario.FailureUpstream})
		Expect(scenario.FailureKindOf(err)).To(Equal(scenario.FailureUpstream))
	})

	It("treats foreign errors as internal", func() {
		Expect(scenario.FailureKindOf(errors.New("boom"))).To(Equal(scenario.FailureInternal))
	})
})
