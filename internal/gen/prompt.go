// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// promptPaperCap limits how many library papers go into the ideas prompt.
const promptPaperCap = 5

// abstractSnippetLen bounds per-paper abstract text in prompt context.
const abstractSnippetLen = 200

// ideasPromptTmpl asks for a fixed count of ideas in a labeled block format
// that parseIdeas understands.
var ideasPromptTmpl = template.Must(template.New("ideas").Parse(`You are a creative research scientist generating {{.Count}} novel research ideas on the topic below, grounded in the listed papers.

TOPIC:
{{.Topic}}

RELATED PAPERS:
{{.Papers}}
TASK:
Generate {{.Count}} novel research ideas that build upon, combine, or extend the work in these papers. Be specific and concrete.

FORMAT:
Structure your response exactly as follows:

Idea 1:
Title: [short name for the idea]
Description: [detailed description]
Sources: [titles of the papers it builds on]
Rationale: [why the idea is novel and valuable]

Idea 2:
Title: ...

Focus on specificity, feasibility, and scientific value. Do not add text outside the idea blocks.
`))

// draftPromptTmpl asks for one Markdown section constrained to the known
// citation keys.
var draftPromptTmpl = template.Must(template.New("draft").Parse(`You are an academic writing assistant drafting one section of a research paper.

PAPER: {{.PaperTitle}}
TOPIC: {{.Topic}}

FULL OUTLINE:
{{.Outline}}
SECTION TO DRAFT: {{.SectionTitle}}
{{.SectionDescription}}

AVAILABLE REFERENCES:
{{.References}}
Write the section in Markdown, opening with a "## {{.SectionTitle}}" heading. Cite references inline with their bracketed keys, [Key] for one or [Key1; Key2] for several, and cite only keys from the list above. Do not invent references and do not draft any other section.
`))

func renderIdeasPrompt(topic string, papers []types.LibraryEntry, count int) (string, error) {
	var ctx strings.Builder
	for i, p := range papers {
		if i >= promptPaperCap {
			break
		}
		fmt.Fprintf(&ctx, "%d. %s", i+1, p.Title)
		if p.Year != "" {
			fmt.Fprintf(&ctx, " (%s)", p.Year)
		}
		if p.Abstract != "" {
			fmt.Fprintf(&ctx, " - %s", snippet(p.Abstract, abstractSnippetLen))
		}
		ctx.WriteString("\n")
	}
	if ctx.Len() == 0 {
		ctx.WriteString("(no papers in the library yet)\n")
	}

	var buf bytes.Buffer
	err := ideasPromptTmpl.Execute(&buf, struct {
		Topic  string
		Papers string
		Count  int
	}{Topic: topic, Papers: ctx.String(), Count: count})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderDraftPrompt(outline *types.Outline, section types.OutlineSection, refs *types.ReferencesFile) (string, error) {
	var outlineText strings.Builder
	for _, s := range outline.Sections {
		fmt.Fprintf(&outlineText, "%s. %s - %s\n", s.Number, s.Title, s.Description)
	}

	var refText strings.Builder
	if refs != nil {
		for _, r := range refs.Papers {
			fmt.Fprintf(&refText, "- [%s] %s", r.CitationKey, r.Title)
			if r.Year > 0 {
				fmt.Fprintf(&refText, " (%d)", r.Year)
			}
			refText.WriteString("\n")
		}
	}
	if refText.Len() == 0 {
		refText.WriteString("(none; write without citations)\n")
	}

	var buf bytes.Buffer
	err := draftPromptTmpl.Execute(&buf, struct {
		PaperTitle         string
		Topic              string
		Outline            string
		SectionTitle       string
		SectionDescription string
		References         string
	}{
		PaperTitle:         outline.Title,
		Topic:              outline.Topic,
		Outline:            outlineText.String(),
		SectionTitle:       section.Title,
		SectionDescription: section.Description,
		References:         refText.String(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// snippet truncates s to max runes, marking the cut with an ellipsis.
func snippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
