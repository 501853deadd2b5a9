// Package gen produces research ideas and section drafts through a
// Generative AI backend. Prompts are rendered from templates in
// prompt.go; responses are parsed line-based so a sloppy model answer
// degrades to fewer fields rather than a hard failure.
package gen

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	defaultIdeaCount  = 3
	defaultMaxRetries = 3

	// looseParagraphMin is the minimum length for a paragraph to count as
	// an idea when the structured format is missing from the response.
	looseParagraphMin = 50
)

// ideaBlockPattern splits a response into per-idea blocks on "Idea N:" headings.
var ideaBlockPattern = regexp.MustCompile(`(?i)Idea\s+\d+:`)

// GenerateIdeas produces research ideas for a topic, grounded in the given
// library papers. The papers provide context in the prompt and are matched
// back against each idea's sources line.
func GenerateIdeas(ctx context.Context, backend Backend, topic string, papers []types.LibraryEntry, cfg types.GenerationConfig) ([]types.Idea, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}

	count := cfg.IdeaCount
	if count <= 0 {
		count = defaultIdeaCount
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	prompt, err := renderIdeasPrompt(topic, papers, count)
	if err != nil {
		return nil, fmt.Errorf("rendering ideas prompt: %w", err)
	}

	response, err := callWithRetry(ctx, backend, prompt, maxRetries)
	if err != nil {
		return nil, fmt.Errorf("generating ideas: %w", err)
	}

	ideas := parseIdeas(response, papers)
	if len(ideas) == 0 {
		zap.L().Warn("gen: structured idea format missing, falling back to paragraphs")
		ideas = parseIdeasLoose(response, count)
	}
	if len(ideas) == 0 {
		return nil, fmt.Errorf("no ideas found in model response")
	}

	return ideas, nil
}

// parseIdeas extracts ideas from a response in the requested
// "Idea N: / Title: / Description: / Sources: / Rationale:" format.
// Unlabeled or missing fields stay empty.
func parseIdeas(response string, papers []types.LibraryEntry) []types.Idea {
	blocks := ideaBlockPattern.Split(response, -1)
	if len(blocks) < 2 {
		return nil
	}

	var ideas []types.Idea
	for _, block := range blocks[1:] {
		idea, sourcesText := parseIdeaBlock(block)
		if idea.Summary == "" && idea.Title == "" {
			continue
		}
		idea.Sources = matchSources(sourcesText+" "+idea.Summary, papers)
		ideas = append(ideas, idea)
	}
	return ideas
}

// parseIdeaBlock scans one idea block line by line, accumulating labeled
// fields. The raw sources text is returned separately for title matching.
func parseIdeaBlock(block string) (types.Idea, string) {
	var (
		idea        types.Idea
		sourcesText string
		current     *string
	)

	appendTo := func(dst *string, s string) {
		if *dst == "" {
			*dst = s
		} else if s != "" {
			*dst += "\n" + s
		}
	}

	afterLabel := func(s string) string {
		return strings.TrimSpace(s[strings.Index(s, ":")+1:])
	}

	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		switch {
		case strings.HasPrefix(lower, "title:"):
			current = &idea.Title
			appendTo(current, afterLabel(trimmed))
		case strings.HasPrefix(lower, "description:"):
			current = &idea.Summary
			appendTo(current, afterLabel(trimmed))
		case strings.HasPrefix(lower, "sources:"), strings.HasPrefix(lower, "inspiration:"):
			current = &sourcesText
			appendTo(current, afterLabel(trimmed))
		case strings.HasPrefix(lower, "rationale:"), strings.HasPrefix(lower, "novelty:"):
			current = &idea.Rationale
			appendTo(current, afterLabel(trimmed))
		case trimmed == "":
			current = nil
		case current != nil:
			appendTo(current, trimmed)
		}
	}

	return idea, sourcesText
}

// parseIdeasLoose treats substantial paragraphs as idea summaries, capped
// at count. Last resort for responses that ignore the format entirely.
func parseIdeasLoose(response string, count int) []types.Idea {
	var ideas []types.Idea
	for _, para := range strings.Split(response, "\n\n") {
		para = strings.TrimSpace(para)
		if len(para) <= looseParagraphMin {
			continue
		}
		ideas = append(ideas, types.Idea{Summary: para})
		if len(ideas) >= count {
			break
		}
	}
	return ideas
}

// matchSources returns the titles of library papers mentioned in text,
// in library order. Matching is case-insensitive.
func matchSources(text string, papers []types.LibraryEntry) []string {
	lower := strings.ToLower(text)
	var sources []string
	for _, p := range papers {
		if p.Title == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p.Title)) {
			sources = append(sources, p.Title)
		}
	}
	return sources
}
