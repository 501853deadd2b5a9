// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

const (
	outlineFile    = "outline.yaml"
	referencesFile = "references.yaml"
)

// sectionFilePattern matches numbered section files: NN-slug.md.
var sectionFilePattern = regexp.MustCompile(`^\d{2}-.+\.md$`)

// citationPattern matches inline citations: [Key] or [Key1; Key2].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// LoadOutline reads outline.yaml from a paper project directory.
func LoadOutline(projectDir string) (*types.Outline, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, outlineFile))
	if err != nil {
		return nil, fmt.Errorf("reading outline: %w", err)
	}
	var outline types.Outline
	if err := yaml.Unmarshal(data, &outline); err != nil {
		return nil, fmt.Errorf("parsing outline: %w", err)
	}
	return &outline, nil
}

// LoadReferences reads references.yaml from a paper project directory.
func LoadReferences(projectDir string) (*types.ReferencesFile, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, referencesFile))
	if err != nil {
		return nil, fmt.Errorf("reading references: %w", err)
	}
	var refs types.ReferencesFile
	if err := yaml.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("parsing references: %w", err)
	}
	return &refs, nil
}

// DraftSection generates the Markdown draft for one outline section,
// identified by its two-digit number. The outline and reference list
// constrain the prompt; citation keys outside the reference list are
// reported as a validation error alongside the draft text.
func DraftSection(ctx context.Context, backend Backend, projectDir, sectionNumber string, cfg types.GenerationConfig) (string, error) {
	outline, err := LoadOutline(projectDir)
	if err != nil {
		return "", err
	}

	section, ok := findSection(outline, sectionNumber)
	if !ok {
		return "", fmt.Errorf("section %s not found in outline", sectionNumber)
	}

	// References are optional for early drafts.
	refs, err := LoadReferences(projectDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		refs = &types.ReferencesFile{}
	}

	prompt, err := renderDraftPrompt(outline, section, refs)
	if err != nil {
		return "", fmt.Errorf("rendering draft prompt: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	text, err := callWithRetry(ctx, backend, prompt, maxRetries)
	if err != nil {
		return "", fmt.Errorf("drafting section %s: %w", sectionNumber, err)
	}

	if unknown := unknownCitations(text, refs); len(unknown) > 0 {
		return text, fmt.Errorf("draft cites unknown keys: %s", strings.Join(unknown, ", "))
	}

	return text, nil
}

// findSection locates an outline section by number, tolerating a bare
// number against the section's file prefix.
func findSection(outline *types.Outline, number string) (types.OutlineSection, bool) {
	for _, s := range outline.Sections {
		if s.Number == number || strings.HasPrefix(s.File, number+"-") {
			return s, true
		}
	}
	return types.OutlineSection{}, false
}

// SectionFiles returns the ordered list of numbered section file paths
// (NN-*.md) in a paper project directory.
func SectionFiles(projectDir string) ([]string, error) {
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, fmt.Errorf("reading project directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sectionFilePattern.MatchString(e.Name()) {
			files = append(files, filepath.Join(projectDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// ValidateCitations scans section files for inline citation keys and returns
// any keys that have no corresponding entry in references.yaml.
func ValidateCitations(projectDir string) ([]string, error) {
	refs, err := LoadReferences(projectDir)
	if err != nil {
		return nil, err
	}

	files, err := SectionFiles(projectDir)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", filepath.Base(f), err)
		}
		text.Write(data)
		text.WriteString("\n")
	}

	return unknownCitations(text.String(), refs), nil
}

// unknownCitations returns citation keys used in text that are missing from
// the reference list, sorted and deduplicated.
func unknownCitations(text string, refs *types.ReferencesFile) []string {
	knownKeys := make(map[string]bool)
	if refs != nil {
		for _, r := range refs.Papers {
			knownKeys[r.CitationKey] = true
		}
	}

	seen := make(map[string]bool)
	for _, key := range extractCitationKeys(text) {
		if !knownKeys[key] {
			seen[key] = true
		}
	}

	var missing []string
	for key := range seen {
		missing = append(missing, key)
	}
	sort.Strings(missing)
	return missing
}

// extractCitationKeys finds all citation keys in text. It handles both single
// citations [Key] and multi-citations [Key1; Key2].
func extractCitationKeys(text string) []string {
	matches := citationPattern.FindAllStringSubmatch(text, -1)
	var keys []string
	for _, m := range matches {
		for _, p := range strings.Split(m[1], ";") {
			key := strings.TrimSpace(p)
			if key != "" && isCitationKey(key) {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// isCitationKey checks whether a string looks like a citation key (AuthorYear
// format). It rejects strings that look like Markdown links, image references,
// or other bracket content.
func isCitationKey(s string) bool {
	// Keys are alphanumeric with optional hyphens or underscores, and must
	// mix at least one letter with one digit.
	hasLetter := false
	hasDigit := false
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '-', c == '_':
			// allowed
		default:
			return false
		}
	}
	return hasLetter && hasDigit
}

// GenerateBibTeX produces BibTeX content from a reference list.
func GenerateBibTeX(refs *types.ReferencesFile) string {
	var b strings.Builder
	for _, r := range refs.Papers {
		fmt.Fprintf(&b, "@article{%s,\n", r.CitationKey)
		fmt.Fprintf(&b, "  title = {%s},\n", r.Title)
		if len(r.Authors) > 0 {
			fmt.Fprintf(&b, "  author = {%s},\n", strings.Join(r.Authors, " and "))
		}
		if r.Year > 0 {
			fmt.Fprintf(&b, "  year = {%d},\n", r.Year)
		}
		if r.Venue != "" {
			fmt.Fprintf(&b, "  journal = {%s},\n", r.Venue)
		}
		if r.URL != "" {
			fmt.Fprintf(&b, "  url = {%s},\n", r.URL)
		}
		fmt.Fprintf(&b, "}\n\n")
	}
	return b.String()
}
