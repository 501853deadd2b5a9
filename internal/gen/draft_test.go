// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gen

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// writeFile is a test helper that creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const sampleOutlineYAML = `title: Efficient Retrieval for Science
topic: retrieval-augmented research tools
sections:
  - number: "01"
    title: Introduction
    file: 01-introduction.md
    description: "Motivates the problem."
    status: outline
  - number: "02"
    title: Methods
    file: 02-methods.md
    description: "Describes the pipeline."
    status: outline
`

const sampleReferencesYAML = `papers:
  - citation_key: Vaswani2017
    title: Attention Is All You Need
    authors: [Vaswani, Shazeer]
    year: 2017
    venue: NeurIPS
  - citation_key: Lewis2020
    title: Retrieval-Augmented Generation
    authors: [Lewis]
    year: 2020
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, outlineFile, sampleOutlineYAML)
	writeFile(t, dir, referencesFile, sampleReferencesYAML)
	return dir
}

// --- project loading ---

func TestLoadOutline(t *testing.T) {
	dir := writeProject(t)

	outline, err := LoadOutline(dir)
	if err != nil {
		t.Fatalf("LoadOutline: %v", err)
	}
	if outline.Title != "Efficient Retrieval for Science" {
		t.Errorf("Title = %q", outline.Title)
	}
	if len(outline.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(outline.Sections))
	}
	s := outline.Sections[1]
	if s.Number != "02" || s.Title != "Methods" || s.Status != types.StatusOutline {
		t.Errorf("section = %+v", s)
	}
}

func TestLoadOutlineMissingFile(t *testing.T) {
	if _, err := LoadOutline(t.TempDir()); err == nil {
		t.Error("expected error for missing outline.yaml")
	}
}

func TestLoadOutlineInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, outlineFile, ":::bad\n")
	if _, err := LoadOutline(dir); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadReferences(t *testing.T) {
	dir := writeProject(t)

	refs, err := LoadReferences(dir)
	if err != nil {
		t.Fatalf("LoadReferences: %v", err)
	}
	if len(refs.Papers) != 2 {
		t.Fatalf("len(Papers) = %d, want 2", len(refs.Papers))
	}
	if refs.Papers[0].CitationKey != "Vaswani2017" {
		t.Errorf("CitationKey = %q", refs.Papers[0].CitationKey)
	}
	if refs.Papers[0].Year != 2017 {
		t.Errorf("Year = %d", refs.Papers[0].Year)
	}
}

// --- DraftSection ---

func TestDraftSection(t *testing.T) {
	dir := writeProject(t)
	backend := &mockBackend{response: "## Introduction\n\nTransformers changed retrieval [Vaswani2017].\n"}

	text, err := DraftSection(context.Background(), backend, dir, "01", types.GenerationConfig{})
	if err != nil {
		t.Fatalf("DraftSection: %v", err)
	}
	if !strings.Contains(text, "## Introduction") {
		t.Errorf("draft = %q", text)
	}

	prompt := backend.lastPrompt
	if !strings.Contains(prompt, "SECTION TO DRAFT: Introduction") {
		t.Error("prompt missing target section")
	}
	if !strings.Contains(prompt, "[Vaswani2017]") {
		t.Error("prompt missing reference key")
	}
	if !strings.Contains(prompt, "02. Methods") {
		t.Error("prompt missing outline context")
	}
}

func TestDraftSectionByFilePrefix(t *testing.T) {
	dir := writeProject(t)
	backend := &mockBackend{response: "## Methods\n\nPipeline details.\n"}

	if _, err := DraftSection(context.Background(), backend, dir, "02", types.GenerationConfig{}); err != nil {
		t.Fatalf("DraftSection: %v", err)
	}
	if !strings.Contains(backend.lastPrompt, "SECTION TO DRAFT: Methods") {
		t.Error("prompt targeted wrong section")
	}
}

func TestDraftSectionUnknownNumber(t *testing.T) {
	dir := writeProject(t)
	backend := &mockBackend{response: "irrelevant"}

	_, err := DraftSection(context.Background(), backend, dir, "09", types.GenerationConfig{})
	if err == nil {
		t.Fatal("expected error for unknown section")
	}
	if backend.calls != 0 {
		t.Errorf("backend called %d times for unknown section", backend.calls)
	}
}

func TestDraftSectionUnknownCitation(t *testing.T) {
	dir := writeProject(t)
	backend := &mockBackend{response: "## Introduction\n\nBold claims [Smith2020].\n"}

	text, err := DraftSection(context.Background(), backend, dir, "01", types.GenerationConfig{})
	if err == nil {
		t.Fatal("expected error for unknown citation key")
	}
	if !strings.Contains(err.Error(), "Smith2020") {
		t.Errorf("error = %v, want unknown key named", err)
	}
	// The draft text still comes back for inspection.
	if !strings.Contains(text, "Bold claims") {
		t.Errorf("text = %q, want draft returned alongside error", text)
	}
}

func TestDraftSectionWithoutReferencesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, outlineFile, sampleOutlineYAML)
	backend := &mockBackend{response: "## Introduction\n\nNo citations here.\n"}

	if _, err := DraftSection(context.Background(), backend, dir, "01", types.GenerationConfig{}); err != nil {
		t.Fatalf("DraftSection without references: %v", err)
	}
	if !strings.Contains(backend.lastPrompt, "write without citations") {
		t.Error("prompt should note the empty reference list")
	}
}

// --- section files and citation validation ---

func TestSectionFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "02-methods.md", "x")
	writeFile(t, dir, "01-introduction.md", "x")
	writeFile(t, dir, "notes.md", "x")
	writeFile(t, dir, "outline.yaml", "x")

	files, err := SectionFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	want := []string{"01-introduction.md", "02-methods.md"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("files = %v, want %v", names, want)
	}
}

func TestValidateCitations(t *testing.T) {
	dir := writeProject(t)
	writeFile(t, dir, "01-introduction.md",
		"Attention [Vaswani2017] and retrieval [Lewis2020; Unknown2024] matter.\n")
	writeFile(t, dir, "02-methods.md",
		"More context [Another2023] and a [link](https://example.org).\n")

	missing, err := ValidateCitations(dir)
	if err != nil {
		t.Fatalf("ValidateCitations: %v", err)
	}
	want := []string{"Another2023", "Unknown2024"}
	if !reflect.DeepEqual(missing, want) {
		t.Errorf("missing = %v, want %v", missing, want)
	}
}

func TestValidateCitationsAllKnown(t *testing.T) {
	dir := writeProject(t)
	writeFile(t, dir, "01-introduction.md", "Just [Vaswani2017].\n")

	missing, err := ValidateCitations(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(missing) != 0 {
		t.Errorf("missing = %v, want none", missing)
	}
}

func TestExtractCitationKeys(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single", "See [Vaswani2017].", []string{"Vaswani2017"}},
		{"multi", "Prior work [Vaswani2017; Lewis2020].", []string{"Vaswani2017", "Lewis2020"}},
		{"markdown link ignored", "A [link](https://example.org) here.", nil},
		{"plain word ignored", "Bracketed [note] text.", nil},
		{"number only ignored", "Footnote [12] style.", nil},
		{"hyphenated key", "Report [UN-2023].", []string{"UN-2023"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractCitationKeys(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("keys = %v, want %v", got, tt.want)
			}
		})
	}
}

// --- BibTeX ---

func TestGenerateBibTeX(t *testing.T) {
	refs := &types.ReferencesFile{Papers: []types.ReferenceEntry{
		{
			CitationKey: "Vaswani2017",
			Title:       "Attention Is All You Need",
			Authors:     []string{"Vaswani", "Shazeer"},
			Year:        2017,
			Venue:       "NeurIPS",
			URL:         "https://example.org/attention",
		},
		{CitationKey: "Anon2020", Title: "Minimal Entry"},
	}}

	bib := GenerateBibTeX(refs)

	if !strings.Contains(bib, "@article{Vaswani2017,") {
		t.Error("missing entry header")
	}
	if !strings.Contains(bib, "author = {Vaswani and Shazeer},") {
		t.Error("missing author joining")
	}
	if !strings.Contains(bib, "journal = {NeurIPS},") {
		t.Error("missing venue")
	}
	if !strings.Contains(bib, "url = {https://example.org/attention},") {
		t.Error("missing url")
	}
	if !strings.Contains(bib, "@article{Anon2020,") {
		t.Error("missing minimal entry")
	}
	if strings.Contains(bib, "year = {0}") {
		t.Error("zero year should be omitted")
	}
}
