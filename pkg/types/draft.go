// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Idea is one generated research direction.
type Idea struct {
	// Title is a short name for the idea.
	Title string `json:"title" yaml:"title"`

	// Summary describes the idea in a paragraph.
	Summary string `json:"summary" yaml:"summary"`

	// Rationale explains why the idea is promising given the cited papers.
	Rationale string `json:"rationale" yaml:"rationale"`

	// Sources lists titles of library papers the idea builds on.
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

// SectionStatus tracks a section's progress through the writing workflow.
type SectionStatus string

const (
	StatusOutline SectionStatus = "outline"
	StatusDraft   SectionStatus = "draft"
	StatusRevised SectionStatus = "revised"
	StatusFinal   SectionStatus = "final"
)

// OutlineSection describes one section in a paper project's outline.
type OutlineSection struct {
	// Number is the two-digit sequence number (e.g. "01", "02").
	Number string `json:"number" yaml:"number"`

	// Title is the section heading.
	Title string `json:"title" yaml:"title"`

	// File is the section's filename (e.g. "01-introduction.md").
	File string `json:"file" yaml:"file"`

	// Description explains what the section covers.
	Description string `json:"description" yaml:"description"`

	// Status tracks writing progress: outline, draft, revised, final.
	Status SectionStatus `json:"status" yaml:"status"`
}

// Outline holds the paper structure from outline.yaml.
type Outline struct {
	// Title is the working title of the paper.
	Title string `json:"title" yaml:"title"`

	// Topic is the research topic the paper addresses.
	Topic string `json:"topic" yaml:"topic"`

	// Sections lists the paper's sections in order.
	Sections []OutlineSection `json:"sections" yaml:"sections"`
}

// ReferenceEntry records a cited paper in references.yaml.
type ReferenceEntry struct {
	// CitationKey is the inline citation label (e.g. "Vaswani2017").
	CitationKey string `json:"citation_key" yaml:"citation_key"`

	// Title is the cited paper's title.
	Title string `json:"title" yaml:"title"`

	// Authors lists author surnames.
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year.
	Year int `json:"year" yaml:"year"`

	// Venue is the journal or conference (optional).
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// URL points at the cited paper (optional).
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// ReferencesFile holds all cited papers from references.yaml.
type ReferencesFile struct {
	// Papers lists every cited paper.
	Papers []ReferenceEntry `json:"papers" yaml:"papers"`
}
