// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdiddy/research-assistant/pkg/types"
)

func TestToCSLItem(t *testing.T) {
	r := types.Record{
		Title:    "Attention Is All You Need",
		URL:      "https://example.org/attention",
		Year:     "2017",
		Venue:    "NeurIPS",
		Authors:  "Ashish Vaswani, Noam Shazeer",
		Abstract: "We propose a new architecture.",
	}

	item := toCSLItem(r, 0)

	if item.ID != "vaswani2017" {
		t.Errorf("ID = %q, want vaswani2017", item.ID)
	}
	if item.Type != "article" {
		t.Errorf("Type = %q, want article", item.Type)
	}
	if len(item.Author) != 2 {
		t.Fatalf("len(Author) = %d, want 2", len(item.Author))
	}
	if item.Author[0].Given != "Ashish" || item.Author[0].Family != "Vaswani" {
		t.Errorf("Author[0] = %+v", item.Author[0])
	}
	if item.ContainerTitle != "NeurIPS" {
		t.Errorf("ContainerTitle = %q", item.ContainerTitle)
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2017 {
		t.Error("Issued year should be 2017")
	}
	if item.URL != "https://example.org/attention" {
		t.Errorf("URL = %q", item.URL)
	}
}

func TestToCSLItemMissingYear(t *testing.T) {
	r := types.Record{Title: "Draft", Authors: "J Smith"}

	item := toCSLItem(r, 4)

	if item.Issued != nil {
		t.Errorf("Issued should be nil without a year, got %+v", item.Issued)
	}
	if item.ID != "ref-5" {
		t.Errorf("ID = %q, want positional ref-5", item.ID)
	}
}

func TestCitationKey(t *testing.T) {
	tests := []struct {
		name string
		rec  types.Record
		want string
	}{
		{"author and year", types.Record{Authors: "Ashish Vaswani", Year: "2017"}, "vaswani2017"},
		{"single-token author", types.Record{Authors: "OpenAI", Year: "2023"}, "openai2023"},
		{"no year", types.Record{Authors: "Ashish Vaswani"}, "ref-1"},
		{"no authors", types.Record{Year: "2017"}, "ref-1"},
		{"scholar display line", types.Record{Authors: "J Kaplan, S McCandlish - arXiv, 2020", Year: "2020"}, "kaplan2020"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := citationKey(tt.rec, 0); got != tt.want {
				t.Errorf("citationKey = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"Ashish Vaswani", []string{"Ashish Vaswani"}},
		{"A One, B Two, C Three", []string{"A One", "B Two", "C Three"}},
		{"J Smith, A Jones - Nature, 2021 - nature.com", []string{"J Smith", "A Jones"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := splitAuthors(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitAuthors(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitAuthors(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseAuthorName(t *testing.T) {
	tests := []struct {
		input string
		want  CSLName
	}{
		{"Ashish Vaswani", CSLName{Given: "Ashish", Family: "Vaswani"}},
		{"Jean van der Berg", CSLName{Given: "Jean van der", Family: "Berg"}},
		{"OpenAI", CSLName{Literal: "OpenAI"}},
		{"", CSLName{}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseAuthorName(tt.input); got != tt.want {
				t.Errorf("parseAuthorName(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCSL(t *testing.T) {
	records := []types.Record{
		{
			Title:   "Attention Is All You Need",
			Year:    "2017",
			Venue:   "NeurIPS",
			Authors: "Ashish Vaswani",
			URL:     "https://example.org/attention",
		},
		{
			Title:   "An Untitled Draft",
			Authors: "",
		},
	}

	var buf bytes.Buffer
	if err := FormatCSL(records, &buf); err != nil {
		t.Fatalf("FormatCSL: %v", err)
	}
	s := buf.String()

	if !strings.Contains(s, "id: vaswani2017") {
		t.Error("output should contain the derived citation key")
	}
	if !strings.Contains(s, "type: article") {
		t.Error("output should contain type: article")
	}
	if !strings.Contains(s, "container-title: NeurIPS") {
		t.Error("output should contain the venue as container-title")
	}
	if !strings.Contains(s, "family: Vaswani") {
		t.Error("output should contain the parsed family name")
	}
	if !strings.Contains(s, "id: ref-2") {
		t.Error("record without author/year should get a positional id")
	}
}
