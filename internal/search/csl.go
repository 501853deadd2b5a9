package search

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-assistant/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title"`
	Author         []CSLName `yaml:"author,omitempty"`
	Abstract       string    `yaml:"abstract,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
	URL            string    `yaml:"URL,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// FormatCSL writes records as a CSL-YAML list to w.
func FormatCSL(records []types.Record, w io.Writer) error {
	items := make([]CSLItem, len(records))
	for i, r := range records {
		items[i] = toCSLItem(r, i)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

// toCSLItem converts a record to a CSLItem.
func toCSLItem(r types.Record, idx int) CSLItem {
	item := CSLItem{
		ID:             citationKey(r, idx),
		Type:           "article",
		Title:          r.Title,
		Abstract:       r.Abstract,
		ContainerTitle: r.Venue,
		URL:            r.URL,
	}

	for _, name := range splitAuthors(r.Authors) {
		item.Author = append(item.Author, parseAuthorName(name))
	}

	if year, err := strconv.Atoi(r.Year); err == nil {
		item.Issued = &CSLDate{DateParts: [][]int{{year}}}
	}

	return item
}

// citationKey builds a stable id like "vaswani2017" from the first author's
// family name and the year. Records missing either fall back to a
// positional id.
func citationKey(r types.Record, idx int) string {
	names := splitAuthors(r.Authors)
	if len(names) > 0 && r.Year != "" {
		n := parseAuthorName(names[0])
		family := n.Family
		if family == "" {
			family = n.Literal
		}
		if family != "" {
			return strings.ToLower(family) + r.Year
		}
	}
	return fmt.Sprintf("ref-%d", idx+1)
}

// splitAuthors breaks the comma-joined author field into individual names.
// Scholar fallback lines carry trailing " - venue - domain" segments, which
// are cut before splitting.
func splitAuthors(authors string) []string {
	if i := strings.Index(authors, " - "); i >= 0 {
		authors = authors[:i]
	}
	var names []string
	for _, part := range strings.Split(authors, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
