// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"regexp"
	"sort"
	"strings"
)

// capitalizedPhrase matches runs of capitalized words, the usual shape of
// named techniques and systems in titles and abstracts.
var capitalizedPhrase = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\b`)

// commonTerm matches field vocabulary that rarely appears capitalized.
var commonTerm = regexp.MustCompile(`(?i)\b(machine learning|deep learning|neural network|natural language processing|computer vision|reinforcement learning|algorithm)\b`)

// headingWords are capitalized matches that name document structure, not topics.
var headingWords = map[string]bool{
	"Introduction": true,
	"Abstract":     true,
	"Conclusion":   true,
}

// extractTopics derives topic labels from free text. Labels are lowercased
// and sorted so repeated ingestion of the same paper yields the same list.
func extractTopics(text string) []string {
	seen := make(map[string]bool)

	for _, m := range capitalizedPhrase.FindAllStringSubmatch(text, -1) {
		phrase := m[1]
		if len(phrase) <= 3 || headingWords[phrase] {
			continue
		}
		seen[strings.ToLower(phrase)] = true
	}

	for _, m := range commonTerm.FindAllStringSubmatch(text, -1) {
		seen[strings.ToLower(m[1])] = true
	}

	if len(seen) == 0 {
		return nil
	}

	topics := make([]string, 0, len(seen))
	for topic := range seen {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics
}
