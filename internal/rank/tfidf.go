// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// maxFeatures caps the vocabulary at the terms with the highest collection
// frequency.
const maxFeatures = 5000

// vectorizer is a TF-IDF model over unigrams and bigrams with smoothed
// inverse document frequency. Rows are L2-normalized, so the dot product
// of two rows is their cosine similarity.
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// fitVectorizer builds the vocabulary and IDF weights from the corpus.
func fitVectorizer(docs []string) *vectorizer {
	total := make(map[string]int)
	df := make(map[string]int)
	for _, doc := range docs {
		counts := termCounts(doc)
		for term, c := range counts {
			total[term] += c
			df[term]++
		}
	}

	terms := make([]string, 0, len(total))
	for term := range total {
		terms = append(terms, term)
	}
	// Keep the most frequent terms; break ties alphabetically so the
	// vocabulary is deterministic.
	sort.Slice(terms, func(i, j int) bool {
		if total[terms[i]] != total[terms[j]] {
			return total[terms[i]] > total[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for i, term := range terms {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return &vectorizer{vocab: vocab, idf: idf}
}

// row transforms a document into its L2-normalized TF-IDF vector.
func (v *vectorizer) row(doc string) []float64 {
	vec := make([]float64, len(v.idf))
	for term, c := range termCounts(doc) {
		if col, ok := v.vocab[term]; ok {
			vec[col] = float64(c) * v.idf[col]
		}
	}
	normalize(vec)
	return vec
}

// lexicalSimilarities fits a TF-IDF model over the documents, projects the
// query into that vocabulary, and returns the cosine similarity of each
// document to the query. Query terms absent from every document contribute
// nothing; documents sharing no vocabulary with the query score zero.
func lexicalSimilarities(query string, docs []string) []float64 {
	v := fitVectorizer(docs)
	qvec := v.row(query)

	sims := make([]float64, len(docs))
	for i, doc := range docs {
		sims[i] = dot(qvec, v.row(doc))
	}
	return sims
}

// termCounts tokenizes a document and counts unigrams and bigrams.
func termCounts(doc string) map[string]int {
	tokens := tokenize(doc)
	counts := make(map[string]int, len(tokens)*2)
	for i, tok := range tokens {
		counts[tok]++
		if i+1 < len(tokens) {
			counts[tok+" "+tokens[i+1]]++
		}
	}
	return counts
}

// tokenize lowercases the text and splits it into word tokens of at least
// two characters, dropping stopwords. Bigrams are formed over the surviving
// tokens, so a stopword between two words joins them into one bigram.
func tokenize(text string) []string {
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) >= 2 {
			tok := string(current)
			if !isStopword(tok) {
				tokens = append(tokens, tok)
			}
		}
		current = current[:0]
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current = append(current, r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

func normalize(vec []float64) {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
}

func dot(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
