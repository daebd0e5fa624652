package filter

import (
	"strings"

	"github.com/clydeside/ticketwatch/internal/model"
)

// sameAuthorThreshold is applied instead of the configured threshold when
// the candidate and a prior match share an author. Reposts by the same
// user tend to be rewordings, so the bar is lower.
const sameAuthorThreshold = 0.6

// Similarity returns the Jaccard token-overlap ratio of two texts,
// symmetric and bounded to [0,1].
func Similarity(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)
	return overlap(tokensA, tokensB)
}

type dedupEntry struct {
	tokens map[string]struct{}
	author string
}

// Deduper suppresses posts that are near-duplicates of content already
// matched, within the current run and against recent prior matches.
type Deduper struct {
	threshold float64
	entries   []dedupEntry
}

func NewDeduper(threshold float64) *Deduper {
	return &Deduper{threshold: threshold}
}

// Remember adds a text the deduper compares future candidates against.
func (d *Deduper) Remember(text, author string) {
	d.entries = append(d.entries, dedupEntry{
		tokens: tokenize(text),
		author: author,
	})
}

// IsDuplicate reports whether the post's text is too similar to any
// remembered match.
func (d *Deduper) IsDuplicate(post model.Post) bool {
	tokens := tokenize(post.SearchText())
	if len(tokens) == 0 {
		return false
	}

	for _, entry := range d.entries {
		threshold := d.threshold
		if post.Author != "" && post.Author == entry.author {
			threshold = sameAuthorThreshold
		}
		if overlap(tokens, entry.tokens) >= threshold {
			return true
		}
	}

	return false
}

func tokenize(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(text)) {
		tokens[field] = struct{}{}
	}
	return tokens
}

func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
