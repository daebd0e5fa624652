package filter

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
)

// Rules is the narrow slice of configuration the evaluator depends on.
type Rules struct {
	Keywords      []string
	Exclusions    []string
	RegexMode     bool
	FlairPriority map[string]string
	MinScore      int
}

// SeenFunc reports whether a qualified post ID has already been notified on.
type SeenFunc func(qualifiedID string) bool

// Evaluator decides whether a candidate post qualifies for notification.
// Checks run cheapest first: seen set, score, exclusion keywords, priority
// flair, then the keyword scan.
type Evaluator struct {
	rules    Rules
	seen     SeenFunc
	patterns []*regexp.Regexp
}

func NewEvaluator(rules Rules, seen SeenFunc) *Evaluator {
	e := &Evaluator{rules: rules, seen: seen}

	if rules.RegexMode {
		e.patterns = make([]*regexp.Regexp, len(rules.Keywords))
		for i, keyword := range rules.Keywords {
			pattern, err := regexp.Compile("(?i)" + keyword)
			if err != nil {
				// Invalid patterns degrade to literal matching
				slog.Warn("Invalid regex keyword, falling back to literal match",
					"keyword", keyword, "error", err)
				pattern = regexp.MustCompile("(?i)" + regexp.QuoteMeta(keyword))
			}
			e.patterns[i] = pattern
		}
	}

	return e
}

// Evaluate returns a match record for a qualifying post, or nil. It has no
// side effects beyond reading the rules and the seen set.
func (e *Evaluator) Evaluate(post model.Post, now time.Time) *model.Match {
	if e.seen != nil && e.seen(post.QualifiedID()) {
		return nil
	}

	if post.Score < e.rules.MinScore {
		return nil
	}

	text := post.SearchText()
	textLower := strings.ToLower(text)

	// Exclusion terms veto everything, including a priority flair
	for _, exclusion := range e.rules.Exclusions {
		if strings.Contains(textLower, strings.ToLower(exclusion)) {
			return nil
		}
	}

	// A priority flair bypasses keyword scanning entirely
	if flair, ok := e.rules.FlairPriority[post.Subreddit]; ok && post.Flair == flair {
		return &model.Match{
			Post:        post,
			Keywords:    []string{},
			Kind:        model.MatchKindFlair,
			EvaluatedAt: now,
		}
	}

	matched := e.matchKeywords(text, textLower)
	if len(matched) == 0 {
		return nil
	}

	return &model.Match{
		Post:        post,
		Keywords:    matched,
		Kind:        model.MatchKindKeyword,
		EvaluatedAt: now,
	}
}

// matchKeywords collects every matching keyword, not just the first.
func (e *Evaluator) matchKeywords(text, textLower string) []string {
	var matched []string
	for i, keyword := range e.rules.Keywords {
		if e.rules.RegexMode {
			if e.patterns[i].MatchString(text) {
				matched = append(matched, keyword)
			}
			continue
		}
		if strings.Contains(textLower, strings.ToLower(keyword)) {
			matched = append(matched, keyword)
		}
	}
	return matched
}
