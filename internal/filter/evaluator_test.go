package filter

import (
	"reflect"
	"testing"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
)

func TestEvaluator_Evaluate(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rules := Rules{
		Keywords:   []string{"free ticket", "giveaway"},
		Exclusions: []string{"sold"},
		FlairPriority: map[string]string{
			"glasgow": "Ticket share. No adverts, free tickets only",
		},
		MinScore: 0,
	}

	tests := []struct {
		name         string
		post         model.Post
		seen         map[string]bool
		wantNil      bool
		wantKind     model.MatchKind
		wantKeywords []string
	}{
		{
			name:    "exclusion wins over a qualifying keyword",
			post:    model.Post{ID: "1", Subreddit: "glasgow", Title: "Free ticket giveaway, sold now"},
			wantNil: true,
		},
		{
			name:         "keyword match collects the matching keyword",
			post:         model.Post{ID: "2", Subreddit: "glasgow", Title: "Spare free ticket for tonight"},
			wantKind:     model.MatchKindKeyword,
			wantKeywords: []string{"free ticket"},
		},
		{
			name:         "every matching keyword is collected, not just the first",
			post:         model.Post{ID: "3", Subreddit: "glasgow", Title: "Free ticket giveaway for the gig"},
			wantKind:     model.MatchKindKeyword,
			wantKeywords: []string{"free ticket", "giveaway"},
		},
		{
			name: "priority flair matches without any keyword",
			post: model.Post{
				ID:        "4",
				Subreddit: "glasgow",
				Title:     "Two spares for Friday",
				Body:      "nothing relevant",
				Flair:     "Ticket share. No adverts, free tickets only",
			},
			wantKind:     model.MatchKindFlair,
			wantKeywords: []string{},
		},
		{
			name: "flair on the wrong subreddit does not short-circuit",
			post: model.Post{
				ID:        "5",
				Subreddit: "glasgowmarket",
				Title:     "Two spares for Friday",
				Flair:     "Ticket share. No adverts, free tickets only",
			},
			wantNil: true,
		},
		{
			name:    "already-seen post never re-matches",
			post:    model.Post{ID: "6", Subreddit: "glasgow", Title: "free ticket here"},
			seen:    map[string]bool{"glasgow/6": true},
			wantNil: true,
		},
		{
			name:         "keyword match is case-insensitive",
			post:         model.Post{ID: "7", Subreddit: "glasgow", Title: "FREE TICKET to the show"},
			wantKind:     model.MatchKindKeyword,
			wantKeywords: []string{"free ticket"},
		},
		{
			name:         "body text is scanned too",
			post:         model.Post{ID: "8", Subreddit: "glasgow", Title: "Anyone want these?", Body: "Doing a giveaway of two passes"},
			wantKind:     model.MatchKindKeyword,
			wantKeywords: []string{"giveaway"},
		},
		{
			name:    "no keyword and no flair returns nothing",
			post:    model.Post{ID: "9", Subreddit: "glasgow", Title: "Best chippy in town?"},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := func(id string) bool { return tt.seen[id] }
			e := NewEvaluator(rules, seen)

			match := e.Evaluate(tt.post, now)
			if tt.wantNil {
				if match != nil {
					t.Fatalf("Evaluate() = %+v, want nil", match)
				}
				return
			}

			if match == nil {
				t.Fatal("Evaluate() = nil, want a match")
			}
			if match.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", match.Kind, tt.wantKind)
			}
			if !reflect.DeepEqual(match.Keywords, tt.wantKeywords) {
				t.Errorf("Keywords = %v, want %v", match.Keywords, tt.wantKeywords)
			}
			if !match.EvaluatedAt.Equal(now) {
				t.Errorf("EvaluatedAt = %v, want %v", match.EvaluatedAt, now)
			}
		})
	}
}

func TestEvaluator_MinScore(t *testing.T) {
	rules := Rules{
		Keywords: []string{"free ticket"},
		MinScore: 5,
	}
	e := NewEvaluator(rules, nil)
	now := time.Now()

	low := model.Post{ID: "1", Subreddit: "glasgow", Title: "free ticket", Score: 4}
	if match := e.Evaluate(low, now); match != nil {
		t.Errorf("Evaluate() with score below minimum = %+v, want nil", match)
	}

	high := model.Post{ID: "2", Subreddit: "glasgow", Title: "free ticket", Score: 5}
	if match := e.Evaluate(high, now); match == nil {
		t.Error("Evaluate() with score at minimum = nil, want a match")
	}
}

func TestEvaluator_RegexMode(t *testing.T) {
	rules := Rules{
		Keywords:  []string{`free\s+(ticket|entry)`, `[invalid`},
		RegexMode: true,
	}
	e := NewEvaluator(rules, nil)
	now := time.Now()

	match := e.Evaluate(model.Post{ID: "1", Subreddit: "glasgow", Title: "Free  entry tonight"}, now)
	if match == nil {
		t.Fatal("Evaluate() = nil, want a regex match")
	}
	if len(match.Keywords) != 1 || match.Keywords[0] != `free\s+(ticket|entry)` {
		t.Errorf("Keywords = %v, want the regex pattern", match.Keywords)
	}

	// The invalid pattern degrades to a literal and must not panic
	literal := e.Evaluate(model.Post{ID: "2", Subreddit: "glasgow", Title: "contains [invalid literally"}, now)
	if literal == nil {
		t.Fatal("Evaluate() = nil, want literal fallback match for invalid pattern")
	}
}
