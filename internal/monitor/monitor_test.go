package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/clydeside/ticketwatch/internal/config"
	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/clydeside/ticketwatch/internal/reddit"
	"github.com/clydeside/ticketwatch/internal/store"
)

type fakeSource struct {
	posts      map[string][]model.Post
	flair      map[string][]model.Post
	authors    map[string]reddit.AuthorInfo
	failFor    map[string]bool
	aboutCalls int
}

func (f *fakeSource) ListNew(ctx context.Context, subreddit string, limit int) ([]model.Post, error) {
	if f.failFor[subreddit] {
		return nil, errors.New("subreddit unreachable")
	}
	return f.posts[subreddit], nil
}

func (f *fakeSource) SearchFlair(ctx context.Context, subreddit, flair string, limit int) ([]model.Post, error) {
	return f.flair[subreddit], nil
}

func (f *fakeSource) AboutUser(ctx context.Context, username string) (reddit.AuthorInfo, error) {
	f.aboutCalls++
	info, ok := f.authors[username]
	if !ok {
		return reddit.AuthorInfo{}, errors.New("user not found")
	}
	return info, nil
}

type fakeNotifier struct {
	dispatches [][]model.Match
	failures   []string
}

func (f *fakeNotifier) Dispatch(ctx context.Context, matches []model.Match) []string {
	f.dispatches = append(f.dispatches, matches)
	return []string{"email"}
}

func (f *fakeNotifier) ReportFailure(ctx context.Context, subject, text string) {
	f.failures = append(f.failures, text)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Keywords:            []string{"free ticket", "giveaway"},
		ExclusionKeywords:   []string{"sold"},
		Subreddits:          []string{"glasgow", "glasgowmarket"},
		LenientSubreddits:   []string{"glasgowmarket"},
		FlairPriority:       map[string]string{"glasgow": "Ticket share. No adverts, free tickets only"},
		DaysToCheck:         7,
		MaxPostsPerRun:      50,
		SeenRetainDays:      7,
		EnableDeduplication: true,
		SimilarityThreshold: 0.8,
	}
}

func newTestMonitor(t *testing.T, cfg *config.Config, source Source, notifier Notifier) *Monitor {
	t.Helper()
	dir := t.TempDir()
	seen := store.NewFileSeenStore(filepath.Join(dir, "seen_posts.json"))
	history := store.NewHistory(filepath.Join(dir, "match_history.json"))
	return New(cfg, source, seen, history, notifier)
}

func TestMonitor_RunOnceIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	source := &fakeSource{
		posts: map[string][]model.Post{
			"glasgow": {
				{ID: "a1", Subreddit: "glasgow", Title: "Spare free ticket for tonight", Author: "alice", CreatedAt: now.Add(-time.Hour)},
			},
		},
	}
	notifier := &fakeNotifier{}

	m := newTestMonitor(t, testConfig(t), source, notifier)
	m.SetClock(func() time.Time { return now })

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("first RunOnce() returned error: %v", err)
	}
	if len(notifier.dispatches) != 1 {
		t.Fatalf("first pass dispatched %d batches, want 1", len(notifier.dispatches))
	}

	// Same candidates, immediately after: the seen ledger must suppress
	// every dispatch
	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("second RunOnce() returned error: %v", err)
	}
	if len(notifier.dispatches) != 1 {
		t.Errorf("second pass dispatched %d additional batches, want 0", len(notifier.dispatches)-1)
	}
}

func TestMonitor_SourceFailureIsIsolated(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	source := &fakeSource{
		failFor: map[string]bool{"glasgow": true},
		posts: map[string][]model.Post{
			"glasgowmarket": {
				{ID: "b1", Subreddit: "glasgowmarket", Title: "Giveaway: two passes", Author: "bob", CreatedAt: now.Add(-time.Hour)},
			},
		},
	}
	notifier := &fakeNotifier{}

	m := newTestMonitor(t, testConfig(t), source, notifier)
	m.SetClock(func() time.Time { return now })

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() returned error: %v", err)
	}

	// The failing source is reported and the healthy source still matched
	if len(notifier.failures) != 1 {
		t.Errorf("got %d failure reports, want 1", len(notifier.failures))
	}
	if len(notifier.dispatches) != 1 || len(notifier.dispatches[0]) != 1 {
		t.Fatalf("dispatches = %+v, want one batch with one match", notifier.dispatches)
	}
	if notifier.dispatches[0][0].Post.ID != "b1" {
		t.Errorf("dispatched post = %q, want b1", notifier.dispatches[0][0].Post.ID)
	}
}

func TestMonitor_LenientWindowForQuietSubreddit(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	tenDaysOld := now.Add(-10 * 24 * time.Hour)

	source := &fakeSource{
		posts: map[string][]model.Post{
			// Both posts are 10 days old: past the 7-day window, inside
			// the doubled lenient window
			"glasgow":       {{ID: "a1", Subreddit: "glasgow", Title: "free ticket", Author: "alice", CreatedAt: tenDaysOld}},
			"glasgowmarket": {{ID: "b1", Subreddit: "glasgowmarket", Title: "big giveaway", Author: "bob", CreatedAt: tenDaysOld}},
		},
	}
	notifier := &fakeNotifier{}

	m := newTestMonitor(t, testConfig(t), source, notifier)
	m.SetClock(func() time.Time { return now })

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(notifier.dispatches) != 1 || len(notifier.dispatches[0]) != 1 {
		t.Fatalf("dispatches = %+v, want exactly the lenient-subreddit match", notifier.dispatches)
	}
	if notifier.dispatches[0][0].Post.Subreddit != "glasgowmarket" {
		t.Errorf("matched subreddit = %q, want glasgowmarket", notifier.dispatches[0][0].Post.Subreddit)
	}
}

func TestMonitor_FlairSearchFeedsPriorityMatches(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	source := &fakeSource{
		flair: map[string][]model.Post{
			"glasgow": {{
				ID:        "f1",
				Subreddit: "glasgow",
				Title:     "Two spares for Friday",
				Body:      "nothing relevant",
				Flair:     "Ticket share. No adverts, free tickets only",
				Author:    "carol",
				CreatedAt: now.Add(-time.Hour),
			}},
		},
	}
	notifier := &fakeNotifier{}

	m := newTestMonitor(t, testConfig(t), source, notifier)
	m.SetClock(func() time.Time { return now })

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(notifier.dispatches) != 1 || len(notifier.dispatches[0]) != 1 {
		t.Fatalf("dispatches = %+v, want one flair match", notifier.dispatches)
	}
	match := notifier.dispatches[0][0]
	if match.Kind != model.MatchKindFlair {
		t.Errorf("Kind = %q, want %q", match.Kind, model.MatchKindFlair)
	}
	if len(match.Keywords) != 0 {
		t.Errorf("Keywords = %v, want empty for a flair match", match.Keywords)
	}
}

func TestMonitor_CrossSourceDuplicateSuppressed(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	title := "Free festival wristbands – DM me"

	source := &fakeSource{
		posts: map[string][]model.Post{
			"glasgow":       {{ID: "a1", Subreddit: "glasgow", Title: title, Author: "alice", CreatedAt: now.Add(-time.Hour)}},
			"glasgowmarket": {{ID: "b1", Subreddit: "glasgowmarket", Title: title, Author: "bob", CreatedAt: now.Add(-time.Hour)}},
		},
	}
	notifier := &fakeNotifier{}

	m := newTestMonitor(t, testConfig(t), source, notifier)
	m.SetClock(func() time.Time { return now })

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(notifier.dispatches) != 1 {
		t.Fatalf("dispatched %d batches, want 1", len(notifier.dispatches))
	}
	if got := len(notifier.dispatches[0]); got != 1 {
		t.Errorf("batch carried %d matches, want 1 (second occurrence suppressed)", got)
	}
}

func TestMonitor_AuthorQualityGate(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	cfg := testConfig(t)
	cfg.EnableUserFiltering = true
	cfg.MinUserKarma = 10
	cfg.MinAccountAgeDays = 7

	oldEnough := float64(now.Add(-30 * 24 * time.Hour).Unix())
	brandNew := float64(now.Add(-time.Hour).Unix())

	source := &fakeSource{
		posts: map[string][]model.Post{
			"glasgow": {
				{ID: "a1", Subreddit: "glasgow", Title: "free ticket one", Author: "veteran", CreatedAt: now.Add(-time.Hour)},
				{ID: "a2", Subreddit: "glasgow", Title: "giveaway two", Author: "newcomer", CreatedAt: now.Add(-time.Hour)},
			},
		},
		authors: map[string]reddit.AuthorInfo{
			"veteran":  {CreatedUTC: oldEnough, LinkKarma: 50, CommentKarma: 50},
			"newcomer": {CreatedUTC: brandNew, LinkKarma: 100, CommentKarma: 100},
		},
	}
	notifier := &fakeNotifier{}

	m := newTestMonitor(t, cfg, source, notifier)
	m.SetClock(func() time.Time { return now })

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(notifier.dispatches) != 1 || len(notifier.dispatches[0]) != 1 {
		t.Fatalf("dispatches = %+v, want just the veteran's post", notifier.dispatches)
	}
	if notifier.dispatches[0][0].Post.Author != "veteran" {
		t.Errorf("matched author = %q, want veteran", notifier.dispatches[0][0].Post.Author)
	}
}

func TestMonitor_SeenPostSkipsAuthorLookup(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	cfg := testConfig(t)
	cfg.EnableUserFiltering = true
	cfg.MinUserKarma = 10

	source := &fakeSource{
		posts: map[string][]model.Post{
			"glasgow": {
				{ID: "a1", Subreddit: "glasgow", Title: "free ticket tonight", Author: "alice", CreatedAt: now.Add(-time.Hour)},
			},
		},
		authors: map[string]reddit.AuthorInfo{
			"alice": {CreatedUTC: float64(now.Add(-365 * 24 * time.Hour).Unix()), LinkKarma: 100},
		},
	}
	notifier := &fakeNotifier{}

	m := newTestMonitor(t, cfg, source, notifier)
	m.SetClock(func() time.Time { return now })

	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if source.aboutCalls != 1 {
		t.Fatalf("first pass made %d author lookups, want 1", source.aboutCalls)
	}

	// The post is recorded as seen; a second pass with the same listing
	// must not cost another lookup
	if err := m.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if source.aboutCalls != 1 {
		t.Errorf("second pass made %d additional author lookups, want 0", source.aboutCalls-1)
	}
}
