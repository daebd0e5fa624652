package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/clydeside/ticketwatch/internal/config"
	"github.com/clydeside/ticketwatch/internal/filter"
	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/clydeside/ticketwatch/internal/reddit"
	"github.com/samber/lo"
)

// flairSearchLimit caps how many flair-tagged posts one pass examines.
const flairSearchLimit = 20

// dedupSeedWindow is how far back prior matches seed the similarity
// dedup at the start of a pass.
const dedupSeedWindow = 7 * 24 * time.Hour

// Source pulls candidate posts from one upstream community.
type Source interface {
	ListNew(ctx context.Context, subreddit string, limit int) ([]model.Post, error)
	SearchFlair(ctx context.Context, subreddit, flair string, limit int) ([]model.Post, error)
	AboutUser(ctx context.Context, username string) (reddit.AuthorInfo, error)
}

// SeenStore is the durable ledger of already-notified post IDs.
type SeenStore interface {
	Load() error
	Contains(qualifiedID string) bool
	Record(qualifiedID string, at time.Time)
	Prune(maxAge time.Duration, now time.Time) int
	Save() error
	Len() int
}

// HistoryStore records dispatched matches for the dashboard and the
// cross-run similarity dedup.
type HistoryStore interface {
	Load() error
	Append(now time.Time, matches ...model.Match)
	Recent(window time.Duration, now time.Time) []model.Match
	Save() error
}

// Notifier fans matches out to the configured channels.
type Notifier interface {
	Dispatch(ctx context.Context, matches []model.Match) []string
	ReportFailure(ctx context.Context, subject, text string)
}

// Monitor orchestrates one polling pass: pull candidates per source, run
// the filter pipeline, dispatch matches and update the seen ledger. The
// continuous mode repeats the same pass on a fixed interval.
type Monitor struct {
	cfg      *config.Config
	source   Source
	seen     SeenStore
	history  HistoryStore
	notifier Notifier
	now      func() time.Time
}

func New(cfg *config.Config, source Source, seen SeenStore, history HistoryStore, notifier Notifier) *Monitor {
	return &Monitor{
		cfg:      cfg,
		source:   source,
		seen:     seen,
		history:  history,
		notifier: notifier,
		now:      time.Now,
	}
}

// SetClock overrides the time source, used by tests.
func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
}

// RunOnce performs a single pass over every configured subreddit. A
// failing source is skipped and self-reported, never fatal.
func (m *Monitor) RunOnce(ctx context.Context) error {
	now := m.now()
	slog.Info("Starting check", "subreddits", m.cfg.Subreddits)

	if err := m.seen.Load(); err != nil {
		slog.Warn("Could not load seen-post store, continuing with empty set", "error", err)
	}
	if err := m.history.Load(); err != nil {
		slog.Warn("Could not load match history, continuing without it", "error", err)
	}

	if pruned := m.seen.Prune(time.Duration(m.cfg.SeenRetainDays)*24*time.Hour, now); pruned > 0 {
		slog.Info("Pruned old seen-post entries", "removed", pruned)
	}

	evaluator := filter.NewEvaluator(filter.Rules{
		Keywords:      m.cfg.Keywords,
		Exclusions:    m.cfg.ExclusionKeywords,
		RegexMode:     m.cfg.EnableRegexKeywords,
		FlairPriority: m.cfg.FlairPriority,
		MinScore:      m.cfg.MinPostScore,
	}, m.seen.Contains)

	deduper := filter.NewDeduper(m.cfg.SimilarityThreshold)
	for _, prior := range m.history.Recent(dedupSeedWindow, now) {
		deduper.Remember(prior.Post.SearchText(), prior.Post.Author)
	}

	authorVerdicts := make(map[string]bool)

	var allMatches []model.Match
	for _, subreddit := range m.cfg.Subreddits {
		matches, err := m.checkSubreddit(ctx, subreddit, evaluator, deduper, authorVerdicts, now)
		if err != nil {
			slog.Error("Error checking subreddit, skipping", "subreddit", subreddit, "error", err)
			m.notifier.ReportFailure(ctx, "🚨 Reddit Monitor Error",
				"Failed to check r/"+subreddit+": "+err.Error())
			continue
		}
		allMatches = append(allMatches, matches...)
	}

	if len(allMatches) == 0 {
		slog.Info("No new matching posts found")
	} else {
		sent := m.notifier.Dispatch(ctx, allMatches)
		if len(sent) == 0 {
			slog.Warn("Failed to send notifications via any channel", "matches", len(allMatches))
		} else {
			slog.Info("Notifications sent", "channels", sent, "matches", len(allMatches))
		}

		// At-most-one-attempt semantics: record even when some channels
		// failed, so a match never notifies twice
		for _, match := range allMatches {
			m.seen.Record(match.Post.QualifiedID(), now)
		}
		m.history.Append(now, allMatches...)
	}

	if err := m.seen.Save(); err != nil {
		slog.Error("Could not persist seen-post store, future runs may re-notify", "error", err)
	}
	if err := m.history.Save(); err != nil {
		slog.Error("Could not persist match history", "error", err)
	}

	slog.Info("Check completed", "matches", len(allMatches), "seen_posts", m.seen.Len())
	return nil
}

// Run repeats single passes on the configured interval until the context
// is cancelled. A failing pass is logged and the loop continues.
func (m *Monitor) Run(ctx context.Context) {
	interval := time.Duration(m.cfg.CheckIntervalMinutes) * time.Minute
	slog.Info("Starting continuous monitoring", "interval", interval, "keywords", m.cfg.Keywords)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial check
	if err := m.RunOnce(ctx); err != nil {
		slog.Error("Check failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("Monitoring stopped")
			return
		case <-ticker.C:
			if err := m.RunOnce(ctx); err != nil {
				slog.Error("Check failed", "error", err)
			}
		}
	}
}

func (m *Monitor) checkSubreddit(ctx context.Context, subreddit string, evaluator *filter.Evaluator, deduper *filter.Deduper, authorVerdicts map[string]bool, now time.Time) ([]model.Match, error) {
	window := time.Duration(m.cfg.DaysToCheck) * 24 * time.Hour
	if m.cfg.IsLenient(subreddit) {
		// Less active communities get a doubled window
		window *= 2
	}

	var candidates []model.Post

	// Priority-flair posts first
	if flair, ok := m.cfg.FlairPriority[subreddit]; ok {
		flairPosts, err := m.source.SearchFlair(ctx, subreddit, flair, flairSearchLimit)
		if err != nil {
			slog.Error("Flair search failed", "subreddit", subreddit, "error", err)
		} else {
			candidates = append(candidates, flairPosts...)
		}
	}

	newest, err := m.source.ListNew(ctx, subreddit, m.cfg.MaxPostsPerRun)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, newest...)

	// The flair search and the new listing can both surface a post
	candidates = lo.UniqBy(candidates, func(p model.Post) string { return p.QualifiedID() })

	var matches []model.Match
	checked := 0
	for _, post := range candidates {
		checked++

		// Cheapest check first: an already-notified post must not cost an
		// author lookup
		if m.seen.Contains(post.QualifiedID()) {
			continue
		}

		if !filter.IsRecent(post, window, now) {
			continue
		}

		if m.excludeByAuthor(ctx, post, authorVerdicts, now) {
			continue
		}

		match := evaluator.Evaluate(post, now)
		if match == nil {
			continue
		}

		if m.cfg.EnableDeduplication && deduper.IsDuplicate(post) {
			slog.Debug("Suppressed near-duplicate post", "subreddit", subreddit, "post_id", post.ID)
			continue
		}
		deduper.Remember(post.SearchText(), post.Author)

		slog.Info("Found matching post", "subreddit", subreddit,
			"title", post.Title, "kind", match.Kind, "keywords", match.Keywords)
		matches = append(matches, *match)
	}

	slog.Info("Checked subreddit", "subreddit", subreddit, "posts", checked, "matches", len(matches))
	return matches, nil
}

// excludeByAuthor applies the user-quality gate. Lookup errors never
// exclude a post.
func (m *Monitor) excludeByAuthor(ctx context.Context, post model.Post, verdicts map[string]bool, now time.Time) bool {
	if !m.cfg.EnableUserFiltering {
		return false
	}
	if post.Author == "" || post.Author == "[deleted]" {
		return true
	}

	if verdict, ok := verdicts[post.Author]; ok {
		return verdict
	}

	info, err := m.source.AboutUser(ctx, post.Author)
	if err != nil {
		slog.Warn("Could not check author quality", "author", post.Author, "error", err)
		verdicts[post.Author] = false
		return false
	}

	exclude := false
	if m.cfg.MinAccountAgeDays > 0 {
		accountAge := now.Sub(time.Unix(int64(info.CreatedUTC), 0))
		if accountAge < time.Duration(m.cfg.MinAccountAgeDays)*24*time.Hour {
			exclude = true
		}
	}
	if !exclude && info.TotalKarma() < m.cfg.MinUserKarma {
		exclude = true
	}

	verdicts[post.Author] = exclude
	return exclude
}
