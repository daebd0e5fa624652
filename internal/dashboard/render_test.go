package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
)

func sampleMatches(now time.Time) []model.Match {
	return []model.Match{
		{
			Post: model.Post{
				ID:        "a1",
				Title:     "Free ticket for <tonight>",
				Author:    "alice",
				Subreddit: "glasgow",
				CreatedAt: now.Add(-2 * time.Hour),
				Permalink: "/r/glasgow/comments/a1/free_ticket/",
			},
			Keywords:    []string{"free ticket"},
			Kind:        model.MatchKindKeyword,
			EvaluatedAt: now.Add(-2 * time.Hour),
		},
		{
			Post: model.Post{
				ID:        "b2",
				Title:     "Two spares, flair tagged",
				Author:    "bob",
				Subreddit: "glasgow",
				CreatedAt: now.Add(-10 * 24 * time.Hour),
				Permalink: "/r/glasgow/comments/b2/two_spares/",
			},
			Kind:        model.MatchKindFlair,
			EvaluatedAt: now.Add(-10 * 24 * time.Hour),
		},
	}
}

func TestRender(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	page := Render(sampleMatches(now), now)

	if !strings.Contains(page, "Free ticket for &lt;tonight&gt;") {
		t.Error("post title not HTML-escaped in output")
	}
	if !strings.Contains(page, "priority flair") {
		t.Error("flair match not labelled priority flair")
	}
	if !strings.Contains(page, `href="https://reddit.com/r/glasgow/comments/a1/free_ticket/"`) {
		t.Error("post permalink not linked")
	}

	// total 2, one inside the last week
	if !strings.Contains(page, `<div class="stat-number">2</div>`) {
		t.Error("total match count missing")
	}
	if !strings.Contains(page, `<div class="stat-number">1</div>`) {
		t.Error("last-week match count missing")
	}
}

func TestRender_Empty(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	page := Render(nil, now)

	if !strings.Contains(page, "—") {
		t.Error("empty dashboard should show placeholder stats")
	}
	if !strings.Contains(page, "Ticketwatch Dashboard") {
		t.Error("header missing")
	}
}

func TestComputeStats_TopCounts(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	matches := []model.Match{
		{Post: model.Post{Subreddit: "glasgow"}, Keywords: []string{"giveaway"}, EvaluatedAt: now},
		{Post: model.Post{Subreddit: "glasgow"}, Keywords: []string{"free ticket"}, EvaluatedAt: now},
		{Post: model.Post{Subreddit: "glasgowmarket"}, Keywords: []string{"free ticket"}, EvaluatedAt: now},
	}

	stats := computeStats(matches, now)
	if stats.topKeyword != "free ticket" {
		t.Errorf("topKeyword = %q, want free ticket", stats.topKeyword)
	}
	if stats.topSubreddit != "glasgow" {
		t.Errorf("topSubreddit = %q, want glasgow", stats.topSubreddit)
	}
}

func TestFeed(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	feed := Feed(sampleMatches(now), "http://localhost:8080", now)

	if feed.Link.Href != "http://localhost:8080/feed.xml" {
		t.Errorf("feed link = %q", feed.Link.Href)
	}
	if len(feed.Items) != 2 {
		t.Fatalf("got %d feed items, want 2", len(feed.Items))
	}

	// Newest first
	if feed.Items[0].Id != "glasgow/a1" {
		t.Errorf("first item id = %q, want glasgow/a1", feed.Items[0].Id)
	}
	if !strings.Contains(feed.Items[0].Description, "matched: free ticket") {
		t.Errorf("keyword match description = %q", feed.Items[0].Description)
	}
	if !strings.Contains(feed.Items[1].Description, "priority flair") {
		t.Errorf("flair match description = %q", feed.Items[1].Description)
	}
}
