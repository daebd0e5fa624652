package notify

import (
	"context"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
)

// Channel is one independent outbound notification transport. Channels are
// unordered and failure-isolated: the dispatcher never lets one channel's
// error stop the others.
type Channel interface {
	Name() string
	// Send delivers a formatted batch of matches.
	Send(ctx context.Context, matches []model.Match) error
	// Notify delivers a plain text message, used for test notifications
	// and for self-reporting systemic failures through surviving channels.
	Notify(ctx context.Context, subject, text string) error
}

// TestMatch returns the canned match used by test notifications.
func TestMatch(now time.Time) model.Match {
	return model.Match{
		Post: model.Post{
			ID:        "test_post",
			Title:     "🎫 TEST: Free Concert Tickets Available",
			Author:    "test_user",
			CreatedAt: now,
			Subreddit: "glasgow",
			Score:     10,
			Permalink: "/r/glasgow/test",
		},
		Keywords:    []string{"free ticket", "test"},
		Kind:        model.MatchKindKeyword,
		EvaluatedAt: now,
	}
}
