package dashboard

import (
	"strings"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/gorilla/feeds"
)

// Feed builds an RSS feed of recent matches so feed readers can follow
// the monitor's findings alongside the notification channels.
func Feed(matches []model.Match, baseURL string, now time.Time) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       "Ticketwatch Matches",
		Link:        &feeds.Link{Href: baseURL + "/feed.xml"},
		Description: "Ticket and giveaway posts matched on monitored subreddits",
		Created:     now,
	}

	for _, match := range recentFirst(matches, recentMatchLimit) {
		post := match.Post
		description := "r/" + post.Subreddit + " • u/" + post.Author
		if len(match.Keywords) > 0 {
			description += " • matched: " + strings.Join(match.Keywords, ", ")
		} else if match.Kind == model.MatchKindFlair {
			description += " • priority flair"
		}

		feed.Items = append(feed.Items, &feeds.Item{
			Title:       post.Title,
			Link:        &feeds.Link{Href: post.URL()},
			Description: description,
			Author:      &feeds.Author{Name: "u/" + post.Author},
			Created:     post.CreatedAt,
			Id:          post.QualifiedID(),
		})
	}

	return feed
}
