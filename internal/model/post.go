package model

import (
	"strings"
	"time"
)

// Post represents a single candidate post pulled from a monitored subreddit.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Subreddit string    `json:"subreddit"`
	Flair     string    `json:"flair,omitempty"`
	Score     int       `json:"score"`
	Permalink string    `json:"permalink"`
}

// QualifiedID returns the post identifier qualified by its subreddit.
// Reddit IDs are stable per source but dedup keys must not assume
// cross-source uniqueness.
func (p Post) QualifiedID() string {
	return p.Subreddit + "/" + p.ID
}

// SearchText returns the text the keyword and similarity filters scan.
func (p Post) SearchText() string {
	if p.Body == "" {
		return p.Title
	}
	return p.Title + " " + p.Body
}

// URL returns the full permalink on reddit.com.
func (p Post) URL() string {
	if strings.HasPrefix(p.Permalink, "http") {
		return p.Permalink
	}
	return "https://reddit.com" + p.Permalink
}
