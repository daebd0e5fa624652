package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/samber/oops"
)

const defaultBaseURL = "https://www.reddit.com"

// Client pulls candidate posts from Reddit's public JSON endpoints.
// It is a thin transport wrapper; the pipeline never depends on its
// wire details.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

func NewClient(userAgent string) *Client {
	return &Client{
		baseURL:   defaultBaseURL,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetBaseURL overrides the API endpoint, used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

// ListNew returns up to limit of the newest posts in a subreddit.
func (c *Client) ListNew(ctx context.Context, subreddit string, limit int) ([]model.Post, error) {
	endpoint := fmt.Sprintf("%s/r/%s/new.json?limit=%d", c.baseURL, url.PathEscape(subreddit), limit)
	return c.fetchListing(ctx, subreddit, endpoint)
}

// SearchFlair returns recent posts in a subreddit carrying an exact flair.
func (c *Client) SearchFlair(ctx context.Context, subreddit, flair string, limit int) ([]model.Post, error) {
	query := url.Values{}
	query.Set("q", fmt.Sprintf("flair:%q", flair))
	query.Set("restrict_sr", "on")
	query.Set("sort", "new")
	query.Set("t", "day")
	query.Set("limit", fmt.Sprintf("%d", limit))

	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s", c.baseURL, url.PathEscape(subreddit), query.Encode())
	return c.fetchListing(ctx, subreddit, endpoint)
}

// AboutUser returns account metrics for the user-quality gate.
func (c *Client) AboutUser(ctx context.Context, username string) (AuthorInfo, error) {
	endpoint := fmt.Sprintf("%s/user/%s/about.json", c.baseURL, url.PathEscape(username))

	var envelope aboutEnvelope
	if err := c.getJSON(ctx, endpoint, &envelope); err != nil {
		return AuthorInfo{}, oops.With("username", username).Wrap(err)
	}

	return AuthorInfo{
		CreatedUTC:   envelope.Data.CreatedUTC,
		LinkKarma:    envelope.Data.LinkKarma,
		CommentKarma: envelope.Data.CommentKarma,
	}, nil
}

func (c *Client) fetchListing(ctx context.Context, subreddit, endpoint string) ([]model.Post, error) {
	var page listing
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, oops.With("subreddit", subreddit).Wrap(err)
	}

	posts := make([]model.Post, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		posts = append(posts, toPost(child.Data))
	}

	return posts, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return oops.With("endpoint", endpoint).Wrap(err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return oops.With("endpoint", endpoint).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return oops.With("endpoint", endpoint, "status", resp.StatusCode).
			Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return oops.With("endpoint", endpoint, "context", "decoding response").Wrap(err)
	}

	return nil
}

func toPost(s submission) model.Post {
	var createdAt time.Time
	if s.CreatedUTC > 0 {
		createdAt = time.Unix(int64(s.CreatedUTC), 0)
	}

	author := s.Author
	if author == "" {
		author = "[deleted]"
	}

	return model.Post{
		ID:        s.ID,
		Title:     s.Title,
		Body:      s.Selftext,
		Author:    author,
		CreatedAt: createdAt,
		Subreddit: s.Subreddit,
		Flair:     s.LinkFlairText,
		Score:     s.Score,
		Permalink: s.Permalink,
	}
}
