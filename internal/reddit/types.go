package reddit

// listing is the envelope Reddit wraps around /new and /search results.
type listing struct {
	Data struct {
		Children []struct {
			Data submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type submission struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Selftext      string  `json:"selftext"`
	Author        string  `json:"author"`
	CreatedUTC    float64 `json:"created_utc"`
	Subreddit     string  `json:"subreddit"`
	LinkFlairText string  `json:"link_flair_text"`
	Score         int     `json:"score"`
	Permalink     string  `json:"permalink"`
}

type aboutEnvelope struct {
	Data struct {
		CreatedUTC   float64 `json:"created_utc"`
		LinkKarma    int     `json:"link_karma"`
		CommentKarma int     `json:"comment_karma"`
	} `json:"data"`
}

// AuthorInfo carries the account metrics used by the user-quality gate.
type AuthorInfo struct {
	CreatedUTC   float64
	LinkKarma    int
	CommentKarma int
}

// TotalKarma is the combined link and comment karma.
func (a AuthorInfo) TotalKarma() int {
	return a.LinkKarma + a.CommentKarma
}
