package notify

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/samber/lo"
)

const (
	// Telegram rejects messages over 4096 characters; stop appending
	// posts well before that so the footer still fits.
	telegramMaxLength = 4096
	telegramSoftLimit = 3800
	discordMaxPosts   = 5
	slackMaxPosts     = 5
	pushoverMaxPosts  = 3
)

// BatchContext carries the run-level facts the formatters mention.
type BatchContext struct {
	Subreddits []string
	Keywords   []string
}

// FormatEmail renders the subject and HTML body for the mail channel.
func FormatEmail(matches []model.Match, bc BatchContext, now time.Time) (string, string) {
	var subject string
	if len(matches) == 1 {
		subject = fmt.Sprintf("🎫 Reddit Alert: %s", truncate(matches[0].Post.Title, 50))
	} else {
		subject = fmt.Sprintf("🎫 Reddit Alert: %d new posts found", len(matches))
	}

	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	b.WriteString(`<div style="max-width: 600px; margin: 0 auto; padding: 20px;">`)
	b.WriteString(`<h2 style="color: #2c5530;">🎫 New Reddit Posts Found!</h2>`)

	fmt.Fprintf(&b, `<div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px;">`)
	fmt.Fprintf(&b, "<p><strong>Monitoring:</strong> r/%s</p>", strings.Join(bc.Subreddits, ", r/"))
	fmt.Fprintf(&b, "<p><strong>Keywords:</strong> %s</p>", html.EscapeString(strings.Join(bc.Keywords, ", ")))
	fmt.Fprintf(&b, "<p><strong>Found:</strong> %d post%s</p></div>", len(matches), plural(len(matches)))

	for i, match := range matches {
		post := match.Post
		fmt.Fprintf(&b, `<div style="border: 1px solid #ddd; border-radius: 8px; padding: 20px; margin: 20px 0;">`)
		fmt.Fprintf(&b, `<h3 style="color: #1a73e8; margin-top: 0;">Post #%d: %s</h3>`, i+1, html.EscapeString(post.Title))
		fmt.Fprintf(&b, "<p><strong>Author:</strong> u/%s</p>", html.EscapeString(post.Author))
		fmt.Fprintf(&b, "<p><strong>Subreddit:</strong> r/%s</p>", html.EscapeString(post.Subreddit))
		fmt.Fprintf(&b, "<p><strong>Match type:</strong> %s</p>", match.Kind)
		if len(match.Keywords) > 0 {
			fmt.Fprintf(&b, "<p><strong>Matched on:</strong> %s</p>", html.EscapeString(strings.Join(match.Keywords, ", ")))
		}
		fmt.Fprintf(&b, "<p><strong>Posted:</strong> %s</p>", post.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&b, `<p><a href="%s" style="background-color: #4CAF50; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px;">View Post on Reddit</a></p>`, post.URL())
		b.WriteString(`</div>`)
	}

	fmt.Fprintf(&b, `<div style="color: #666; font-size: 12px;"><p>Checked at: %s</p></div>`, now.Format("2006-01-02 15:04:05"))
	b.WriteString(`</div></body></html>`)

	return subject, b.String()
}

// FormatTelegram renders a compact HTML message under Telegram's length
// ceiling, truncating the oldest excess content when it is exceeded.
func FormatTelegram(matches []model.Match, bc BatchContext, now time.Time) string {
	var header string
	if len(matches) == 1 {
		header = fmt.Sprintf("🎫 <b>Reddit Alert</b>\n%s", html.EscapeString(truncate(matches[0].Post.Title, 100)))
	} else {
		header = fmt.Sprintf("🎫 <b>Reddit Alert</b>\n%d new posts found!", len(matches))
	}

	parts := []string{
		header,
		"",
		fmt.Sprintf("📍 <b>Monitoring:</b> r/%s", strings.Join(bc.Subreddits, ", r/")),
		"",
	}

	for i, match := range matches {
		post := match.Post
		entry := []string{
			fmt.Sprintf("<b>Post #%d:</b> %s", i+1, html.EscapeString(truncate(post.Title, 120))),
			fmt.Sprintf("👤 u/%s in r/%s", html.EscapeString(post.Author), html.EscapeString(post.Subreddit)),
		}
		if len(match.Keywords) > 0 {
			entry = append(entry, fmt.Sprintf("🎯 %s", html.EscapeString(strings.Join(match.Keywords, ", "))))
		}
		entry = append(entry,
			fmt.Sprintf(`<a href="%s">View Post on Reddit</a>`, post.URL()),
			"")

		if len(strings.Join(append(parts, entry...), "\n")) > telegramSoftLimit {
			parts = append(parts, "... (more posts found, check email for full details)")
			break
		}
		parts = append(parts, entry...)
	}

	parts = append(parts, fmt.Sprintf("⏰ <i>Checked at: %s</i>", now.Format("2006-01-02 15:04:05")))

	return truncate(strings.Join(parts, "\n"), telegramMaxLength-3)
}

// FormatDiscord renders the webhook content for Discord, at most five posts.
func FormatDiscord(matches []model.Match) string {
	if len(matches) == 1 {
		post := matches[0].Post
		return fmt.Sprintf("🎫 **New Reddit Match Found!**\n\n**%s**\n👤 Posted by: u/%s\n📍 Subreddit: r/%s\n🏷️ Keywords: %s\n🔗 %s",
			post.Title, post.Author, post.Subreddit, keywordLine(matches[0]), post.URL())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎫 **%d New Reddit Matches Found!**\n\n", len(matches))
	for i, match := range lo.Slice(matches, 0, discordMaxPosts) {
		post := match.Post
		fmt.Fprintf(&b, "**%d. %s**\nr/%s • u/%s • %s\n%s\n\n",
			i+1, truncate(post.Title, 60), post.Subreddit, post.Author, keywordLine(match), post.URL())
	}
	if len(matches) > discordMaxPosts {
		fmt.Fprintf(&b, "... and %d more matches", len(matches)-discordMaxPosts)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSlack renders the webhook text for Slack, at most five posts.
func FormatSlack(matches []model.Match) string {
	if len(matches) == 1 {
		post := matches[0].Post
		return fmt.Sprintf(":ticket: *New Reddit Match Found!*\n\n*%s*\nPosted by: u/%s in r/%s\nKeywords: %s\n<%s|View on Reddit>",
			post.Title, post.Author, post.Subreddit, keywordLine(matches[0]), post.URL())
	}

	var b strings.Builder
	fmt.Fprintf(&b, ":ticket: *%d New Reddit Matches Found!*\n\n", len(matches))
	for i, match := range lo.Slice(matches, 0, slackMaxPosts) {
		post := match.Post
		fmt.Fprintf(&b, "*%d. %s*\nr/%s • u/%s • %s\n<%s|View>\n\n",
			i+1, truncate(post.Title, 60), post.Subreddit, post.Author, keywordLine(match), post.URL())
	}
	if len(matches) > slackMaxPosts {
		fmt.Fprintf(&b, "... and %d more matches", len(matches)-slackMaxPosts)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatPushover renders title, message and url for Pushover, at most
// three posts.
func FormatPushover(matches []model.Match) (string, string, string) {
	if len(matches) == 1 {
		match := matches[0]
		post := match.Post
		message := fmt.Sprintf("%s\n\nr/%s • u/%s\nKeywords: %s\nPosted: %s",
			post.Title, post.Subreddit, post.Author, keywordLine(match),
			post.CreatedAt.Format("2006-01-02 15:04:05"))
		return "🎫 Reddit Match Found", message, post.URL()
	}

	var b strings.Builder
	for i, match := range lo.Slice(matches, 0, pushoverMaxPosts) {
		post := match.Post
		fmt.Fprintf(&b, "%d. %s\n   r/%s • %s\n\n", i+1, truncate(post.Title, 50), post.Subreddit, keywordLine(match))
	}
	if len(matches) > pushoverMaxPosts {
		fmt.Fprintf(&b, "... and %d more matches", len(matches)-pushoverMaxPosts)
	}

	title := fmt.Sprintf("🎫 %d Reddit Matches Found", len(matches))
	return title, strings.TrimRight(b.String(), "\n"), ""
}

func keywordLine(match model.Match) string {
	if match.Kind == model.MatchKindFlair {
		return "priority flair"
	}
	return strings.Join(match.Keywords, ", ")
}

// truncate cuts s to at most max bytes plus an ellipsis, backing up to a
// rune boundary so a cut inside a multi-byte character never emits
// invalid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
