package dashboard

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
)

const recentMatchLimit = 25

// Render produces the static HTML summary of accumulated match history.
// The output is self-contained and suitable for static hosting.
func Render(matches []model.Match, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Ticketwatch Dashboard</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5; }
.container { max-width: 1000px; margin: 0 auto; }
.header { background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); color: white; padding: 30px; border-radius: 12px; margin-bottom: 30px; text-align: center; }
.stats-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 20px; margin-bottom: 30px; }
.stat-card { background: white; padding: 20px; border-radius: 12px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); text-align: center; }
.stat-number { font-size: 2.5em; font-weight: bold; color: #667eea; }
.stat-label { color: #666; margin-top: 5px; }
table { width: 100%; background: white; border-radius: 12px; border-collapse: collapse; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
th, td { text-align: left; padding: 12px; border-bottom: 1px solid #eee; }
th { background-color: #667eea; color: white; }
</style>
</head>
<body>
<div class="container">
<div class="header"><h1>🎫 Ticketwatch Dashboard</h1><p>Reddit ticket and giveaway monitoring</p></div>
`)

	stats := computeStats(matches, generatedAt)
	b.WriteString(`<div class="stats-grid">`)
	writeStatCard(&b, fmt.Sprintf("%d", stats.total), "Total matches (30 days)")
	writeStatCard(&b, fmt.Sprintf("%d", stats.lastWeek), "Matches this week")
	writeStatCard(&b, html.EscapeString(stats.topKeyword), "Top keyword")
	writeStatCard(&b, html.EscapeString(stats.topSubreddit), "Most active subreddit")
	b.WriteString(`</div>`)

	b.WriteString(`<h2>Recent matches</h2><table><tr><th>Posted</th><th>Title</th><th>Subreddit</th><th>Author</th><th>Matched on</th></tr>`)
	for _, match := range recentFirst(matches, recentMatchLimit) {
		post := match.Post
		matchedOn := strings.Join(match.Keywords, ", ")
		if match.Kind == model.MatchKindFlair {
			matchedOn = "priority flair"
		}
		fmt.Fprintf(&b, `<tr><td>%s</td><td><a href="%s">%s</a></td><td>r/%s</td><td>u/%s</td><td>%s</td></tr>`,
			post.CreatedAt.Format("2006-01-02 15:04"),
			post.URL(),
			html.EscapeString(post.Title),
			html.EscapeString(post.Subreddit),
			html.EscapeString(post.Author),
			html.EscapeString(matchedOn))
	}
	b.WriteString(`</table>`)

	fmt.Fprintf(&b, `<p style="color: #666; font-size: 12px; text-align: center;">Generated at %s</p>`,
		generatedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(`</div></body></html>`)

	return b.String()
}

type dashboardStats struct {
	total        int
	lastWeek     int
	topKeyword   string
	topSubreddit string
}

func computeStats(matches []model.Match, now time.Time) dashboardStats {
	stats := dashboardStats{
		total:        len(matches),
		topKeyword:   "—",
		topSubreddit: "—",
	}

	weekAgo := now.Add(-7 * 24 * time.Hour)
	keywordCounts := make(map[string]int)
	subredditCounts := make(map[string]int)

	for _, match := range matches {
		if match.EvaluatedAt.After(weekAgo) {
			stats.lastWeek++
		}
		for _, keyword := range match.Keywords {
			keywordCounts[keyword]++
		}
		subredditCounts[match.Post.Subreddit]++
	}

	stats.topKeyword = topOf(keywordCounts, stats.topKeyword)
	stats.topSubreddit = topOf(subredditCounts, stats.topSubreddit)
	return stats
}

func topOf(counts map[string]int, fallback string) string {
	best, bestCount := fallback, 0
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if counts[key] > bestCount {
			best, bestCount = key, counts[key]
		}
	}
	return best
}

func recentFirst(matches []model.Match, limit int) []model.Match {
	sorted := make([]model.Match, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EvaluatedAt.After(sorted[j].EvaluatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func writeStatCard(b *strings.Builder, number, label string) {
	fmt.Fprintf(b, `<div class="stat-card"><div class="stat-number">%s</div><div class="stat-label">%s</div></div>`, number, label)
}
