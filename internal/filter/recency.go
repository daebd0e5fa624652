package filter

import (
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
)

// IsRecent reports whether a post's age at the reference time falls within
// the window. Missing timestamps and future-dated posts fail closed: they
// are treated as not recent rather than raising.
func IsRecent(post model.Post, window time.Duration, now time.Time) bool {
	if post.CreatedAt.IsZero() {
		return false
	}

	age := now.Sub(post.CreatedAt)
	if age < 0 {
		return false
	}

	return age <= window
}
