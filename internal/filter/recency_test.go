package filter

import (
	"testing"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
)

func TestIsRecent(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	window := 7 * 24 * time.Hour

	tests := []struct {
		name      string
		createdAt time.Time
		want      bool
	}{
		{
			name:      "post inside the window",
			createdAt: now.Add(-24 * time.Hour),
			want:      true,
		},
		{
			name:      "post exactly at the window edge",
			createdAt: now.Add(-window),
			want:      true,
		},
		{
			name:      "post older than the window",
			createdAt: now.Add(-window - time.Minute),
			want:      false,
		},
		{
			name:      "missing timestamp fails closed",
			createdAt: time.Time{},
			want:      false,
		},
		{
			name:      "future-dated post fails closed",
			createdAt: now.Add(time.Hour),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := model.Post{ID: "abc", CreatedAt: tt.createdAt}
			if got := IsRecent(post, window, now); got != tt.want {
				t.Errorf("IsRecent() = %v, want %v", got, tt.want)
			}
		})
	}
}
