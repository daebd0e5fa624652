package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/clydeside/ticketwatch/internal/model"
	"github.com/samber/oops"
)

// historyRetention bounds the rolling window of past matches kept for the
// dashboard and the cross-run similarity dedup.
const historyRetention = 30 * 24 * time.Hour

type historyFile struct {
	Matches     []model.Match `json:"matches"`
	LastUpdated time.Time     `json:"last_updated"`
}

// History is the rolling record of matches that produced notifications.
// It feeds the dashboard and seeds the similarity dedup across runs.
type History struct {
	path    string
	mu      sync.RWMutex
	matches []model.Match
}

func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads the history file, degrading to an empty record on a missing
// or corrupt file.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	data, err := os.ReadFile(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			h.matches = nil
			return nil
		}
		return oops.With("path", h.path, "context", "reading match history").Wrap(err)
	}

	var contents historyFile
	if err := json.Unmarshal(data, &contents); err != nil {
		slog.Warn("Match history is corrupt, starting fresh", "path", h.path, "error", err)
		h.matches = nil
		return nil
	}

	h.matches = contents.Matches
	return nil
}

// Append adds matches and drops anything older than the retention window.
func (h *History) Append(now time.Time, matches ...model.Match) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.matches = append(h.matches, matches...)

	cutoff := now.Add(-historyRetention)
	kept := h.matches[:0]
	for _, match := range h.matches {
		if match.EvaluatedAt.After(cutoff) {
			kept = append(kept, match)
		}
	}
	h.matches = kept
}

// All returns a copy of the recorded matches, newest last.
func (h *History) All() []model.Match {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]model.Match, len(h.matches))
	copy(out, h.matches)
	return out
}

// Recent returns matches evaluated within the window, newest last.
func (h *History) Recent(window time.Duration, now time.Time) []model.Match {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cutoff := now.Add(-window)
	var out []model.Match
	for _, match := range h.matches {
		if match.EvaluatedAt.After(cutoff) {
			out = append(out, match)
		}
	}
	return out
}

// Save persists the history atomically.
func (h *History) Save() error {
	h.mu.RLock()
	contents := historyFile{
		Matches:     h.matches,
		LastUpdated: time.Now(),
	}
	data, err := json.MarshalIndent(contents, "", "  ")
	h.mu.RUnlock()
	if err != nil {
		return oops.With("path", h.path, "context", "marshaling match history").Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return oops.With("path", h.path, "context", "creating history directory").Wrap(err)
	}

	tmpPath := h.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return oops.With("path", tmpPath, "context", "writing temp history file").Wrap(err)
	}

	if err := os.Rename(tmpPath, h.path); err != nil {
		_ = os.Remove(tmpPath)
		return oops.With("path", h.path, "context", "replacing history file").Wrap(err)
	}

	return nil
}
