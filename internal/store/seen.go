package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/oops"
)

// seenFile is the on-disk shape of the seen-post ledger.
type seenFile struct {
	SeenPosts   map[string]time.Time `json:"seen_posts"`
	LastUpdated time.Time            `json:"last_updated"`
	TotalPosts  int                  `json:"total_posts"`
}

// FileSeenStore is the durable ledger of qualified post IDs that have
// already triggered a notification. Once an ID is recorded it never
// re-triggers. Entries are insert-only during a run and pruned by age at
// run start.
type FileSeenStore struct {
	path string
	mu   sync.RWMutex
	seen map[string]time.Time
}

func NewFileSeenStore(path string) *FileSeenStore {
	return &FileSeenStore{
		path: path,
		seen: make(map[string]time.Time),
	}
}

// Load reads the ledger from disk. A missing file starts an empty set; a
// corrupt file is set aside as <path>.broken and the run proceeds with an
// empty set rather than failing.
func (s *FileSeenStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.seen = make(map[string]time.Time)
			return nil
		}
		return oops.With("path", s.path, "context", "reading seen-post store").Wrap(err)
	}

	var contents seenFile
	if err := json.Unmarshal(data, &contents); err != nil {
		brokenPath := s.path + ".broken"
		_ = os.WriteFile(brokenPath, data, 0644)
		slog.Warn("Seen-post store is corrupt, starting from an empty set",
			"path", s.path, "moved_to", brokenPath, "error", err)
		s.seen = make(map[string]time.Time)
		return nil
	}

	if contents.SeenPosts == nil {
		contents.SeenPosts = make(map[string]time.Time)
	}
	s.seen = contents.SeenPosts
	return nil
}

// Contains reports whether a qualified post ID has already been notified on.
func (s *FileSeenStore) Contains(qualifiedID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.seen[qualifiedID]
	return ok
}

// Record marks a qualified post ID as notified.
func (s *FileSeenStore) Record(qualifiedID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seen[qualifiedID] = at
}

// Prune drops entries older than maxAge and returns how many were removed.
func (s *FileSeenStore) Prune(maxAge time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-maxAge)
	removed := 0
	for id, recordedAt := range s.seen {
		if recordedAt.Before(cutoff) {
			delete(s.seen, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of recorded entries.
func (s *FileSeenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.seen)
}

// Save persists the ledger atomically via a temp file and rename, so a
// crash mid-write never leaves a partial store behind.
func (s *FileSeenStore) Save() error {
	s.mu.RLock()
	contents := seenFile{
		SeenPosts:   s.seen,
		LastUpdated: time.Now(),
		TotalPosts:  len(s.seen),
	}
	data, err := json.MarshalIndent(contents, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return oops.With("path", s.path, "context", "marshaling seen-post store").Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return oops.With("path", s.path, "context", "creating store directory").Wrap(err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return oops.With("path", tmpPath, "context", "writing temp store file").Wrap(err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return oops.With("path", s.path, "context", "replacing store file").Wrap(err)
	}

	return nil
}
