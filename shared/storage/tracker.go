package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Tracker persists which videos have been evaluated, and with what result, so
// scheduled runs skip videos already reported within maxAge.
type Tracker struct {
	filePath string
	entries  map[string]Evaluation
	mu       sync.RWMutex
	maxAge   time.Duration
}

// Evaluation is the stored outcome of one evaluated video.
type Evaluation struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title,omitempty"`
	Percentage  float64   `json:"percentage"`
	Grade       string    `json:"grade"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

func NewTracker(dataDir string, maxAge time.Duration) (*Tracker, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	t := &Tracker{
		filePath: filepath.Join(dataDir, "evaluated_videos.json"),
		entries:  make(map[string]Evaluation),
		maxAge:   maxAge,
	}

	if err := t.load(); err != nil {
		return nil, fmt.Errorf("failed to load tracker data: %w", err)
	}
	t.cleanup()

	return t, nil
}

// IsEvaluated reports whether videoID was evaluated within maxAge.
func (t *Tracker) IsEvaluated(videoID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[videoID]
	if !ok {
		return false
	}
	return time.Since(e.EvaluatedAt) < t.maxAge
}

func (t *Tracker) Get(videoID string) (Evaluation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.entries[videoID]
	return e, ok
}

// Record stores e, stamping EvaluatedAt if unset, and persists the file.
func (t *Tracker) Record(e Evaluation) error {
	if e.VideoID == "" {
		return fmt.Errorf("video id is required")
	}
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = time.Now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[e.VideoID] = e
	return t.save()
}

func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// List returns all entries, most recent first.
func (t *Tracker) List() []Evaluation {
	t.mu.RLock()
	out := make([]Evaluation, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].EvaluatedAt.After(out[j].EvaluatedAt)
	})
	return out
}

func (t *Tracker) cleanup() {
	cutoff := time.Now().Add(-t.maxAge)
	for id, e := range t.entries {
		if e.EvaluatedAt.Before(cutoff) {
			delete(t.entries, id)
		}
	}
}

func (t *Tracker) load() error {
	file, err := os.Open(t.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open tracker file: %w", err)
	}
	defer file.Close()

	var stored []Evaluation
	if err := json.NewDecoder(file).Decode(&stored); err != nil {
		return fmt.Errorf("failed to decode tracker data: %w", err)
	}

	for _, e := range stored {
		t.entries[e.VideoID] = e
	}
	return nil
}

// save writes through a temp file so a crash never leaves a torn file.
func (t *Tracker) save() error {
	stored := make([]Evaluation, 0, len(t.entries))
	for _, e := range t.entries {
		stored = append(stored, e)
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].VideoID < stored[j].VideoID })

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracker data: %w", err)
	}

	tmp := t.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write tracker file: %w", err)
	}
	if err := os.Rename(tmp, t.filePath); err != nil {
		return fmt.Errorf("failed to replace tracker file: %w", err)
	}
	return nil
}
