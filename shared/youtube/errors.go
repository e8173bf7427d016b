package youtube

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL   = errors.New("not a YouTube video URL")
	ErrNotFound     = errors.New("video not found")
	ErrNoTranscript = errors.New("no transcript available")
)

// FetchError reports why content for a video could not be assembled.
// Err is one of the sentinels above or the underlying transport error.
type FetchError struct {
	VideoID string
	Err     error
}

func (e *FetchError) Error() string {
	if e.VideoID == "" {
		return fmt.Sprintf("fetch failed: %v", e.Err)
	}
	return fmt.Sprintf("fetch %s failed: %v", e.VideoID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
