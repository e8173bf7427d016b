package youtube

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"strings"
)

// pickTrack prefers a manual track in lang, then an auto-generated one in
// lang, then any manual track, then the first track.
func pickTrack(tracks []captionTrack, lang string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}

	matches := func(t captionTrack) bool {
		return lang != "" && (t.LanguageCode == lang || strings.HasPrefix(t.LanguageCode, lang+"-"))
	}

	for _, t := range tracks {
		if matches(t) && t.Kind != "asr" {
			return t, true
		}
	}
	for _, t := range tracks {
		if matches(t) {
			return t, true
		}
	}
	for _, t := range tracks {
		if t.Kind != "asr" {
			return t, true
		}
	}
	return tracks[0], true
}

// fetchTranscript downloads a timedtext track and flattens it to one line.
func (l *HTTPLoader) fetchTranscript(ctx context.Context, track captionTrack) (string, error) {
	body, err := l.get(ctx, track.BaseURL)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNoTranscript
		}
		return "", err
	}
	return parseTimedText(body)
}

// parseTimedText extracts caption text from both the legacy <text> format and
// the srv3 <p> format, joining entries with single spaces.
func parseTimedText(data []byte) (string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return "", ErrNoTranscript
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false

	var (
		entries []string
		current strings.Builder
		depth   int
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse captions: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "text" || t.Name.Local == "p" {
				depth++
			}
		case xml.CharData:
			if depth > 0 {
				current.Write(t)
			}
		case xml.EndElement:
			if (t.Name.Local == "text" || t.Name.Local == "p") && depth > 0 {
				depth--
				if depth == 0 {
					if text := cleanCaption(current.String()); text != "" {
						entries = append(entries, text)
					}
					current.Reset()
				}
			}
		}
	}

	if len(entries) == 0 {
		return "", ErrNoTranscript
	}
	return strings.Join(entries, " "), nil
}

// cleanCaption undoes the double HTML escaping timedtext uses and collapses
// whitespace.
func cleanCaption(s string) string {
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
