package rubric

import "fmt"

// NoScoresError means the evaluator answered but not a single category could
// be read from the answer. RawText is kept so callers can show it.
type NoScoresError struct {
	RawText string
}

func (e *NoScoresError) Error() string {
	return "could not interpret evaluation response: no scored categories found"
}

// MalformedCategoryError describes one anchored section that was skipped.
// It never aborts a parse.
type MalformedCategoryError struct {
	Order  int
	Label  string
	Reason string
}

func (e *MalformedCategoryError) Error() string {
	return fmt.Sprintf("category %d (%s) skipped: %s", e.Order, e.Label, e.Reason)
}
