package rubric

import (
	"errors"
	"math"
	"testing"

	"video-judge/internal/models"
)

func scoresOf(values ...float64) []models.CategoryScore {
	out := make([]models.CategoryScore, len(values))
	for i, v := range values {
		out[i] = models.CategoryScore{Order: i + 1, Name: string(rune('a' + i)), Score: v, MaxScore: 5}
	}
	return out
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name      string
		scores    []models.CategoryScore
		wantPct   float64
		wantGrade string
	}{
		{"All fives", scoresOf(5, 5, 5, 5, 5, 5, 5, 5, 5, 5), 100, "A"},
		{"All zeros", scoresOf(0, 0, 0, 0, 0, 0, 0, 0, 0, 0), 0, "K"},
		{"Exactly ninety", scoresOf(4.5, 4.5), 90, "B"},
		{"Just under ninety", scoresOf(4.5, 4.4), 89, "B"},
		{"Mixed", scoresOf(4, 3), 70, "D"},
		{"Short list", scoresOf(3), 60, "E"},
		{"Above max stays A", scoresOf(5.5, 5.5), 110, "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card, err := Aggregate(tt.scores)
			if err != nil {
				t.Fatalf("Aggregate() error: %v", err)
			}
			if math.Abs(card.FinalPercentage()-tt.wantPct) > 1e-9 {
				t.Errorf("FinalPercentage() = %v, want %v", card.FinalPercentage(), tt.wantPct)
			}
			if card.Grade() != tt.wantGrade {
				t.Errorf("Grade() = %s, want %s", card.Grade(), tt.wantGrade)
			}
			if card.Len() != len(tt.scores) {
				t.Errorf("Len() = %d, want %d", card.Len(), len(tt.scores))
			}
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	card, err := Aggregate(nil)
	if card != nil {
		t.Error("expected nil scorecard")
	}
	var noScores *NoScoresError
	if !errors.As(err, &noScores) {
		t.Fatalf("error = %v, want *NoScoresError", err)
	}
}

func TestGrade(t *testing.T) {
	tests := []struct {
		pct  float64
		want byte
	}{
		{100, 'A'},
		{95, 'A'},
		{90.0001, 'A'},
		{90, 'B'},
		{80, 'C'},
		{79.9, 'C'},
		{0, 'K'},
		{-500, 'Z'},
		{250, 'A'},
	}

	for _, tt := range tests {
		if got := Grade(tt.pct); got != tt.want {
			t.Errorf("Grade(%v) = %c, want %c", tt.pct, got, tt.want)
		}
	}
}

func TestScorecardImmutable(t *testing.T) {
	in := scoresOf(4, 4)
	in[0].SponsorEvidence = []models.SponsorEvidence{{SponsorName: "FXN", Mentioned: true}}

	card, err := Aggregate(in)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}

	in[0].Score = 0
	in[0].SponsorEvidence[0].Mentioned = false
	out := card.Scores()
	out[1].Score = 0

	again := card.Scores()
	if again[0].Score != 4 || again[1].Score != 4 {
		t.Error("scorecard scores changed after mutating inputs or outputs")
	}
	if !again[0].SponsorEvidence[0].Mentioned {
		t.Error("sponsor evidence shared with caller slice")
	}
}
