package rubric

import (
	"math"

	"video-judge/internal/models"
)

// Aggregate computes the final percentage and letter grade. The catalog is
// assumed to share one max score, so the percentage is the mean score
// rescaled to 100: with a max of 5 that is mean*20.
func Aggregate(scores []models.CategoryScore) (*models.Scorecard, error) {
	if len(scores) == 0 {
		return nil, &NoScoresError{}
	}

	maxScore := scores[0].MaxScore
	if maxScore <= 0 {
		maxScore = defaultMaxScore
	}

	var sum float64
	for _, s := range scores {
		sum += s.Score
	}
	pct := (sum / float64(len(scores))) * (100 / maxScore)

	return models.NewScorecard(scores, pct, Grade(pct)), nil
}

// Grade maps a percentage to a letter in 10-point bands starting at 'A'.
// The index is floored first, then capped at 'Z'. Percentages above 100
// stay at 'A'.
func Grade(pct float64) byte {
	idx := math.Floor((100 - pct) / 10)
	if idx > 25 {
		idx = 25
	}
	if idx < 0 {
		idx = 0
	}
	return byte('A' + int(idx))
}
