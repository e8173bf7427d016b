package models

import "encoding/json"

type SponsorEvidence struct {
	SponsorName string `json:"sponsor_name"`
	Mentioned   bool   `json:"mentioned"`
	Quote       string `json:"quote,omitempty"`
}

type CategoryScore struct {
	Order           int               `json:"order"`
	Name            string            `json:"name"`
	Score           float64           `json:"score"`
	MaxScore        float64           `json:"max_score"`
	Justification   string            `json:"justification"`
	SponsorEvidence []SponsorEvidence `json:"sponsor_evidence,omitempty"`
}

// OutOfRange flags scores outside [0, MaxScore]. The parser never clamps, so
// callers decide what to do with these.
func (c CategoryScore) OutOfRange() bool {
	return c.Score < 0 || (c.MaxScore > 0 && c.Score > c.MaxScore)
}

// Scorecard is the immutable result of one evaluation run.
type Scorecard struct {
	scores          []CategoryScore
	finalPercentage float64
	grade           byte
}

func NewScorecard(scores []CategoryScore, finalPercentage float64, grade byte) *Scorecard {
	return &Scorecard{
		scores:          copyScores(scores),
		finalPercentage: finalPercentage,
		grade:           grade,
	}
}

// Scores returns a copy of the category scores in appearance order.
func (s *Scorecard) Scores() []CategoryScore {
	return copyScores(s.scores)
}

func (s *Scorecard) FinalPercentage() float64 {
	return s.finalPercentage
}

func (s *Scorecard) Grade() string {
	return string(s.grade)
}

func (s *Scorecard) Len() int {
	return len(s.scores)
}

func (s *Scorecard) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Scores          []CategoryScore `json:"scores"`
		FinalPercentage float64         `json:"final_percentage"`
		Grade           string          `json:"grade"`
	}{
		Scores:          s.scores,
		FinalPercentage: s.finalPercentage,
		Grade:           s.Grade(),
	})
}

func copyScores(in []CategoryScore) []CategoryScore {
	out := make([]CategoryScore, len(in))
	for i, cs := range in {
		if cs.SponsorEvidence != nil {
			cs.SponsorEvidence = append([]SponsorEvidence(nil), cs.SponsorEvidence...)
		}
		out[i] = cs
	}
	return out
}
