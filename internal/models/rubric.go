package models

import "strings"

// SponsorRule awards Points only when the video explicitly says the sponsor
// was used and the evaluator quotes the exact words.
type SponsorRule struct {
	Name   string  `yaml:"name" json:"name"`
	Points float64 `yaml:"points" json:"points"`
}

type CategorySpec struct {
	Name         string        `yaml:"name" json:"name"`
	MaxScore     float64       `yaml:"max_score" json:"max_score"`
	Guideline    string        `yaml:"guideline" json:"guideline,omitempty"`
	SponsorRules []SponsorRule `yaml:"sponsors,omitempty" json:"sponsors,omitempty"`
}

// IsSponsorCategory reports whether the category carries sponsor rules.
func (c CategorySpec) IsSponsorCategory() bool {
	return len(c.SponsorRules) > 0
}

// Matches compares a label taken from evaluator output against the category
// name, ignoring case and surrounding markdown.
func (c CategorySpec) Matches(label string) bool {
	return strings.EqualFold(NormalizeLabel(label), NormalizeLabel(c.Name))
}

// NormalizeLabel strips emphasis markers, trailing colons and extra spaces.
func NormalizeLabel(label string) string {
	label = strings.Trim(label, " \t*_#:`")
	return strings.Join(strings.Fields(label), " ")
}
