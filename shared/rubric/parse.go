package rubric

import (
	"regexp"
	"strconv"
	"strings"

	"video-judge/internal/models"
)

const defaultMaxScore = 5

var (
	anchorPattern    = regexp.MustCompile(`(?s)^[#*_\s]*(\d+)\.\s+(.*?)\(Score\s*/\s*(\d+(?:\.\d+)?)\):[*_]*`)
	scorePattern     = regexp.MustCompile(`Score:[*_\s]*(\d+(?:\.\d+)?)`)
	verdictPattern   = regexp.MustCompile(`(?i)^(yes|no)\b(/\w+)?`)
	pointsRule       = regexp.MustCompile(`(?i)^\d+(?:\.\d+)?\s+points?\b`)
	quotePrefix      = regexp.MustCompile(`(?i)^(exact\s+)?quote\s*:\s*`)
	quoteTrimChars   = "\"'`“”‘’ "
	verdictTrimChars = " \t*_[]"
)

// Parser turns free-text evaluator output into category scores. It keeps
// only the catalog it was built with, so one Parser can serve concurrent
// callers.
type Parser struct {
	categories []models.CategorySpec
	sponsors   map[string]*regexp.Regexp
}

// NewParser builds a parser for the given catalog. Every anchored label with
// a score is kept; the catalog only supplies canonical names, max scores and
// the sponsor rules.
func NewParser(categories []models.CategorySpec) *Parser {
	p := &Parser{
		categories: append([]models.CategorySpec(nil), categories...),
		sponsors:   make(map[string]*regexp.Regexp),
	}
	for _, c := range p.categories {
		for _, rule := range c.SponsorRules {
			if _, ok := p.sponsors[rule.Name]; !ok {
				p.sponsors[rule.Name] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(rule.Name) + `[*_ \t]*:`)
			}
		}
	}
	return p
}

// Parse returns the matched categories in appearance order. Malformed
// sections are dropped; an empty result is not an error here.
func (p *Parser) Parse(raw string) []models.CategoryScore {
	scores, _ := p.ParseDetailed(raw)
	return scores
}

// ParseDetailed is Parse plus one *MalformedCategoryError per anchored
// section that had to be skipped.
func (p *Parser) ParseDetailed(raw string) ([]models.CategoryScore, []error) {
	var (
		scores  []models.CategoryScore
		skipped []error
	)

	for _, segment := range splitSegments(raw) {
		m := anchorPattern.FindStringSubmatchIndex(segment)
		if m == nil {
			continue
		}

		order, _ := strconv.Atoi(segment[m[2]:m[3]])
		label := models.NormalizeLabel(segment[m[4]:m[5]])
		headerMax, _ := strconv.ParseFloat(segment[m[6]:m[7]], 64)
		body := segment[m[1]:]

		if label == "" {
			skipped = append(skipped, &MalformedCategoryError{Order: order, Reason: "missing label"})
			continue
		}
		spec := p.lookup(label)

		sm := scorePattern.FindStringSubmatchIndex(body)
		if sm == nil {
			skipped = append(skipped, &MalformedCategoryError{Order: order, Label: label, Reason: "no numeric score"})
			continue
		}
		score, err := strconv.ParseFloat(body[sm[2]:sm[3]], 64)
		if err != nil {
			skipped = append(skipped, &MalformedCategoryError{Order: order, Label: label, Reason: "invalid score"})
			continue
		}

		cs := models.CategoryScore{
			Order:         order,
			Name:          label,
			Score:         score,
			MaxScore:      headerMax,
			Justification: removeLine(body, sm[0]),
		}
		if spec != nil {
			if spec.Matches(label) {
				cs.Name = models.NormalizeLabel(spec.Name)
			}
			if spec.MaxScore > 0 {
				cs.MaxScore = spec.MaxScore
			}
			if spec.IsSponsorCategory() {
				cs.SponsorEvidence = p.extractSponsorEvidence(cs.Justification, spec.SponsorRules)
			}
		}

		scores = replaceOrAppend(scores, cs)
	}

	return scores, skipped
}

// lookup resolves a label against the catalog: an exact name first, then
// the single category whose words contain, or are contained in, the label's
// words ("Autonomy" for "Autonomy Assessment"). Ambiguous or unknown labels
// return nil and keep their own name and header max.
func (p *Parser) lookup(label string) *models.CategorySpec {
	for i := range p.categories {
		if p.categories[i].Matches(label) {
			return &p.categories[i]
		}
	}

	words := labelWords(label)
	var found *models.CategorySpec
	for i := range p.categories {
		name := labelWords(p.categories[i].Name)
		if !subsetOf(words, name) && !subsetOf(name, words) {
			continue
		}
		if found != nil {
			return nil
		}
		found = &p.categories[i]
	}
	return found
}

func labelWords(label string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(models.NormalizeLabel(label))) {
		words[w] = true
	}
	return words
}

func subsetOf(a, b map[string]bool) bool {
	if len(a) == 0 {
		return false
	}
	for w := range a {
		if !b[w] {
			return false
		}
	}
	return true
}

// splitSegments yields maximal runs of non-blank lines.
func splitSegments(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var (
		segments []string
		current  []string
	)
	flush := func() {
		if len(current) > 0 {
			segments = append(segments, strings.TrimSpace(strings.Join(current, "\n")))
			current = current[:0]
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()

	return segments
}

// removeLine drops the whole line containing byte offset pos.
func removeLine(text string, pos int) string {
	start := strings.LastIndex(text[:pos], "\n") + 1
	end := strings.Index(text[pos:], "\n")
	if end == -1 {
		end = len(text)
	} else {
		end += pos + 1
	}
	return strings.TrimSpace(text[:start] + text[end:])
}

// replaceOrAppend implements last-match-wins: an earlier score for the same
// category is removed and the new one goes to the end.
func replaceOrAppend(scores []models.CategoryScore, cs models.CategoryScore) []models.CategoryScore {
	for i := range scores {
		if strings.EqualFold(scores[i].Name, cs.Name) {
			scores = append(scores[:i], scores[i+1:]...)
			break
		}
	}
	return append(scores, cs)
}

// extractSponsorEvidence records one entry per sponsor in the order the
// sponsor's lines first appear. A line counts as a mention only when its
// verdict is Yes; a later Yes line upgrades an earlier non-mention. Template
// lines such as "[Yes/No]" or "2 points ONLY if ..." are ignored.
func (p *Parser) extractSponsorEvidence(text string, rules []models.SponsorRule) []models.SponsorEvidence {
	var evidence []models.SponsorEvidence
	index := make(map[string]int, len(rules))

	for _, line := range strings.Split(text, "\n") {
		for _, rule := range rules {
			rest, ok := p.afterSponsorLabel(line, rule.Name)
			if !ok {
				continue
			}

			rest = strings.TrimLeft(rest, verdictTrimChars)
			if pointsRule.MatchString(rest) {
				continue
			}
			vm := verdictPattern.FindStringSubmatch(rest)
			if vm != nil && vm[2] != "" {
				continue
			}

			ev := models.SponsorEvidence{
				SponsorName: rule.Name,
				Mentioned:   vm != nil && strings.EqualFold(vm[1], "yes"),
			}
			if ev.Mentioned {
				ev.Quote = extractQuote(rest[len(vm[0]):])
			}

			if i, seen := index[rule.Name]; seen {
				if ev.Mentioned && !evidence[i].Mentioned {
					evidence[i] = ev
				}
				break
			}
			index[rule.Name] = len(evidence)
			evidence = append(evidence, ev)
			break
		}
	}

	return evidence
}

// afterSponsorLabel finds "<name>:" in line, allowing markdown emphasis
// around the name, and returns the text after the colon.
func (p *Parser) afterSponsorLabel(line, name string) (string, bool) {
	label, ok := p.sponsors[name]
	if !ok {
		return "", false
	}
	loc := label.FindStringIndex(line)
	if loc == nil {
		return "", false
	}
	return line[loc[1]:], true
}

func extractQuote(s string) string {
	s = strings.TrimLeft(s, verdictTrimChars+"-–—:,.")
	s = quotePrefix.ReplaceAllString(s, "")
	return strings.Trim(s, quoteTrimChars)
}
