package rubric

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"video-judge/internal/models"
)

// Builder renders the evaluation prompt for a fixed category catalog.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	categories []models.CategorySpec
}

func NewBuilder(categories []models.CategorySpec) *Builder {
	return &Builder{categories: append([]models.CategorySpec(nil), categories...)}
}

// SystemPrompt is the evaluator persona sent alongside every prompt.
func SystemPrompt() string {
	return strings.TrimSpace(`
You are a Hackathon Project Evaluator: an expert at evaluating hackathon projects,
with deep knowledge of blockchain technology, AI, and sponsor integrations.
You provide detailed scoring across multiple categories and follow the requested
output format exactly.
	`)
}

// Marker is the literal header suffix every category block carries, for
// example "(Score /5):". The parser anchors on it.
func Marker(maxScore float64) string {
	return fmt.Sprintf("(Score /%s):", formatScore(maxScore))
}

// Build renders the prompt. Identical inputs always give identical output.
func (b *Builder) Build(req models.EvaluationRequest) string {
	categories := req.Categories
	if len(categories) == 0 {
		categories = b.categories
	}

	var buf bytes.Buffer
	marker := Marker(uniformMax(categories))

	buf.WriteString("Analyze the following hackathon project video and provide a detailed evaluation. ")
	buf.WriteString("For each category, provide a score and detailed justification.\n")
	fmt.Fprintf(&buf, "Use EXACTLY this format for each category (including the exact text %q in the headers). ", strings.TrimSuffix(strings.TrimPrefix(marker, "("), ")"))
	buf.WriteString("Separate categories with one blank line and do not put blank lines inside a category.\n\n")

	for i, c := range categories {
		fmt.Fprintf(&buf, "%d. %s %s\n", i+1, models.NormalizeLabel(c.Name), marker)
		buf.WriteString("Score: X\n")
		if c.IsSponsorCategory() {
			writeSponsorRules(&buf, c)
		} else {
			buf.WriteString("[Detailed justification...]\n")
		}
		buf.WriteString("\n")
	}

	buf.WriteString("Scoring Guidelines:\n")
	for _, c := range categories {
		if c.IsSponsorCategory() {
			fmt.Fprintf(&buf, "- %s:\n", models.NormalizeLabel(c.Name))
			buf.WriteString("  * ONLY award points for EXPLICIT mentions of using sponsor technology\n")
			buf.WriteString("  * Must quote exact words from video for any points awarded\n")
			buf.WriteString("  * Zero points if no explicit sponsor usage is mentioned\n")
			continue
		}
		if c.Guideline == "" {
			continue
		}
		fmt.Fprintf(&buf, "- %s: %s\n", models.NormalizeLabel(c.Name), c.Guideline)
	}

	buf.WriteString("\nVideo to analyze:\n")
	fmt.Fprintf(&buf, "Title: %s\n", req.Title)
	fmt.Fprintf(&buf, "Author: %s\n", req.Author)
	fmt.Fprintf(&buf, "Content: %s\n\n", req.Transcript)
	fmt.Fprintf(&buf, "Additional Focus: %s\n\n", req.FocusQuery)

	buf.WriteString("Remember:\n")
	buf.WriteString("1. Use the EXACT format specified above\n")
	buf.WriteString("2. Include \"Score: X\" for each category, where X is a number\n")
	if hasSponsorCategory(categories) {
		buf.WriteString("3. For sponsor integration, ONLY award points for EXPLICIT mentions of using sponsor technology\n")
		buf.WriteString("4. Quote EXACT words for any sponsor points awarded\n")
		buf.WriteString("5. Score MUST be 0 for sponsors if no explicit usage is mentioned\n")
	}

	return buf.String()
}

func writeSponsorRules(buf *bytes.Buffer, c models.CategorySpec) {
	buf.WriteString("[CRITICAL SCORING INSTRUCTIONS FOR SPONSORS]\n")
	buf.WriteString("You must follow these rules EXACTLY:\n")
	buf.WriteString("1. ONLY award points if the video EXPLICITLY mentions using a sponsor's technology\n")
	buf.WriteString("2. Do NOT infer or assume sponsor usage - it must be clearly stated\n")
	buf.WriteString("3. Award points ONLY for sponsors that are explicitly mentioned as being used:\n")
	for _, s := range c.SponsorRules {
		fmt.Fprintf(buf, "   - %s: %s %s ONLY if they explicitly say they used %s\n",
			s.Name, formatScore(s.Points), pluralPoints(s.Points), s.Name)
	}
	buf.WriteString("4. Score MUST be 0 if no sponsors are explicitly mentioned as being used\n")
	buf.WriteString("5. You must quote the EXACT words from the video that mention using each sponsor\n")
	buf.WriteString("Format your response as:\n")
	for _, s := range c.SponsorRules {
		fmt.Fprintf(buf, "- %s: [Yes/No] - If Yes, provide EXACT quote showing usage\n", s.Name)
	}
	buf.WriteString("[Final score justification showing exact calculation based on explicit mentions]\n")
}

func hasSponsorCategory(categories []models.CategorySpec) bool {
	for _, c := range categories {
		if c.IsSponsorCategory() {
			return true
		}
	}
	return false
}

func uniformMax(categories []models.CategorySpec) float64 {
	if len(categories) == 0 || categories[0].MaxScore <= 0 {
		return defaultMaxScore
	}
	return categories[0].MaxScore
}

func pluralPoints(p float64) string {
	if p == 1 {
		return "point"
	}
	return "points"
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
