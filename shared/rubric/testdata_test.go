package rubric

import (
	"fmt"
	"strings"

	"video-judge/internal/models"
	"video-judge/shared/config"
)

func catalog() []models.CategorySpec {
	return config.DefaultCategories()
}

// buildResponse renders a well-formed evaluator answer with one block per
// category, using scores[i] for category i.
func buildResponse(categories []models.CategorySpec, scores []string, sponsorLines ...string) string {
	var b strings.Builder
	b.WriteString("Here is my evaluation of \"Agent Arena\".\n\n")
	for i, c := range categories {
		if i >= len(scores) {
			break
		}
		fmt.Fprintf(&b, "%d. %s (Score /5):\n", i+1, c.Name)
		fmt.Fprintf(&b, "Score: %s\n", scores[i])
		if c.IsSponsorCategory() {
			for _, l := range sponsorLines {
				b.WriteString(l + "\n")
			}
			b.WriteString("Total reflects only explicitly stated usage.\n\n")
			continue
		}
		fmt.Fprintf(&b, "The %s of the project is solid.\n\n", strings.ToLower(c.Name))
	}
	return b.String()
}

func uniformScores(n int, v string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}
