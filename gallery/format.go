package gallery

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// LooksLikeJSON reports whether a trimmed string has the shape of a JSON
// object or array. Cheap pre-check before attempting a real parse.
func LooksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"))
}

// PrettyJSON re-serializes a JSON-encoded cell with indentation for
// readability. Anything that does not parse comes back unchanged, so a
// malformed cell degrades to raw text instead of failing the row.
func PrettyJSON(s string) string {
	trimmed := strings.TrimSpace(s)
	if !LooksLikeJSON(trimmed) {
		return trimmed
	}
	var v interface{}
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return trimmed
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return trimmed
	}
	return string(out)
}

// rdComment is one reviewer annotation. Only the comment text and its
// timestamp are shown; the rest of the payload is portal bookkeeping.
type rdComment struct {
	Text        string `json:"text"`
	CommentedAt string `json:"commentedAt"`
}

// FormatRDComments renders the reviewer-comments cell as
// "Comment: ...\nTime: ..." blocks. The cell may hold a JSON array, a
// single JSON object, or plain text; plain and malformed text is returned
// as-is.
func FormatRDComments(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !LooksLikeJSON(trimmed) {
		return trimmed
	}

	var comments []rdComment
	if err := json.Unmarshal([]byte(trimmed), &comments); err != nil {
		var single rdComment
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return trimmed
		}
		comments = []rdComment{single}
	}

	var blocks []string
	for _, c := range comments {
		var lines []string
		if c.Text != "" {
			lines = append(lines, "Comment: "+c.Text)
		}
		if c.CommentedAt != "" {
			lines = append(lines, "Time: "+c.CommentedAt)
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n")
}

type nutritionItem struct {
	Nutrition string      `json:"nutrition"`
	Gram      interface{} `json:"gram"`
}

type ingredient struct {
	Name             string          `json:"name"`
	EstimatedPortion string          `json:"estimatedPortion"`
	Portion          string          `json:"Portion"`
	Nutrition        []nutritionItem `json:"nutrition"`
	KcalPer100g      interface{}     `json:"kcalPer100g"`
}

// FormatIngredients renders the ingredients cell as a numbered breakdown
// with the name in bold, the estimated portion, the per-nutrient grams and
// the kcal density. The returned string is an HTML fragment (user content
// already escaped); plain and malformed text is escaped and returned as-is.
func FormatIngredients(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !LooksLikeJSON(trimmed) {
		return html.EscapeString(trimmed)
	}

	var items []ingredient
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		var single ingredient
		if err := json.Unmarshal([]byte(trimmed), &single); err != nil {
			return html.EscapeString(trimmed)
		}
		items = []ingredient{single}
	}

	var blocks []string
	for idx, ing := range items {
		var lines []string

		name := ing.Name
		if name == "" {
			name = "Unknown ingredient"
		}
		lines = append(lines, fmt.Sprintf("<strong>%d. %s</strong>", idx+1, html.EscapeString(name)))

		portion := ing.EstimatedPortion
		if portion == "" {
			portion = ing.Portion
		}
		if portion != "" {
			lines = append(lines, "Estimated Portion: "+html.EscapeString(portion))
		}

		if len(ing.Nutrition) > 0 {
			lines = append(lines, "Nutrition:")
			for _, n := range ing.Nutrition {
				if n.Nutrition == "" {
					continue
				}
				lines = append(lines, fmt.Sprintf("  - %s: %sg", html.EscapeString(n.Nutrition), html.EscapeString(numString(n.Gram))))
			}
		}

		if kcal := numString(ing.KcalPer100g); kcal != "" {
			lines = append(lines, "kcalPer100g: "+html.EscapeString(kcal))
		}

		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// numString renders a JSON number or string value without a trailing ".0"
// on whole floats.
func numString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}
