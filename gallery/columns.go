package gallery

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/chengyao-ihealth/ai-tools/csvio"
	"github.com/chengyao-ihealth/ai-tools/models"
)

// Role identifies the semantic meaning of a CSV column.
type Role int

const (
	RoleImage Role = iota
	RoleID
	RoleTitle
	RoleDescription
	RoleInsight
	RoleRDComments
	RoleIngredients
)

// roleAliases is the ordered list of recognized header spellings per
// semantic column, matched case-insensitively. The first alias that hits a
// header wins, so the matching is deterministic.
var roleAliases = []struct {
	Role    Role
	Aliases []string
}{
	{RoleImage, []string{"imgname", "img_name", "image", "images", "image_name"}},
	{RoleID, []string{"foodlogid", "food_log_id", "foodlog_id"}},
	{RoleTitle, []string{"mealtitle", "meal_title", "aititle", "title"}},
	{RoleDescription, []string{"description", "desc"}},
	{RoleInsight, []string{"insight", "aiinsight", "ai_insight"}},
	{RoleRDComments, []string{"rd comments", "rd_comments", "rdcomments"}},
	{RoleIngredients, []string{"ingredients"}},
}

// systemColumns are never displayed, not even as generic fields.
var systemColumns = map[string]bool{
	"memberid":    true,
	"rd feedback": true,
}

// ColumnMap holds the detected column index per role (-1 when absent) and
// the indexes of the remaining generic columns in header order.
type ColumnMap struct {
	Image       int
	ID          int
	Title       int
	Description int
	Insight     int
	RDComments  int
	Ingredients int
	Generic     []int
}

// DetectColumns assigns each header to a semantic role by alias, leaving
// everything unmatched (and non-system) as a generic labeled column.
func DetectColumns(headers []string) ColumnMap {
	cm := ColumnMap{Image: -1, ID: -1, Title: -1, Description: -1, Insight: -1, RDComments: -1, Ingredients: -1}
	claimed := make([]bool, len(headers))

	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for _, ra := range roleAliases {
		idx := -1
	aliasLoop:
		for _, alias := range ra.Aliases {
			for i, n := range norm {
				if !claimed[i] && n == alias {
					idx = i
					break aliasLoop
				}
			}
		}
		if idx < 0 {
			continue
		}
		claimed[idx] = true
		switch ra.Role {
		case RoleImage:
			cm.Image = idx
		case RoleID:
			cm.ID = idx
		case RoleTitle:
			cm.Title = idx
		case RoleDescription:
			cm.Description = idx
		case RoleInsight:
			cm.Insight = idx
		case RoleRDComments:
			cm.RDComments = idx
		case RoleIngredients:
			cm.Ingredients = idx
		}
	}

	for i := range headers {
		if claimed[i] || systemColumns[norm[i]] {
			continue
		}
		cm.Generic = append(cm.Generic, i)
	}
	return cm
}

// Records parses the table into food-log records using the detected
// column map. The image column is the only hard requirement; every text
// role simply stays empty when its column is absent.
func Records(t *csvio.Table) ([]models.FoodLogRecord, error) {
	cm := DetectColumns(t.Headers)
	if cm.Image < 0 {
		return nil, fmt.Errorf("no image filename column found (recognized headers: %s)", strings.Join(roleAliases[0].Aliases, ", "))
	}

	cell := func(row, col int) string {
		if col < 0 {
			return ""
		}
		return strings.TrimSpace(t.Get(row, col))
	}

	records := make([]models.FoodLogRecord, 0, len(t.Rows))
	for i := range t.Rows {
		rec := models.FoodLogRecord{
			ID:          cell(i, cm.ID),
			Title:       cell(i, cm.Title),
			Description: cell(i, cm.Description),
			Insight:     cell(i, cm.Insight),
			RDComments:  cell(i, cm.RDComments),
			Ingredients: cell(i, cm.Ingredients),
			ImageNames:  models.SplitImageNames(t.Get(i, cm.Image)),
		}
		for _, gi := range cm.Generic {
			rec.Extra = append(rec.Extra, models.Field{
				Label: FormatFieldName(t.Headers[gi]),
				Value: cell(i, gi),
			})
		}
		records = append(records, rec)
	}
	return records, nil
}

// FormatFieldName turns a camelCase/PascalCase header into a readable
// label: a space is inserted where a lowercase letter or digit meets an
// uppercase one, and a leading "Ai" word becomes "AI".
//
//	AiInsight  -> AI Insight
//	MealTitle  -> Meal Title
//	RD Comments -> RD Comments
func FormatFieldName(name string) string {
	var b strings.Builder
	prev := rune(0)
	for _, r := range name {
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	out := b.String()
	if out == "Ai" {
		return "AI"
	}
	if strings.HasPrefix(out, "Ai ") {
		out = "AI " + out[len("Ai "):]
	}
	return out
}
