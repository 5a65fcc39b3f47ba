package gallery_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chengyao-ihealth/ai-tools/gallery"
)

func TestLooksLikeJSON(t *testing.T) {
	assert.True(t, gallery.LooksLikeJSON(`{"a":1}`))
	assert.True(t, gallery.LooksLikeJSON(`  [1,2]  `))
	assert.False(t, gallery.LooksLikeJSON("plain text"))
	assert.False(t, gallery.LooksLikeJSON(`{"unbalanced"`))
}

func TestPrettyJSONRoundTrip(t *testing.T) {
	src := `{"b":2,"a":{"nested":[1,2,3]}}`
	pretty := gallery.PrettyJSON(src)
	assert.Contains(t, pretty, "\n")

	// pretty-printing reformats but preserves the structure
	var original, reparsed interface{}
	require.NoError(t, json.Unmarshal([]byte(src), &original))
	require.NoError(t, json.Unmarshal([]byte(pretty), &reparsed))
	assert.Equal(t, original, reparsed)
}

func TestPrettyJSONMalformedFallsBackRaw(t *testing.T) {
	assert.Equal(t, `{"broken":`, gallery.PrettyJSON(`{"broken":`))
	assert.Equal(t, "not json", gallery.PrettyJSON("not json"))
}

func TestFormatRDCommentsList(t *testing.T) {
	src := `[{"text":"Great protein balance","commentedAt":"2025-01-02"},{"text":"Add greens","commentedAt":"2025-01-03"}]`
	out := gallery.FormatRDComments(src)
	assert.Equal(t, "Comment: Great protein balance\nTime: 2025-01-02\n\nComment: Add greens\nTime: 2025-01-03", out)
}

func TestFormatRDCommentsSingleObject(t *testing.T) {
	out := gallery.FormatRDComments(`{"text":"Nice","commentedAt":"2025-02-01","reviewer":"ignored"}`)
	assert.Equal(t, "Comment: Nice\nTime: 2025-02-01", out)
}

func TestFormatRDCommentsPlainTextPassthrough(t *testing.T) {
	assert.Equal(t, "just a note", gallery.FormatRDComments("just a note"))
	assert.Equal(t, `[not json`, gallery.FormatRDComments(`[not json`))
}

func TestFormatIngredients(t *testing.T) {
	src := `[{"name":"Chicken","estimatedPortion":"120g","nutrition":[{"nutrition":"Protein","gram":31},{"nutrition":"Fat","gram":3.6}],"kcalPer100g":165}]`
	out := gallery.FormatIngredients(src)
	assert.Contains(t, out, "<strong>1. Chicken</strong>")
	assert.Contains(t, out, "Estimated Portion: 120g")
	assert.Contains(t, out, "  - Protein: 31g")
	assert.Contains(t, out, "  - Fat: 3.6g")
	assert.Contains(t, out, "kcalPer100g: 165")
}

func TestFormatIngredientsEscapesNames(t *testing.T) {
	out := gallery.FormatIngredients(`[{"name":"<script>alert(1)</script>"}]`)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestFormatIngredientsMalformedFallsBackRaw(t *testing.T) {
	assert.Equal(t, "2 eggs, toast", gallery.FormatIngredients("2 eggs, toast"))
}
