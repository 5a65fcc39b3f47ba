package gallery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chengyao-ihealth/ai-tools/csvio"
	"github.com/chengyao-ihealth/ai-tools/gallery"
)

func TestDetectColumnsAliases(t *testing.T) {
	cm := gallery.DetectColumns([]string{"FoodLogId", "img_name", "AiTitle", "RD Comments", "Ingredients"})
	assert.Equal(t, 0, cm.ID)
	assert.Equal(t, 1, cm.Image)
	assert.Equal(t, 2, cm.Title)
	assert.Equal(t, 3, cm.RDComments)
	assert.Equal(t, 4, cm.Ingredients)
	assert.Equal(t, -1, cm.Description)
	assert.Empty(t, cm.Generic)
}

func TestDetectColumnsGenericAndSystem(t *testing.T) {
	cm := gallery.DetectColumns([]string{"ImgName", "MemberId", "RD Feedback", "AiDetectedFoods"})
	assert.Equal(t, 0, cm.Image)
	// MemberId and RD Feedback are system columns, never displayed
	assert.Equal(t, []int{3}, cm.Generic)
}

func TestDetectColumnsAliasOrder(t *testing.T) {
	// mealtitle outranks title in the alias list even when title comes first
	cm := gallery.DetectColumns([]string{"Title", "MealTitle", "ImgName"})
	assert.Equal(t, 1, cm.Title)
	assert.Equal(t, []int{0}, cm.Generic)
}

func TestRecordsRequiresImageColumn(t *testing.T) {
	tbl := &csvio.Table{Headers: []string{"MealTitle"}, Rows: [][]string{{"Lunch"}}}
	_, err := gallery.Records(tbl)
	assert.Error(t, err)
}

func TestRecordsSingleFilenameNoDelimiter(t *testing.T) {
	tbl := &csvio.Table{
		Headers: []string{"ImgName", "MealTitle"},
		Rows:    [][]string{{"abc.jpg", "Lunch"}},
	}
	recs, err := gallery.Records(tbl)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"abc.jpg"}, recs[0].ImageNames)
	assert.Equal(t, "Lunch", recs[0].Title)
}

func TestFormatFieldName(t *testing.T) {
	assert.Equal(t, "Meal Title", gallery.FormatFieldName("MealTitle"))
	assert.Equal(t, "AI Insight", gallery.FormatFieldName("AiInsight"))
	assert.Equal(t, "AI Detected Foods", gallery.FormatFieldName("AiDetectedFoods"))
	assert.Equal(t, "RD Comments", gallery.FormatFieldName("RD Comments"))
	assert.Equal(t, "Food Log Id", gallery.FormatFieldName("FoodLogId"))
}
