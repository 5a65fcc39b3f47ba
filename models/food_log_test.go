package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chengyao-ihealth/ai-tools/models"
)

func TestSplitImageNames(t *testing.T) {
	assert.Equal(t, []string{"a.jpg", "a_1.png"}, models.SplitImageNames("a.jpg;a_1.png"))
	assert.Equal(t, []string{"a.jpg"}, models.SplitImageNames("a.jpg"))
	assert.Equal(t, []string{"a.jpg"}, models.SplitImageNames(" a.jpg ; ;"))
	assert.Nil(t, models.SplitImageNames(""))
}
