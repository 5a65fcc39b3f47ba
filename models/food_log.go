package models

import "strings"

// FoodLogRecord is one food-log entry as carried by the CSV exports.
// Structured annotations (reviewer comments, ingredients) stay JSON-encoded
// strings here; the gallery formats them at render time.
type FoodLogRecord struct {
	ID          string
	Title       string
	Description string
	Insight     string
	RDComments  string
	Ingredients string
	ImageNames  []string
	// Extra holds the columns outside the known semantic set, in header
	// order, rendered generically under their original header text.
	Extra []Field
}

// Field is a generic labeled value.
type Field struct {
	Label string
	Value string
}

// SplitImageNames splits the semicolon-joined image filename cell used by
// the CSV exports ("fid.jpg;fid_1.png"). A value without the delimiter is
// a single filename; empty fragments are dropped.
func SplitImageNames(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
