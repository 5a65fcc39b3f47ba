package export

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chengyao-ihealth/ai-tools/csvio"
)

// FromDocuments flattens food-log documents into a CSV table.
//
// Column order is the first-seen key order across all documents, which
// keeps repeated exports of the same query deterministic. Documents whose
// images field is missing or empty are dropped (not renderable). The
// images column is moved to the third position so it sits next to the
// identifiers in the export, matching what the gallery tooling expects.
func FromDocuments(docs []bson.M) *csvio.Table {
	var headers []string
	seen := map[string]bool{}
	var kept []bson.M

	for _, doc := range docs {
		if !hasValidImages(doc) {
			continue
		}
		kept = append(kept, doc)
		for _, k := range sortedDocKeys(doc) {
			if !seen[k] {
				seen[k] = true
				headers = append(headers, k)
			}
		}
	}

	headers = moveImagesColumn(headers)

	t := &csvio.Table{Headers: headers}
	for _, doc := range kept {
		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = cellString(doc[h])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Dropped reports how many of the documents would be filtered out for
// having no images.
func Dropped(docs []bson.M) int {
	n := 0
	for _, doc := range docs {
		if !hasValidImages(doc) {
			n++
		}
	}
	return n
}

func hasValidImages(doc bson.M) bool {
	v, ok := doc["images"]
	if !ok || v == nil {
		return false
	}
	switch arr := v.(type) {
	case primitive.A:
		return len(arr) > 0
	case []interface{}:
		return len(arr) > 0
	}
	return false
}

// sortedDocKeys returns the document keys with _id first and the rest in
// lexical order. bson.M is an unordered map, so lexical order is the only
// stable choice.
func sortedDocKeys(doc bson.M) []string {
	keys := make([]string, 0, len(doc))
	hasID := false
	for k := range doc {
		if k == "_id" {
			hasID = true
			continue
		}
		keys = append(keys, k)
	}
	sortStrings(keys)
	if hasID {
		keys = append([]string{"_id"}, keys...)
	}
	return keys
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

func moveImagesColumn(headers []string) []string {
	idx := -1
	for i, h := range headers {
		if h == "images" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return headers
	}
	rest := append(append([]string{}, headers[:idx]...), headers[idx+1:]...)
	if len(rest) < 2 {
		return append(rest, "images")
	}
	out := append([]string{}, rest[:2]...)
	out = append(out, "images")
	return append(out, rest[2:]...)
}

func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case bool:
		return fmt.Sprintf("%t", x)
	case int32, int64, int:
		return fmt.Sprintf("%d", x)
	case float64:
		return fmt.Sprintf("%g", x)
	case primitive.A, []interface{}, bson.M, map[string]interface{}:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
