package gallery

import (
	"html/template"
	"path/filepath"
	"strings"

	"github.com/chengyao-ihealth/ai-tools/internal/logger"
	"github.com/chengyao-ihealth/ai-tools/csvio"
	"github.com/chengyao-ihealth/ai-tools/models"
)

type Options struct {
	ImagesDir string
	Title     string
	// ThumbWidth caps the pixel width of embedded images; 0 embeds the
	// original bytes.
	ThumbWidth uint
}

type imageView struct {
	URI     template.URL
	Alt     string
	Missing bool
	Note    string
}

type fieldView struct {
	Label string
	Value template.HTML
}

type cardView struct {
	Images []imageView
	Fields []fieldView
}

type pageView struct {
	Title string
	Cards []cardView
}

// Render turns the CSV table into one self-contained HTML document: a
// fixed style block plus one card per row, images inlined as data URIs.
// A missing image file becomes a visible placeholder, a malformed field
// degrades to raw text; neither aborts the run. The output depends only on
// the input, so identical input renders byte-identical HTML.
func Render(t *csvio.Table, opts Options) (string, error) {
	records, err := Records(t)
	if err != nil {
		return "", err
	}

	page := pageView{Title: opts.Title}
	for _, rec := range records {
		page.Cards = append(page.Cards, buildCard(rec, opts))
	}

	var b strings.Builder
	if err := pageTemplate.Execute(&b, page); err != nil {
		return "", err
	}
	return b.String(), nil
}

func buildCard(rec models.FoodLogRecord, opts Options) cardView {
	var card cardView

	if len(rec.ImageNames) == 0 {
		card.Images = append(card.Images, imageView{Missing: true, Note: "no image filename"})
	}
	for _, name := range rec.ImageNames {
		uri, err := DataURI(filepath.Join(opts.ImagesDir, name), opts.ThumbWidth)
		if err != nil {
			logger.WarnWithFields("gallery image missing", logger.Fields{"file": name, "error": err.Error()})
			card.Images = append(card.Images, imageView{Missing: true, Note: "missing: " + name})
			continue
		}
		card.Images = append(card.Images, imageView{URI: template.URL(uri), Alt: name})
	}

	add := func(label, value string) {
		if value == "" {
			return
		}
		card.Fields = append(card.Fields, fieldView{Label: label, Value: plainValue(value)})
	}

	add("FoodLogId", rec.ID)
	add("MealTitle", rec.Title)
	add("Description", rec.Description)
	add("Insight", rec.Insight)
	add("RD Comments", FormatRDComments(rec.RDComments))
	if v := FormatIngredients(rec.Ingredients); v != "" {
		card.Fields = append(card.Fields, fieldView{Label: "Ingredients", Value: htmlValue(v)})
	}
	for _, f := range rec.Extra {
		add(f.Label, PrettyJSON(f.Value))
	}
	return card
}

// plainValue escapes user text and keeps its line breaks.
func plainValue(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br/>"))
}

// htmlValue keeps a pre-escaped HTML fragment, converting line breaks.
func htmlValue(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(s, "\n", "<br/>"))
}

var pageTemplate = template.Must(template.New("gallery").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1"/>
<title>{{.Title}}</title>
<style>
:root {
  --bg: #faf8f5;
  --card: #ffffff;
  --text: #1a1a1a;
  --muted: #6b7280;
  --accent: #3b82f6;
  --border: #e5e7eb;
}
* { box-sizing: border-box; }
body {
  margin: 0; padding: 24px;
  background: var(--bg); color: var(--text);
  font-family: -apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Inter,Helvetica,Arial,'Noto Sans',sans-serif;
}
h1 { font-size: 22px; font-weight: 700; margin: 0 0 16px 0; }
.header {
  display: flex; align-items: baseline; justify-content: space-between; gap: 16px; margin-bottom: 12px;
}
.hint { color: var(--muted); font-size: 13px; }
.grid {
  display: grid;
  grid-template-columns: repeat(auto-fit, minmax(280px, 1fr));
  gap: 16px;
}
.card {
  background: var(--card);
  border: 1px solid var(--border);
  border-radius: 14px;
  padding: 12px;
  box-shadow: 0 2px 8px rgba(0,0,0,0.08);
  display: flex;
  flex-direction: column;
  gap: 8px;
}
.images {
  display: grid;
  grid-template-columns: repeat(auto-fit, minmax(140px, 1fr));
  gap: 8px;
}
.card img {
  width: 100%;
  height: auto;
  border-radius: 10px;
  border: 1px solid var(--border);
}
.img-missing {
  height: 160px;
  display: grid; place-items: center;
  border-radius: 10px;
  border: 1px dashed var(--border);
  color: var(--muted);
  font-size: 13px;
}
.meta { display: flex; flex-direction: column; gap: 6px; }
.field .label {
  font-size: 12px;
  color: var(--muted);
  margin-bottom: 2px;
}
.field .value {
  font-size: 14px; line-height: 1.5;
  white-space: normal;
}
.footer { margin-top: 18px; color: var(--muted); font-size: 12px; }
</style>
</head>
<body>
  <div class="header">
    <h1>{{.Title}}</h1>
    <div class="hint">{{len .Cards}} entries</div>
  </div>
  <div class="grid">
{{- range .Cards}}
    <div class="card">
      <div class="images">
{{- range .Images}}
{{- if .Missing}}
        <div class="img-missing">{{.Note}}</div>
{{- else}}
        <img src="{{.URI}}" alt="{{.Alt}}" />
{{- end}}
{{- end}}
      </div>
      <div class="meta">
{{- range .Fields}}
        <div class="field"><div class="label">{{.Label}}</div><div class="value">{{.Value}}</div></div>
{{- end}}
      </div>
    </div>
{{- end}}
  </div>
  <div class="footer">Tip: use the browser search to locate an entry by MealTitle or FoodLogId.</div>
</body>
</html>
`))
