package render

import (
	"bytes"
	"html/template"
	"io"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var pageTemplate = template.Must(template.New("list").Funcs(template.FuncMap{
	"distance": distanceText,
	"note":     noteText,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>{{.Title}}</title>
</head>
<body>
  <div id="donations-list">
  {{- if .Message}}
    <p>{{.Message}}</p>
  {{- end}}
  {{- range .Entries}}
    <div class="donor-card" data-category="{{.Category}}"{{if .Hidden}} style="display:none"{{end}}>
      <h3>{{.FoodName}} ({{.Category}})</h3>
      <p><strong>Address:</strong> {{.DisplayAddress}}</p>
      <p><strong>Area:</strong> {{.GeocodeLocation}}</p>
      <p><strong>Distance:</strong> {{distance .Record}}</p>
      <p><strong>Serves:</strong> {{.Count}} people</p>
      <p><strong>Notes:</strong> {{note .Record}}</p>
      <p><strong>Contact:</strong> {{.Phone}}</p>
      <button class="claim-btn" data-id="{{.ID}}">Claim Donation</button>
    </div>
  {{- end}}
  </div>
</body>
</html>
`))

// HTMLList implements view.ListView as a minified HTML page.
type HTMLList struct {
	listState
	minifier *minify.M
	title    string
}

// NewHTMLList returns an empty HTML list page.
func NewHTMLList(title string) *HTMLList {
	m := minify.New()
	m.AddFunc("text/html", html.Minify)

	return &HTMLList{minifier: m, title: title}
}

// WriteTo renders the page.
func (h *HTMLList) WriteTo(w io.Writer) (int64, error) {
	page, err := h.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(page)
	return int64(n), err
}

// Bytes renders the page into memory.
func (h *HTMLList) Bytes() ([]byte, error) {
	entries, msg := h.entries()

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, struct {
		Title   string
		Message string
		Entries []Entry
	}{h.title, msg, entries})
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := h.minifier.Minify("text/html", &out, &buf); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
