package report

import (
	"html/template"
	"io"
	"strings"
)

var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; max-width: 46rem; margin: 2rem auto; color: #1e1e1e; line-height: 1.5; }
header p, .meta { color: #6e6e6e; font-size: 0.85rem; }
section { border-top: 1px solid #d2d2d2; padding-top: 1rem; }
a { color: #1e5ab4; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p>Generated {{.Generated.Format "2006-01-02 15:04"}} · {{len .Sections}} items</p>
{{- with .Subtitle}}
<p>{{.}}</p>
{{- end}}
{{- with .Themes}}
<p>Themes: {{join . ", "}}</p>
{{- end}}
</header>
{{- range $i, $s := .Sections}}
<section>
<h2>{{inc $i}}. {{$s.Heading}}</h2>
<p class="meta">{{$s.Meta}} · {{$s.ReadingTime}} min read</p>
<p>{{$s.Body}}</p>
{{- with $s.URL}}
<p><a href="{{.}}">{{.}}</a></p>
{{- end}}
</section>
{{- end}}
</body>
</html>
`))

// HTMLRenderer writes a single self-contained HTML page.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(doc Document, w io.Writer) error {
	return page.Execute(w, doc)
}
