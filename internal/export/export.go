// Package export renders notes to static HTML files.
package export

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"notehub/internal/model"
	"notehub/internal/service"
)

type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{md: goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)}
}

// Render converts note content from markdown to HTML.
func (r *Renderer) Render(markdown string) (string, error) {
	var out bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

var notePage = template.Must(template.New("note").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p><em>{{.Tag}}</em> &middot; {{.CreatedAt}}</p>
{{.Body}}
</body></html>
`))

var indexPage = template.Must(template.New("index").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Notes</title></head>
<body>
<h1>Notes</h1>
<ul>
{{range .}}<li><a href="{{.File}}">{{.Title}}</a> <em>{{.Tag}}</em> &mdash; {{.Excerpt}}</li>
{{end}}</ul>
</body></html>
`))

type notePageData struct {
	Title     string
	Tag       string
	CreatedAt string
	Body      template.HTML
}

type indexEntry struct {
	File    string
	Title   string
	Tag     string
	Excerpt string
}

type Exporter struct {
	svc      *service.NoteService
	renderer *Renderer
}

func NewExporter(svc *service.NoteService) *Exporter {
	return &Exporter{svc: svc, renderer: NewRenderer()}
}

// Export fetches every page matching the tag filter and writes one HTML
// file per note plus an index. It returns the number of notes written.
func (e *Exporter) Export(ctx context.Context, tag, outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	var notes []model.Note
	for page := 1; ; page++ {
		res, data := e.svc.List(ctx, page, "", tag)
		if res.Err != nil {
			return 0, fmt.Errorf("fetch page %d: %w", page, res.Err)
		}
		notes = append(notes, data.Notes...)
		if page >= data.TotalPages {
			break
		}
	}

	index := make([]indexEntry, 0, len(notes))
	for _, note := range notes {
		body, err := e.renderer.Render(note.Content)
		if err != nil {
			return 0, fmt.Errorf("render note %s: %w", note.ID, err)
		}
		fileName := note.ID + ".html"
		var buf bytes.Buffer
		if err := notePage.Execute(&buf, notePageData{
			Title:     note.Title,
			Tag:       note.Tag,
			CreatedAt: note.CreatedAt,
			Body:      template.HTML(body),
		}); err != nil {
			return 0, err
		}
		if err := os.WriteFile(filepath.Join(outDir, fileName), buf.Bytes(), 0o644); err != nil {
			return 0, fmt.Errorf("write note %s: %w", note.ID, err)
		}
		index = append(index, indexEntry{
			File:    fileName,
			Title:   note.Title,
			Tag:     note.Tag,
			Excerpt: model.Excerpt(note.Content, 160),
		})
	}

	var buf bytes.Buffer
	if err := indexPage.Execute(&buf, index); err != nil {
		return 0, err
	}
	if err := os.WriteFile(filepath.Join(outDir, "index.html"), buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write index: %w", err)
	}
	return len(notes), nil
}
