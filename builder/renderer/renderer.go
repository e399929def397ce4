// Package renderer turns a topic into a self-contained HTML post.
package renderer

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"time"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"
	"github.com/yuin/goldmark"

	"github.com/Kush-Singh-26/dailypost/builder/assets"
	"github.com/Kush-Singh-26/dailypost/builder/models"
)

const (
	postTemplate = "post.html"
	bodyCopy     = "body.md"
	pageLang     = "ko"
)

// postData is the context passed to the post template.
type postData struct {
	Lang       string
	Title      string
	Date       string
	SourceLink string
	Summary    string
	Body       template.HTML
}

// Renderer produces post documents. It never touches the filesystem.
type Renderer struct {
	tmpl     *template.Template
	body     template.HTML
	minifier *minify.M
}

// New parses the embedded template and renders the fixed body copy once.
// With compress set, output is minified.
func New(compress bool) (*Renderer, error) {
	src, err := assets.GetTemplate(postTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to load template %s: %w", postTemplate, err)
	}
	tmpl, err := template.New(postTemplate).Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", postTemplate, err)
	}

	md, err := assets.GetCopy(bodyCopy)
	if err != nil {
		return nil, fmt.Errorf("failed to load copy %s: %w", bodyCopy, err)
	}
	var body bytes.Buffer
	if err := goldmark.Convert(md, &body); err != nil {
		return nil, fmt.Errorf("failed to render copy %s: %w", bodyCopy, err)
	}

	r := &Renderer{
		tmpl: tmpl,
		body: template.HTML(body.String()),
	}

	if compress {
		m := minify.New()
		m.AddFunc("text/css", css.Minify)
		m.Add("text/html", &mhtml.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
		r.minifier = m
	}

	return r, nil
}

// Render returns the document for topic dated at. Equal inputs give identical bytes.
// The title is HTML-escaped; summary entities are decoded first so they are escaped once.
func (r *Renderer) Render(topic models.Topic, at time.Time) ([]byte, error) {
	data := postData{
		Lang:       pageLang,
		Title:      topic.Title,
		Date:       at.Format(models.DateLayout),
		SourceLink: topic.SourceLink,
		Summary:    html.UnescapeString(topic.Summary),
		Body:       r.body,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render post %q: %w", topic.Title, err)
	}

	if r.minifier == nil {
		return buf.Bytes(), nil
	}

	out, err := r.minifier.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to minify post %q: %w", topic.Title, err)
	}
	return out, nil
}
