package site

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/dgallion1/sidetoc/internal/htmldoc"
	"github.com/dgallion1/sidetoc/internal/render"
	"github.com/dgallion1/sidetoc/internal/sidebar"
	"github.com/dgallion1/sidetoc/internal/widget"
)

// PageOptions controls how article pages are assembled.
type PageOptions struct {
	// Prerender mounts the sidebar server-side instead of loading the wasm
	// widget in the browser.
	Prerender bool
	// LiveReload adds a websocket client that reloads the page when its
	// source changes.
	LiveReload   bool
	StaticPrefix string
	Widget       widget.Config
}

// DefaultPageOptions serves the wasm widget from /static.
func DefaultPageOptions() PageOptions {
	return PageOptions{StaticPrefix: "/static", Widget: widget.DefaultConfig()}
}

type pageData struct {
	Slug         string
	Title        string
	Description  string
	Tags         []string
	ContentClass string
	Body         template.HTML
	Static       string
	Script       bool
	Widget       widget.Config
	LiveReload   bool
}

var (
	pageTmpl  = template.Must(template.New("page").Parse(pageTemplate))
	indexTmpl = template.Must(template.New("index").Parse(indexTemplate))
)

// Page wraps a rendered article body in the site layout. With
// opts.Prerender the sidebar markup is mounted into the page before it is
// returned; otherwise the page loads the browser widget. Articles whose
// frontmatter sets toc: false get neither.
func Page(slug string, r *Rendered, opts PageOptions, log *slog.Logger) (string, error) {
	if opts.StaticPrefix == "" {
		opts.StaticPrefix = "/static"
	}
	if opts.Widget.ContentClass == "" {
		opts.Widget.ContentClass = widget.DefaultConfig().ContentClass
	}
	toc := r.Meta.TOCEnabled()

	data := pageData{
		Slug:         slug,
		Title:        articleTitle(slug, r),
		Description:  r.Meta.Description,
		Tags:         r.Meta.Tags,
		ContentClass: opts.Widget.ContentClass,
		Body:         template.HTML(r.HTML),
		Static:       opts.StaticPrefix,
		Script:       toc && !opts.Prerender,
		Widget:       opts.Widget,
		LiveReload:   opts.LiveReload,
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute page template: %w", err)
	}
	if !toc || !opts.Prerender {
		return buf.String(), nil
	}
	return prerender(&buf, opts.Widget, log.With("slug", slug))
}

func prerender(page *bytes.Buffer, cfg widget.Config, log *slog.Logger) (string, error) {
	doc, err := htmldoc.Parse(page)
	if err != nil {
		return "", err
	}
	if err := Prerender(doc, cfg, log); err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := doc.Render(&out); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return out.String(), nil
}

// Prerender mounts the sidebar into doc. The widget is never stopped:
// stopping removes the markup this is here to produce.
//
// Nothing can open or close a prerendered sidebar, so it is mounted open
// against a wide viewport and its toggle and close buttons are dropped.
func Prerender(doc *htmldoc.Document, cfg widget.Config, log *slog.Logger) error {
	breakpoint := cfg.MobileBreakpoint
	if breakpoint <= 0 {
		breakpoint = widget.DefaultConfig().MobileBreakpoint
	}
	doc.SetViewportWidth(breakpoint + 1)

	w := widget.New(doc, cfg, log)
	if err := w.Start(); err != nil {
		return fmt.Errorf("prerender sidebar: %w", err)
	}
	if !w.Mounted() {
		return nil
	}
	w.Dispatch(sidebar.Toggle{})
	for _, class := range []string{render.ClassToggle, render.ClassClose} {
		for _, el := range doc.ByClass(class) {
			el.Remove()
		}
	}
	return nil
}

// IndexEntry is one line of the article index.
type IndexEntry struct {
	Slug        string
	Title       string
	Description string
	Minutes     int
}

// Index renders the article list page.
func Index(entries []IndexEntry) (string, error) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, entries); err != nil {
		return "", fmt.Errorf("execute index template: %w", err)
	}
	return buf.String(), nil
}

func articleTitle(slug string, r *Rendered) string {
	switch {
	case r.Meta.Title != "":
		return r.Meta.Title
	case r.Title != "":
		return r.Title
	}
	return slug
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
{{- if .Description}}
<meta name="description" content="{{.Description}}">
{{- end}}
{{- if .Tags}}
<meta name="keywords" content="{{range $i, $t := .Tags}}{{if $i}}, {{end}}{{$t}}{{end}}">
{{- end}}
</head>
<body>
<main>
<article class="{{.ContentClass}}">
{{.Body}}
</article>
</main>
{{- if .Script}}
<script src="{{.Static}}/wasm_exec.js"></script>
<script>
window.sidetoc = {{.Widget}};
const go = new Go();
WebAssembly.instantiateStreaming(fetch({{.Static}} + "/sidetoc.wasm"), go.importObject)
  .then((r) => go.run(r.instance));
</script>
{{- end}}
{{- if .LiveReload}}
<script>
(() => {
  const proto = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(proto + location.host + "/ws/reload");
  ws.onmessage = (e) => {
    const msg = JSON.parse(e.data);
    if (msg.type === "reload" && msg.slug === {{.Slug}}) location.reload();
  };
})();
</script>
{{- end}}
</body>
</html>
`

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Articles</title>
</head>
<body>
<main>
<h1>Articles</h1>
<ul>
{{- range .}}
<li><a href="/articles/{{.Slug}}">{{.Title}}</a>{{if .Minutes}} ({{.Minutes}} min){{end}}{{if .Description}} - {{.Description}}{{end}}</li>
{{- end}}
</ul>
</main>
</body>
</html>
`
