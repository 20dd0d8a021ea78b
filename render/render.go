// Package render produces the HTML pages served by dataserv: directory
// listings, the server info page, upload results, and markdown files
// rendered via goldmark + chroma.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
)

//go:embed templates
var content embed.FS

// Renderer renders the server's HTML pages from embedded templates.
type Renderer struct {
	md   goldmark.Markdown
	tmpl *template.Template
}

// New creates a Renderer with goldmark configured for GFM and syntax
// highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles for standalone pages
				),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // allow raw HTML in markdown
		),
	)

	tmpl := template.Must(
		template.New("").
			Funcs(funcMap()).
			ParseFS(content, "templates/*.html"),
	)

	return &Renderer{md: md, tmpl: tmpl}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"humanSize": humanSize,
	}
}

// humanSize formats a byte count for the listing table, e.g. "2.4 KB".
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Entry is one row in a directory listing.
type Entry struct {
	Name  string
	Href  string
	IsDir bool
	Size  int64
}

// Crumb is one segment of the navigable directory path shown above a listing.
type Crumb struct {
	Name string
	Href string
}

// listingData is the template data passed to listing.html.
type listingData struct {
	Path    string
	Crumbs  []Crumb
	Parent  string
	Entries []Entry
}

// RenderListing writes an HTML listing of the given directory entries to w.
// urlPath is the request path of the directory, used for the breadcrumb.
func (r *Renderer) RenderListing(w io.Writer, urlPath string, entries []Entry) error {
	clean := path.Clean("/" + urlPath)
	d := listingData{
		Path:    clean,
		Crumbs:  crumbs(clean),
		Parent:  path.Dir(clean),
		Entries: entries,
	}
	return r.tmpl.ExecuteTemplate(w, "listing.html", d)
}

// crumbs splits a cleaned URL path into navigable segments, starting with
// the root.
func crumbs(clean string) []Crumb {
	cs := []Crumb{{Name: "/", Href: "/"}}
	if clean == "/" {
		return cs
	}
	href := ""
	for _, seg := range strings.Split(strings.Trim(clean, "/"), "/") {
		href += "/" + seg
		cs = append(cs, Crumb{Name: seg, Href: href})
	}
	return cs
}

// Header is one request header shown on the info page.
type Header struct {
	Name  string
	Value string
}

// InfoData is the template data for the server info page.
type InfoData struct {
	ClientAddr    string
	Method        string
	Path          string
	ServerVersion string
	GoVersion     string
	Headers       []Header
}

// RenderInfo writes the server info page to w.
func (r *Renderer) RenderInfo(w io.Writer, d InfoData) error {
	return r.tmpl.ExecuteTemplate(w, "info.html", d)
}

// uploadData is the template data for the upload result page.
type uploadData struct {
	OK     bool
	Detail string
}

// RenderUploadResult writes the upload result page to w.
func (r *Renderer) RenderUploadResult(w io.Writer, ok bool, detail string) error {
	return r.tmpl.ExecuteTemplate(w, "upload.html", uploadData{OK: ok, Detail: detail})
}

// pageData is the template data for the generic page shell used by rendered
// markdown.
type pageData struct {
	Title string
	Body  template.HTML
}

// RenderMarkdown converts markdown source to HTML and wraps it in the page
// shell.
func (r *Renderer) RenderMarkdown(w io.Writer, title string, src []byte) error {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return fmt.Errorf("goldmark convert: %w", err)
	}
	return r.tmpl.ExecuteTemplate(w, "page.html", pageData{
		Title: title,
		Body:  template.HTML(buf.String()),
	})
}
