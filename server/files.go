package server

import (
	"errors"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sonnes/dataserv/render"
)

// indexFiles are tried in order when a directory is requested.
var indexFiles = []string{"index.html", "index.htm"}

var errTraversal = errors.New("path escapes root directory")

// resolve maps a URL path to a filesystem path under the configured root.
// Resolution is purely lexical: a path with a ".." segment is rejected
// before the cleaned path is joined to the root.
func (s *Server) resolve(urlPath string) (string, error) {
	if containsDotDot(urlPath) {
		return "", errTraversal
	}
	clean := path.Clean("/" + urlPath)
	return filepath.Join(s.cfg.RootDir, filepath.FromSlash(clean)), nil
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	fp, err := s.resolve(r.URL.Path)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	info, err := os.Stat(fp)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if !info.IsDir() {
		s.serveFile(w, r, fp, info)
		return
	}

	// The "///" suffix forces the listing past an index file, but only when
	// listings are enabled at all.
	forced := !s.cfg.NoDirList && listingForced(r)
	if !forced {
		for _, name := range indexFiles {
			idx := filepath.Join(fp, name)
			if fi, err := os.Stat(idx); err == nil && !fi.IsDir() {
				s.serveFile(w, r, idx, fi)
				return
			}
		}
	}

	if s.cfg.NoDirList {
		http.NotFound(w, r)
		return
	}
	s.serveListing(w, r, fp)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, fp string, info os.FileInfo) {
	if s.cfg.Markdown && strings.EqualFold(filepath.Ext(fp), ".md") {
		s.serveMarkdown(w, fp)
		return
	}

	f, err := os.Open(fp)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType(fp))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) serveMarkdown(w http.ResponseWriter, fp string) {
	src, err := os.ReadFile(fp)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderMarkdown(w, filepath.Base(fp), src); err != nil {
		log.Error("render markdown", "path", fp, "error", err)
	}
}

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, dir string) {
	des, err := os.ReadDir(dir)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	sort.Slice(des, func(i, j int) bool {
		return strings.ToLower(des[i].Name()) < strings.ToLower(des[j].Name())
	})

	base := strings.TrimSuffix(r.URL.Path, "/")
	entries := make([]render.Entry, 0, len(des))
	for _, de := range des {
		e := render.Entry{
			Name:  de.Name(),
			Href:  base + "/" + de.Name(),
			IsDir: de.IsDir(),
		}
		if de.IsDir() {
			e.Href += "/"
		} else if fi, err := de.Info(); err == nil {
			e.Size = fi.Size()
		}
		entries = append(entries, e)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderListing(w, r.URL.Path, entries); err != nil {
		log.Error("render listing", "dir", dir, "error", err)
	}
}
