package server

import (
	"net/http"
	"runtime"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sonnes/dataserv/render"
)

// handleInfo serves an HTML page describing the server and the request that
// reached it. Handy for checking what a proxy or worker actually sent.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	headers := make([]render.Header, 0, len(r.Header))
	for name, values := range r.Header {
		headers = append(headers, render.Header{
			Name:  name,
			Value: strings.Join(values, ", "),
		})
	}
	sort.Slice(headers, func(i, j int) bool { return headers[i].Name < headers[j].Name })

	d := render.InfoData{
		ClientAddr:    r.RemoteAddr,
		Method:        r.Method,
		Path:          r.URL.Path,
		ServerVersion: "dataserv/" + Version,
		GoVersion:     runtime.Version(),
		Headers:       headers,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.RenderInfo(w, d); err != nil {
		log.Error("render info", "error", err)
	}
}
