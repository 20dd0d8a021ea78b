package server

import (
	"mime"
	"path/filepath"
	"strings"
)

// contentTypes maps file extensions to the MIME types pipeline workers rely
// on. Source and log files are served as plain text so they display in a
// browser.
var contentTypes = map[string]string{
	".css":  "text/css",
	".gif":  "image/gif",
	".htm":  "text/html",
	".html": "text/html",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpg",
	".js":   "text/javascript",
	".png":  "image/png",
	".text": "text/plain",
	".txt":  "text/plain",
	".fits": "application/fits",
	".json": "application/json",
	".md":   "text/markdown",
	".py":   "text/plain",
	".c":    "text/plain",
	".h":    "text/plain",
	".log":  "text/plain",
}

// contentType returns the Content-Type for a file path. Extensions outside
// the table fall back to the system MIME database, then to plain text.
func contentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "text/plain; charset=utf-8"
}
