package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// maxUploadBytes caps the request body of a multipart upload.
const maxUploadBytes = 1 << 30

// handleUpload accepts a multipart form upload ("file" field) into the
// directory named by the request path. Workers use this to post their
// output and log files back to the server.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ReadOnly {
		http.Error(w, "server is read-only", http.StatusForbidden)
		return
	}

	dir, err := s.resolve(r.URL.Path)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		http.Error(w, "upload target is not a directory", http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "malformed multipart request", http.StatusBadRequest)
		return
	}

	name, err := saveUpload(mr, dir)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		if rerr := s.renderer.RenderUploadResult(w, false, err.Error()); rerr != nil {
			log.Error("render upload result", "error", rerr)
		}
		return
	}

	log.Info("file uploaded", "file", name, "dir", r.URL.Path)
	if err := s.renderer.RenderUploadResult(w, true, fmt.Sprintf("File %q upload success!", name)); err != nil {
		log.Error("render upload result", "error", err)
	}
}

// saveUpload streams the "file" part of a multipart request into dir. The
// client-supplied name is reduced to its base name so an upload can never
// land outside the target directory.
func saveUpload(mr *multipart.Reader, dir string) (string, error) {
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", fmt.Errorf("no file field in request")
		}
		if err != nil {
			return "", fmt.Errorf("read multipart: %w", err)
		}
		if part.FormName() != "file" {
			continue
		}

		name := filepath.Base(filepath.FromSlash(part.FileName()))
		if name == "" || name == "." || name == string(filepath.Separator) {
			return "", fmt.Errorf("missing file name")
		}

		dst, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return "", fmt.Errorf("create %s: %w", name, err)
		}
		if _, err := io.Copy(dst, part); err != nil {
			dst.Close()
			return "", fmt.Errorf("write %s: %w", name, err)
		}
		if err := dst.Close(); err != nil {
			return "", fmt.Errorf("close %s: %w", name, err)
		}
		return name, nil
	}
}
