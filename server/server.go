// Package server implements the HTTP surface of dataserv: static file
// serving rooted at a directory, directory listings, a server info page,
// multipart uploads, and task dispatch for pipeline workers.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sonnes/dataserv/config"
	"github.com/sonnes/dataserv/render"
	"github.com/sonnes/dataserv/tasks"
)

// Version is the dataserv release version.
const Version = "0.1.0"

// Server serves a filesystem subtree and the task dispatch endpoints.
type Server struct {
	cfg      config.Config
	pool     *tasks.Pool
	renderer *render.Renderer
	http     *http.Server
}

// New builds a Server from a validated configuration.
func New(cfg config.Config, pool *tasks.Pool, r *render.Renderer) *Server {
	s := &Server{cfg: cfg, pool: pool, renderer: r}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /info", s.handleInfo)
	mux.HandleFunc("GET /info/{$}", s.handleInfo)
	mux.HandleFunc("GET /get_task", s.handleGetTask)
	mux.HandleFunc("GET /get_task/{$}", s.handleGetTask)
	mux.HandleFunc("GET /end_task", s.handleEndTask)
	mux.HandleFunc("GET /end_task/{$}", s.handleEndTask)
	mux.HandleFunc("GET /", s.handleFile)
	mux.HandleFunc("POST /", s.handleUpload)

	var handler http.Handler = mux
	handler = forceListing(handler)
	handler = rejectTraversal(handler)
	handler = logRequests(handler)

	s.http = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the server's root handler, including middleware. Used by
// tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start binds the listening socket and serves until Shutdown. A bind failure
// is returned immediately so the caller can exit non-zero.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.http.Addr, err)
	}

	log.Info("server starting", "addr", s.http.Addr, "root", s.cfg.RootDir)
	if err := s.http.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info("server stopping", "addr", s.http.Addr)
	return s.http.Shutdown(ctx)
}
