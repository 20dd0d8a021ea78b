package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sonnes/dataserv/tasks"
)

// dispatchTimeout bounds how long /get_task waits for an input file before
// answering 504. Var so tests can shorten it.
var dispatchTimeout = 30 * time.Second

// handleGetTask hands the next pending input file to a worker as JSON. When
// the pool is empty the request blocks until a file arrives or the timeout
// elapses.
func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), dispatchTimeout)
	defer cancel()

	task, err := s.pool.Next(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			http.Error(w, "no input files available", http.StatusGatewayTimeout)
			return
		}
		log.Error("dispatch task", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debug("dispatched task", "task_id", task.ID, "in_file", task.InFile)
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(task); err != nil {
		log.Error("encode task", "task_id", task.ID, "error", err)
	}
}

// handleEndTask retires a dispatched task, moving its input file to the
// processed directory.
func (s *Server) handleEndTask(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("task_id")
	if id == "" {
		http.Error(w, "missing task_id", http.StatusBadRequest)
		return
	}

	if err := s.pool.Complete(id); err != nil {
		if errors.Is(err, tasks.ErrUnknownTask) {
			http.Error(w, "unknown task", http.StatusNotFound)
			return
		}
		log.Error("complete task", "task_id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debug("completed task", "task_id", id)
	w.WriteHeader(http.StatusOK)
}
