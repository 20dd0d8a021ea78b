package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests emits exactly one log line per handled request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// rejectTraversal answers 400 for any request whose path contains a ".."
// segment. This runs before ServeMux path cleaning, which would otherwise
// redirect such paths back inside the root.
func rejectTraversal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if containsDotDot(r.URL.Path) {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// containsDotDot reports whether any slash-separated segment of p is "..".
func containsDotDot(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

type forceListingKey struct{}

// forceListing folds the trailing-triple-slash convention into the request
// context before ServeMux path cleaning can redirect it away. A request
// path ending in "///" asks for the directory listing even when an index
// file exists. The marker lives in the context, not the URL, so clients
// cannot forge it directly.
func forceListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "///") {
			r.URL.Path = strings.TrimRight(r.URL.Path, "/") + "/"
			r = r.WithContext(context.WithValue(r.Context(), forceListingKey{}, true))
		}
		next.ServeHTTP(w, r)
	})
}

// listingForced reports whether the request asked for the directory listing
// via the trailing-slash convention.
func listingForced(r *http.Request) bool {
	v, _ := r.Context().Value(forceListingKey{}).(bool)
	return v
}
