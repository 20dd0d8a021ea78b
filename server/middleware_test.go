package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestLogRequestsOneLinePerRequest(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	h, root := newTestServer(t, nil)
	writeFile(t, root, "hello.txt", []byte("hi"))

	get(t, h, "/hello.txt")
	get(t, h, "/missing")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "method=GET")
	assert.Contains(t, lines[0], "path=/hello.txt")
	assert.Contains(t, lines[0], "status=200")
	assert.Contains(t, lines[1], "status=404")
}

func TestContainsDotDot(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", false},
		{"/a/b.txt", false},
		{"/..", true},
		{"/../etc/passwd", true},
		{"/a/../b", true},
		{"/a..b/file", false},
		{"/..hidden", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsDotDot(tt.path), tt.path)
	}
}

func TestForceListingRewrite(t *testing.T) {
	var gotPath string
	var gotForced bool
	h := forceListing(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotForced = listingForced(r)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/data///", nil))
	assert.Equal(t, "/data/", gotPath)
	assert.True(t, gotForced)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/data/", nil))
	assert.Equal(t, "/data/", gotPath)
	assert.False(t, gotForced)
}

func TestContentType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"a.fits", "application/fits"},
		{"a.json", "application/json"},
		{"a.HTML", "text/html"},
		{"a.py", "text/plain"},
		{"run.weird", "text/plain; charset=utf-8"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, contentType(tt.path), tt.path)
	}
}
