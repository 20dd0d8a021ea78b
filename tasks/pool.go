// Package tasks maintains the pool of pending input data products and the
// bookkeeping for tasks handed out to pipeline workers. New products appear
// in <root>/input/ as *.fits files; completed ones are moved to
// <root>/processed/ and recorded in a journal.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

const (
	// InputDir is the subdirectory of the root watched for new data products.
	InputDir = "input"
	// ProcessedDir is the subdirectory completed products are moved to.
	ProcessedDir = "processed"
)

// ErrUnknownTask is returned by Complete for a task ID that was never
// dispatched (or was already completed).
var ErrUnknownTask = errors.New("unknown task")

// Pool tracks pending input files and dispatched tasks. All methods are safe
// for concurrent use.
type Pool struct {
	root string

	mu       sync.Mutex
	queue    []string
	queued   map[string]bool
	assigned map[string]string // task ID → input file name

	jmu sync.Mutex // serializes journal rewrites

	arrivals chan struct{}
}

// NewPool creates an empty pool rooted at the given directory. Call Scan to
// pick up files already present, and Watch to follow new arrivals.
func NewPool(root string) *Pool {
	return &Pool{
		root:     root,
		queued:   make(map[string]bool),
		assigned: make(map[string]string),
		arrivals: make(chan struct{}, 1),
	}
}

func (p *Pool) inputDir() string { return filepath.Join(p.root, InputDir) }

// Scan enqueues all *.fits files currently in the input directory that are
// not already queued or assigned. A missing input directory is not an error;
// the server may be used for plain file serving only.
func (p *Pool) Scan() error {
	entries, err := os.ReadDir(p.inputDir())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("scan %s: %w", p.inputDir(), err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".fits") {
			continue
		}
		p.enqueue(e.Name())
	}
	return nil
}

func (p *Pool) enqueue(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.queued[name] {
		return
	}
	for _, in := range p.assigned {
		if in == name {
			return
		}
	}

	p.queue = append(p.queue, name)
	sort.Strings(p.queue)
	p.queued[name] = true

	select {
	case p.arrivals <- struct{}{}:
	default:
	}
}

// Watch follows the input directory with fsnotify and enqueues newly created
// *.fits files until ctx is cancelled. If the input directory does not exist
// the watcher stays idle; the pool still works via Scan.
func (p *Pool) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(p.inputDir()); err != nil {
		log.Debug("input directory not watchable", "dir", p.inputDir(), "error", err)
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// A file moved into the directory arrives as a Create event;
			// Rename fires for the old name leaving.
			if !ev.Has(fsnotify.Create) {
				continue
			}
			name := filepath.Base(ev.Name)
			if !strings.EqualFold(filepath.Ext(name), ".fits") {
				continue
			}
			log.Debug("new input file", "file", name)
			p.enqueue(name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch input directory", "error", err)
		}
	}
}

// Next pops the next pending input file and returns a task for it. When the
// pool is empty it rescans the input directory once, then blocks until a new
// file arrives or ctx is cancelled.
func (p *Pool) Next(ctx context.Context) (Task, error) {
	scanned := false
	for {
		if t, ok := p.pop(); ok {
			return t, nil
		}
		if !scanned {
			if err := p.Scan(); err != nil {
				return Task{}, err
			}
			scanned = true
			continue
		}
		select {
		case <-ctx.Done():
			return Task{}, ctx.Err()
		case <-p.arrivals:
		}
	}
}

func (p *Pool) pop() (Task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.queue) == 0 {
		return Task{}, false
	}

	in := p.queue[0]
	p.queue = p.queue[1:]
	delete(p.queued, in)

	// The arrival signal is coalesced, so a remaining entry must re-signal
	// or a second waiter parked on arrivals could be stranded.
	if len(p.queue) > 0 {
		select {
		case p.arrivals <- struct{}{}:
		default:
		}
	}

	id := uuid.NewString()
	p.assigned[id] = in

	out := outputName(in)
	return Task{
		ID:           id,
		InFile:       in,
		OutFile:      out,
		LogFile:      logName(out),
		RetrievePath: InputDir,
	}, true
}

// Complete retires a dispatched task: its input file is moved from input/ to
// processed/ and the completion is recorded in the journal.
func (p *Pool) Complete(taskID string) error {
	p.mu.Lock()
	in, ok := p.assigned[taskID]
	if ok {
		delete(p.assigned, taskID)
	}
	p.mu.Unlock()

	if !ok {
		return ErrUnknownTask
	}

	dstDir := filepath.Join(p.root, ProcessedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dstDir, err)
	}
	if err := os.Rename(filepath.Join(p.inputDir(), in), filepath.Join(dstDir, in)); err != nil {
		return fmt.Errorf("move %s: %w", in, err)
	}

	if err := p.journal(taskID, in); err != nil {
		// The move already happened; a journal failure is not fatal.
		log.Warn("update task journal", "task_id", taskID, "error", err)
	}
	return nil
}

// Pending returns the number of input files waiting to be dispatched.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
