// Package watcher notifies callers when any of a fixed set of files changes.
//
// Files are watched through their parent directories so that editors which
// save by writing a temporary file and renaming it over the original are
// still seen. Rapid changes to the same file are coalesced into one event
// after a debounce delay.
package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrPathNotExist  = errors.New("path does not exist")
)

// Op is a set of file operations.
type Op uint32

const (
	// OpCreate indicates the file was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates the file was written to.
	OpWrite
	// OpRemove indicates the file was removed.
	OpRemove
	// OpRename indicates the file was renamed away.
	OpRename
)

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

func (op Op) String() string {
	var names []string
	for _, n := range []struct {
		op   Op
		name string
	}{{OpCreate, "CREATE"}, {OpWrite, "WRITE"}, {OpRemove, "REMOVE"}, {OpRename, "RENAME"}} {
		if op.Has(n.op) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, "|")
}

// Event is a debounced change of one watched file.
type Event struct {
	// Path is the absolute path of the file.
	Path string

	// Op holds every operation seen during the debounce window.
	Op Op

	// Timestamp is when the last operation was seen.
	Timestamp time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a file must stay quiet before its event is
// delivered.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithBufferSize sets the capacity of the event channel.
func WithBufferSize(n int) Option {
	return func(w *Watcher) {
		if n > 0 {
			w.bufSize = n
		}
	}
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// Watcher watches individual files.
type Watcher struct {
	mu sync.Mutex

	fsw     *fsnotify.Watcher
	delay   time.Duration
	bufSize int

	// files maps watched files to true; dirs counts watched files per
	// directory.
	files map[string]bool
	dirs  map[string]int

	pending map[string]*pendingEvent
	events  chan Event
	errors  chan error

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// New creates a watcher and starts its event loop.
func New(opts ...Option) (*Watcher, error) {
	w := &Watcher{
		delay:   100 * time.Millisecond,
		bufSize: 16,
		files:   make(map[string]bool),
		dirs:    make(map[string]int),
		pending: make(map[string]*pendingEvent),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w.fsw = fsw
	w.events = make(chan Event, w.bufSize)
	w.errors = make(chan error, w.bufSize)

	w.closedWg.Add(1)
	go w.processLoop()
	return w, nil
}

// Watch adds a file. The file must exist.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return ErrPathNotExist
		}
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[abs] {
		return nil
	}

	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Files returns the watched files.
func (w *Watcher) Files() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	return files
}

// Events returns the debounced event channel. It is closed by Close.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the error channel. It is closed by Close.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Close stops the watcher. Pending events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	err := w.fsw.Close()
	w.closedWg.Wait()

	w.mu.Lock()
	close(w.events)
	close(w.errors)
	w.mu.Unlock()
	return err
}

func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case fsEvent, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(fsEvent)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) handleFSEvent(fsEvent fsnotify.Event) {
	op := convertOp(fsEvent.Op)
	if op == 0 {
		return
	}
	path := filepath.Clean(fsEvent.Name)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !w.files[path] {
		return
	}

	now := time.Now()
	if p, ok := w.pending[path]; ok {
		p.event.Op |= op
		p.event.Timestamp = now
		p.timer.Reset(w.delay)
		return
	}
	p := &pendingEvent{event: Event{Path: path, Op: op, Timestamp: now}}
	p.timer = time.AfterFunc(w.delay, func() { w.fire(path) })
	w.pending[path] = p
}

// fire delivers the pending event of path.
func (w *Watcher) fire(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pending[path]
	if !ok || w.closed {
		return
	}
	delete(w.pending, path)

	select {
	case w.events <- p.event:
	default:
		// Channel full; the consumer still has an undelivered event to act on.
	}
}

func convertOp(fsOp fsnotify.Op) Op {
	var op Op
	if fsOp.Has(fsnotify.Create) {
		op |= OpCreate
	}
	if fsOp.Has(fsnotify.Write) {
		op |= OpWrite
	}
	if fsOp.Has(fsnotify.Remove) {
		op |= OpRemove
	}
	if fsOp.Has(fsnotify.Rename) {
		op |= OpRename
	}
	return op
}
