// Package notify turns file-store writes into document change notifications
// for other live workspaces.
package notify

import (
	"fmt"
	"os"
	"sync"

	"github.com/alexanderramin/ganttboard/internal/repository"
	"github.com/fsnotify/fsnotify"
)

// Change carries a key and its newly written payload.
type Change struct {
	Key string
	Raw []byte
}

// Watcher watches a file store directory and emits a Change for every
// document file created or rewritten there.
type Watcher struct {
	watcher *fsnotify.Watcher
	changes chan Change
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	dir     string
}

// NewWatcher creates a watcher. It emits nothing until Start is called.
func NewWatcher() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher: w,
		changes: make(chan Change, 16),
		errors:  make(chan error, 4),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching dir.
func (w *Watcher) Start(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dir = dir
	w.running = true
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop ends watching and closes the Changes and Errors channels. It blocks
// until the event loop has exited.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	close(w.changes)
	close(w.errors)
	if err != nil {
		return fmt.Errorf("closing watcher: %w", err)
	}
	return nil
}

// Changes returns the channel of document changes.
func (w *Watcher) Changes() <-chan Change { return w.changes }

// Errors returns the channel of watch and read errors.
func (w *Watcher) Errors() <-chan error { return w.errors }

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			change, ok, err := w.convert(ev)
			if err != nil {
				w.report(err)
				continue
			}
			if !ok {
				continue
			}
			select {
			case w.changes <- change:
			case <-w.done:
				return
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

// convert reads the file behind a create or write event. Other operations and
// files that are not documents are skipped.
func (w *Watcher) convert(ev fsnotify.Event) (Change, bool, error) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return Change{}, false, nil
	}
	key, ok := repository.KeyForPath(ev.Name)
	if !ok {
		return Change{}, false, nil
	}
	raw, err := os.ReadFile(ev.Name)
	if err != nil {
		if os.IsNotExist(err) {
			return Change{}, false, nil
		}
		return Change{}, false, fmt.Errorf("reading changed document %s: %w", key, err)
	}
	if len(raw) == 0 {
		return Change{}, false, nil
	}
	return Change{Key: key, Raw: raw}, true, nil
}

// report forwards an error without blocking the event loop.
func (w *Watcher) report(err error) {
	select {
	case w.errors <- err:
	default:
	}
}
