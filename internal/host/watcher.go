package host

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the current-conversation marker file so that a
// switch performed by another process surfaces as a
// conversation-changed signal in this one.
type Watcher struct {
	local   *Local
	watcher *fsnotify.Watcher
	debug   bool
}

// NewWatcher starts watching the project data directory. Stop by
// cancelling ctx.
func NewWatcher(ctx context.Context, local *Local, debug bool) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(local.project.DataDir()); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{local: local, watcher: fsw, debug: debug}
	go w.loop(ctx)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.watcher.Close()
	marker := w.local.project.MarkerPath()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(marker) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.checkMarker(marker)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.debugf("watch error: %v", err)
		}
	}
}

func (w *Watcher) checkMarker(marker string) {
	data, err := os.ReadFile(marker)
	if err != nil {
		w.debugf("marker read failed: %v", err)
		return
	}
	id := string(bytes.TrimSpace(data))
	if id == "" {
		return
	}

	w.local.mu.Lock()
	current := w.local.current
	w.local.mu.Unlock()
	if id == current {
		return
	}

	if err := w.local.load(id); err != nil {
		w.debugf("reload after external switch failed: %v", err)
		return
	}
	w.local.bus.Emit(Event{Type: EventConversationChanged, ConversationID: id})
}

func (w *Watcher) debugf(format string, args ...any) {
	if w.debug {
		fmt.Fprintf(os.Stderr, "[watcher] "+format+"\n", args...)
	}
}
