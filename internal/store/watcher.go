// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package store

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher notifies when session files change on disk, so a running client
// can refresh its session list when another process (or a second instance)
// saves or deletes a session.
type Watcher struct {
	store *Store
	fsw   *fsnotify.Watcher
	done  chan struct{}
}

// Watch starts watching the store directory and invokes onChange with the
// session name for every created, written, removed or renamed session file.
// Changes made through this store, such as autosaves, are filtered out; only
// other writers trigger the callback. The directory is created if it does
// not exist yet, since fsnotify cannot watch a missing path.
func (s *Store) Watch(onChange func(name string)) (*Watcher, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, &PersistenceError{Op: "create sessions dir", Path: s.Dir, Err: err}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(s.Dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{store: s, fsw: fsw, done: make(chan struct{})}
	go w.loop(onChange)
	return w, nil
}

func (w *Watcher) loop(onChange func(name string)) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}
			// Temp files from atomic writes carry a .tmp- prefix and are
			// already filtered by the suffix check above.
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(event.Name), ".json")
			if w.store.ownWrite(name) {
				continue
			}
			onChange(name)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher. Safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
