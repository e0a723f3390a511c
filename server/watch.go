package server

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"polynav/navigation"
)

// debounceWindow drops repeated events for one file that arrive within it
const debounceWindow = 100 * time.Millisecond

// FileEvent is a change to a region file
type FileEvent struct {
	Path    string
	Removed bool
}

// Watcher reports changes to region files in a set of directories
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan FileEvent
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher starts watching dirs
func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan FileEvent, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isRegionFile(event.Name) {
				continue
			}
			removed := event.Op&(fsnotify.Remove|fsnotify.Rename) != 0
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < debounceWindow && !removed {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- FileEvent{Path: event.Name, Removed: removed}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isRegionFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == navigation.RegionFileExt
}

// Apply reloads or removes the region behind a file event
func (s *RegionStore) Apply(ev FileEvent) {
	if ev.Removed {
		if name, ok := s.RemoveFile(ev.Path); ok {
			s.logf("🗑️  Region %q removed (%s)\n", name, filepath.Base(ev.Path))
		}
		return
	}
	region, err := s.LoadFile(ev.Path)
	if err != nil {
		s.logf("⚠️  Failed to reload %s: %v\n", ev.Path, err)
		return
	}
	s.logf("🔄 Region %q reloaded (%d vertices)\n", region.Name, region.VertexCount())
}
