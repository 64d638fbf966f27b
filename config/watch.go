package config

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a profile file whenever it is written.
//
// Valid reloads are delivered on Profiles, and files that fail to load or
// validate are reported on Errors; the last good profile stays in effect.
// Both channels are closed by Close.
type Watcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	profiles chan *Profile
	errors   chan error
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// Watch starts watching the profile at path. The directory is watched rather
// than the file so editors that replace the file on save are followed.
func Watch(path string) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("watch: empty profile path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return nil, err
	}
	abs = filepath.Join(dir, filepath.Base(abs))

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(dir); err != nil {
		_ = fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		fsnotify: fsWatch,
		profiles: make(chan *Profile, 1),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.start()

	return w, nil
}

// Profiles returns the channel of reloaded profiles.
func (w *Watcher) Profiles() <-chan *Profile { return w.profiles }

// Errors returns the channel of reload and watch errors.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsnotify.Close()
		w.wg.Wait()
		close(w.profiles)
		close(w.errors)
	})

	return err
}

func (w *Watcher) start() {
	defer w.wg.Done()

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			p, err := Load(w.path)
			if err != nil {
				w.send(nil, err)
				continue
			}
			w.send(p, nil)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.send(nil, err)

		case <-w.done:
			return
		}
	}
}

// send delivers a result, replacing an undelivered one of the same kind.
func (w *Watcher) send(p *Profile, err error) {
	if err != nil {
		select {
		case <-w.errors:
		default:
		}
		select {
		case w.errors <- err:
		case <-w.done:
		}

		return
	}

	select {
	case <-w.profiles:
	default:
	}
	select {
	case w.profiles <- p:
	case <-w.done:
	}
}
