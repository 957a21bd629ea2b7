package configloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/yaklabco/gramlint/internal/logging"
	"github.com/yaklabco/gramlint/pkg/config"
)

// DefaultDebounce is how long the watcher waits for writes to settle.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions controls a Watcher.
type WatchOptions struct {
	// Load is passed to Load on every reload.
	Load LoadOptions

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	Logger *log.Logger
}

// Watcher reloads configuration when a config file changes and publishes
// the result to a config.Holder.
type Watcher struct {
	opts   WatchOptions
	holder *config.Holder
	logger *log.Logger
	fs     *fsnotify.Watcher
	dirs   []string
	names  map[string]bool
}

// NewWatcher starts watching the directories that may hold configuration
// for opts.Load: the working directory, the directory of each discovered
// file and the user config directory. Directories that do not exist are
// skipped. Events are delivered once Run is called.
func NewWatcher(ctx context.Context, opts WatchOptions, holder *config.Holder) (*Watcher, error) {
	if holder == nil {
		return nil, errors.New("config watcher needs a holder")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	workDir := opts.Load.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	paths, err := DiscoverPaths(ctx, workDir)
	if err != nil {
		return nil, fmt.Errorf("discover paths: %w", err)
	}
	paths.Explicit = opts.Load.ExplicitPath

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		opts:   opts,
		holder: holder,
		logger: logging.OrDefault(opts.Logger),
		fs:     fsw,
		names:  make(map[string]bool),
	}
	for _, name := range ProjectConfigFiles {
		w.names[name] = true
	}
	for _, name := range dirConfigFiles {
		w.names[name] = true
	}

	candidates := []string{workDir}
	if userDir, err := UserConfigDir(); err == nil {
		candidates = append(candidates, userDir)
	}
	for _, file := range paths.Files() {
		w.names[filepath.Base(file)] = true
		candidates = append(candidates, filepath.Dir(file))
	}

	for _, dir := range candidates {
		abs, err := filepath.Abs(dir)
		if err != nil || slices.Contains(w.dirs, abs) {
			continue
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			continue
		}
		if err := fsw.Add(abs); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", abs, err)
		}
		w.dirs = append(w.dirs, abs)
	}

	return w, nil
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	return slices.Clone(w.dirs)
}

// Run processes file events until ctx is done. A config that fails to load
// is logged and the holder keeps its previous value.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	timer := time.NewTimer(w.opts.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("config file changed", logging.FieldPath, event.Name, "op", event.Op.String())
			timer.Reset(w.opts.Debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", logging.FieldError, err)

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return w.names[filepath.Base(event.Name)]
}

func (w *Watcher) reload(ctx context.Context) {
	result, err := Load(ctx, w.opts.Load)
	if err != nil {
		w.logger.Warn("config reload failed; keeping previous configuration", logging.FieldError, err)
		return
	}
	for _, warning := range result.Warnings {
		w.logger.Warn(warning)
	}
	w.logger.Info("configuration reloaded", logging.FieldPaths, result.LoadedFrom)
	w.holder.Update(result.Config)
}

// Watch is NewWatcher followed by Run.
func Watch(ctx context.Context, opts WatchOptions, holder *config.Holder) error {
	w, err := NewWatcher(ctx, opts, holder)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
