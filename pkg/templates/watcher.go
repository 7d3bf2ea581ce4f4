package templates

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates the resolver's enumeration cache when a template
// directory changes on disk, so newly dropped or edited user templates show
// up without a restart.
type Watcher struct {
	resolver *Resolver
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// NewWatcher starts watching the resolver's user template directories. The
// bundled core set is immutable and not watched. Returns nil with no error
// when there is nothing to watch.
func NewWatcher(resolver *Resolver, logger *slog.Logger) (*Watcher, error) {
	if resolver == nil {
		return nil, fmt.Errorf("templates: watcher needs a resolver")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var dirs []string
	for _, dir := range []string{resolver.siteDir, resolver.networkDir} {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return nil, nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("templates: create watcher: %w", err)
	}
	for _, dir := range dirs {
		if err := fw.Add(dir); err != nil {
			logger.Warn("template dir not watchable", slog.String("dir", dir), slog.Any("error", err))
		}
	}

	return &Watcher{resolver: resolver, watcher: fw, logger: logger}, nil
}

// Run processes filesystem events until the context is cancelled or the
// underlying watcher closes.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil {
		return nil
	}
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, templateExtension) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("template change detected",
				slog.String("file", event.Name),
				slog.String("op", event.Op.String()),
			)
			w.resolver.Invalidate()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("template watcher error", slog.Any("error", err))
		}
	}
}
