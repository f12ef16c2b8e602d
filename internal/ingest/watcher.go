package ingest

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the create/write bursts file copies produce
const DefaultDebounce = 500 * time.Millisecond

// WatchConfig configures a report directory watcher
type WatchConfig struct {
	// Root is the directory to watch for new PDF reports.
	Root string

	// InitialScan emits PDFs already present in the root on startup.
	InitialScan bool

	// Debounce coalesces rapid event bursts per path; zero means
	// DefaultDebounce.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watch emits the path of each PDF report that appears in the configured
// directory until the context is canceled. Both channels close when the
// watcher stops.
func Watch(ctx context.Context, cfg WatchConfig) (<-chan string, <-chan error, error) {
	if cfg.Root == "" {
		return nil, nil, errors.New("no watch root provided")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}
	if err := w.Add(cfg.Root); err != nil {
		logger.Error("failed to watch reports directory", "root", cfg.Root, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	pathCh := make(chan string, 64)
	errCh := make(chan error, 1)

	if cfg.InitialScan {
		entries, err := filepath.Glob(filepath.Join(cfg.Root, "*.pdf"))
		if err == nil {
			for _, p := range entries {
				select {
				case pathCh <- p:
				default:
				}
			}
		}
	}

	go func() {
		defer close(pathCh)
		defer close(errCh)
		defer func() { _ = w.Close() }()

		// The pending set and both channels are only ever touched from
		// this goroutine; debounced flushes arrive through the timer's
		// channel instead of a timer callback.
		timer := time.NewTimer(cfg.Debounce)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()
		pending := map[string]struct{}{}

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				for p := range pending {
					select {
					case pathCh <- p:
					default:
					}
					delete(pending, p)
				}
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if !isPDF(e.Name) || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				pending[e.Name] = struct{}{}
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(cfg.Debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return pathCh, errCh, nil
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}
