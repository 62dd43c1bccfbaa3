package inbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kdduha/audioflow/internal/media"
	"github.com/rs/zerolog"
)

// DefaultSettle is how long a new file is left alone so the writer can finish.
const DefaultSettle = 500 * time.Millisecond

type implWatcher struct {
	inputDir  string
	handler   Handler
	logger    zerolog.Logger
	watcher   *fsnotify.Watcher
	semaphore chan struct{}
	settle    time.Duration
	wg        sync.WaitGroup
}

func New(inputDir string, handler Handler, logger zerolog.Logger, maxConcurrent int, settle time.Duration) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(inputDir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &implWatcher{
		inputDir:  inputDir,
		handler:   handler,
		logger:    logger.With().Str("component", "inbox").Logger(),
		watcher:   watcher,
		semaphore: make(chan struct{}, maxConcurrent),
		settle:    settle,
	}, nil
}

// Start blocks until ctx is done, then waits for conversions in progress.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info().Str("dir", w.inputDir).Int("max_concurrent", cap(w.semaphore)).Msg("inbox watcher started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("waiting for conversions in progress")
			w.wg.Wait()
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) {
				continue
			}
			if !IsRecording(event.Name) {
				w.logger.Debug().Str("file", event.Name).Msg("ignoring non-recording file")
				continue
			}
			w.logger.Info().Str("file", event.Name).Msg("new recording detected")

			select {
			case w.semaphore <- struct{}{}:
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				defer func() { <-w.semaphore }()

				if !w.sleep(ctx) {
					return
				}
				if err := w.handler(ctx, path); err != nil {
					w.logger.Error().Err(err).Str("file", path).Msg("conversion failed")
				}
			}(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) sleep(ctx context.Context) bool {
	if w.settle <= 0 {
		return true
	}
	timer := time.NewTimer(w.settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// IsRecording reports whether the file extension maps to an audio or video type.
func IsRecording(path string) bool {
	return media.IsSupported(media.TypeByExtension(path))
}
