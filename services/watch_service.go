package services

import (
	"context"
	"errors"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/corpus"
)

// WatchService triggers a full rebuild when supported files in the documents
// directory change. Events are debounced so an editor save (often several
// events) or a batch copy schedules one rebuild, not many.
type WatchService struct {
	ingest   IngestService
	dir      string
	debounce time.Duration
	log      *zap.Logger
}

func NewWatchService(ingest IngestService, dir string, log *zap.Logger) *WatchService {
	return &WatchService{
		ingest:   ingest,
		dir:      dir,
		debounce: 3 * time.Second,
		log:      log.Named("watcher"),
	}
}

// WatchDirectory blocks until ctx is cancelled, rebuilding after changes
// settle. A change arriving mid-rebuild marks the run dirty and schedules one
// follow-up rebuild when the current one finishes.
func (s *WatchService) WatchDirectory(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Error("failed to create file watcher", zap.Error(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		s.log.Error("failed to add path to watcher", zap.String("dir", s.dir), zap.Error(err))
		return
	}
	s.log.Info("watching directory", zap.String("dir", s.dir))

	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	done := make(chan error, 1)
	var rebuilding, pending bool

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !corpus.IsSupportedFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.log.Info("change detected", zap.String("event", event.String()))
			if rebuilding {
				pending = true
			} else {
				s.resetTimer(timer)
			}

		case <-timer.C:
			rebuilding = true
			go func() {
				_, err := s.ingest.Reindex(ctx)
				done <- err
			}()

		case err := <-done:
			rebuilding = false
			switch {
			case err == nil:
				s.log.Info("rebuild after change finished")
			case errors.Is(err, ErrRebuildRunning):
				// Someone else ran the pipeline; try again after the window.
				pending = true
			default:
				s.log.Error("rebuild after change failed", zap.Error(err))
			}
			if pending {
				pending = false
				s.resetTimer(timer)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Error("watcher error", zap.Error(err))

		case <-ctx.Done():
			s.log.Info("context cancelled, shutting down watcher")
			return
		}
	}
}

func (s *WatchService) resetTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(s.debounce)
}
