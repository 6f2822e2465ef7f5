package source

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	infralogger "github.com/jonesrussell/north-cloud/link-review/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/link-review/internal/domain"
)

type parseFunc func(path string, today domain.Date) ([]domain.LinkRecord, error)

// FileSource serves records from an export file. Parsed rows are cached
// until the file changes on disk (see Watch) or the calendar day rolls over,
// since blank dates default to today.
type FileSource struct {
	name  string
	path  string
	parse parseFunc
	now   func() time.Time
	log   infralogger.Logger

	mu        sync.Mutex
	cached    []domain.LinkRecord
	cachedDay domain.Date
	valid     bool
}

// FileOption configures a FileSource.
type FileOption func(*FileSource)

// WithFileClock replaces time.Now for default dates.
func WithFileClock(now func() time.Time) FileOption {
	return func(s *FileSource) { s.now = now }
}

func newFileSource(name, path string, parse parseFunc, log infralogger.Logger, opts ...FileOption) *FileSource {
	s := &FileSource{
		name:  name,
		path:  filepath.Clean(path),
		parse: parse,
		now:   time.Now,
		log:   log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name identifies the adapter in logs and metrics.
func (s *FileSource) Name() string { return s.name }

// Fetch returns the parsed export, reusing the cache when still valid.
func (s *FileSource) Fetch(ctx context.Context) ([]domain.LinkRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	today := domain.DateOf(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.valid || s.cachedDay != today {
		records, err := s.parse(s.path, today)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", s.path, err)
		}
		s.cached, s.cachedDay, s.valid = records, today, true
	}

	out := make([]domain.LinkRecord, len(s.cached))
	copy(out, s.cached)
	return out, nil
}

// Invalidate drops the cache so the next Fetch re-reads the file.
func (s *FileSource) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}

// Watch invalidates the cache whenever the export file is written, created,
// renamed or removed, until ctx ends. The parent directory is watched so
// editors that replace the file atomically are still seen.
func (s *FileSource) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	if err = w.Add(filepath.Dir(s.path)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	go s.watchLoop(ctx, w)
	return nil
}

func (s *FileSource) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	defer func() { _ = w.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != s.path || ev.Op == fsnotify.Chmod {
				continue
			}
			s.Invalidate()
			s.log.Debug("Export file changed, cache invalidated",
				infralogger.String("path", s.path),
				infralogger.String("op", ev.Op.String()),
			)
		case werr, ok := <-w.Errors:
			if !ok {
				return
			}
			s.Invalidate()
			s.log.Warn("File watcher error", infralogger.String("path", s.path), infralogger.Error(werr))
		}
	}
}
