package monitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driving"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
)

// Screenshots watches a folder for newly captured screenshot images and
// submits them to the pipeline. Capture itself happens outside the
// process (the OS screenshot tool writing into the folder).
type Screenshots struct {
	pipeline driving.Pipeline
	watcher  driven.FolderWatcher
	folder   string

	seen map[string]time.Time
}

// NewScreenshots creates a screenshot folder feed.
func NewScreenshots(pipeline driving.Pipeline, watcher driven.FolderWatcher, folder string) *Screenshots {
	return &Screenshots{
		pipeline: pipeline,
		watcher:  watcher,
		folder:   folder,
		seen:     make(map[string]time.Time),
	}
}

// Run watches the screenshot folder until ctx is cancelled. Images
// already present at start are treated as seen and never submitted.
func (s *Screenshots) Run(ctx context.Context) error {
	s.prime()

	changes, err := s.watcher.Watch(ctx, s.folder)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			s.sweep()
		}
	}
}

// prime records images already in the folder so only new captures fire.
func (s *Screenshots) prime() {
	entries, err := os.ReadDir(s.folder)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isImage(entry.Name()) {
			continue
		}
		if info, err := entry.Info(); err == nil {
			s.seen[entry.Name()] = info.ModTime()
		}
	}
}

// sweep submits images that appeared or changed since the last pass.
func (s *Screenshots) sweep() {
	entries, err := os.ReadDir(s.folder)
	if err != nil {
		logger.Warn("Screenshot folder unreadable: %v", err)
		return
	}

	for _, entry := range entries {
		if entry.IsDir() || !isImage(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if prev, ok := s.seen[entry.Name()]; ok && !info.ModTime().After(prev) {
			continue
		}
		s.seen[entry.Name()] = info.ModTime()

		path := filepath.Join(s.folder, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Cannot read screenshot %s: %v", path, err)
			continue
		}
		if len(data) == 0 {
			continue
		}

		logger.Debug("Screenshot captured: %s (%d bytes)", entry.Name(), len(data))
		s.pipeline.Submit(domain.ClipboardEvent{
			Kind:       domain.EventScreenshot,
			Image:      data,
			CapturedAt: info.ModTime(),
		})
	}
}

func isImage(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}
