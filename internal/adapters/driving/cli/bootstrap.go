package cli

import (
	"fmt"
	"time"

	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/classify"
	configfile "github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/config/file"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/delivery"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/extract"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/model"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/ocr"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/search/bm25"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/storage/memory"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/storage/sqlite"
	"github.com/clipbrd-labs/clipbrd-cli/internal/adapters/driven/watch"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/services"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
	"github.com/clipbrd-labs/clipbrd-cli/internal/ratelimit"
)

// appSettings holds the effective settings after ensureServices.
var appSettings domain.Settings

// folderOverride replaces the configured watch folder when set by a
// command flag. Must be assigned before ensureServices runs.
var folderOverride string

// ensureServices wires the application graph on first use. Tests set
// the service variables directly and never reach this.
func ensureServices() error {
	if pipelineService != nil && indexService != nil && configService != nil {
		return nil
	}

	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	configService = store

	settings := loadSettings(store)
	if folderOverride != "" {
		settings.WatchFolder = folderOverride
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid configuration (%s): %w", store.Path(), err)
	}
	appSettings = settings

	creds, err := configfile.LoadCredentials("")
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	db, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open index store: %w", err)
	}

	index := bm25.New(
		bm25.WithK1(settings.Scoring.K1),
		bm25.WithB(settings.Scoring.B),
	)

	indexService = services.NewIndexManager(
		settings,
		memory.NewDocumentStore(),
		index,
		extract.NewDefault(),
		db.SnapshotStore(),
		watch.New(),
	)

	modelClient, err := model.NewClient(settings.Model, creds)
	if err != nil {
		// Index and query commands still work without a model
		logger.Warn("Model provider unavailable: %v", err)
	}

	var ocrService driven.OCRService
	if modelClient != nil {
		ocrService = ocr.New(modelClient)
	}

	pipelineService = services.NewPipeline(
		settings,
		classify.New(modelClient),
		ocrService,
		indexService,
		services.NewRequestBroker(settings.Cache),
		ratelimit.New(settings.RateLimit),
		modelClient,
		delivery.NewClipboard(),
		delivery.NewLogNotifier(),
	)

	return nil
}

// loadSettings overlays configured values onto the defaults. Absent
// keys keep their default.
func loadSettings(store *configfile.ConfigStore) domain.Settings {
	s := domain.DefaultSettings()

	if v := store.GetString("watch.folder"); v != "" {
		s.WatchFolder = v
	}
	if v := store.GetInt("watch.scan_interval_seconds"); v > 0 {
		s.ScanInterval = time.Duration(v) * time.Second
	}

	if v := store.GetInt("chunking.tokens"); v > 0 {
		s.Chunking.ChunkTokens = v
	}
	if v := store.GetInt("chunking.overlap"); v > 0 {
		s.Chunking.OverlapTokens = v
	}

	if v := store.GetFloat("scoring.k1"); v > 0 {
		s.Scoring.K1 = v
	}
	if v := store.GetFloat("scoring.b"); v > 0 {
		s.Scoring.B = v
	}

	if v := store.GetInt("retrieval.top_k"); v > 0 {
		s.Retrieval.TopK = v
	}
	if v := store.GetInt("retrieval.timeout_ms"); v > 0 {
		s.Retrieval.Timeout = time.Duration(v) * time.Millisecond
	}

	if v := store.GetInt("cache.ttl_minutes"); v > 0 {
		s.Cache.TTL = time.Duration(v) * time.Minute
	}
	if v := store.GetInt("cache.capacity"); v > 0 {
		s.Cache.Capacity = v
	}

	if v := store.GetInt("rate_limit.burst"); v > 0 {
		s.RateLimit.Burst = v
	}
	if v := store.GetFloat("rate_limit.refill_per_second"); v > 0 {
		s.RateLimit.RefillPerSecond = v
	}
	if v := store.GetInt("rate_limit.max_wait_seconds"); v > 0 {
		s.RateLimit.MaxWait = time.Duration(v) * time.Second
	}

	if v := store.GetString("model.name"); v != "" {
		s.Model.Model = v
	}
	if v := store.GetString("model.provider"); v != "" {
		s.Model.Provider = domain.ModelProvider(v)
	}
	if v := store.GetString("model.base_url"); v != "" {
		s.Model.BaseURL = v
	}
	if v := store.GetInt("model.timeout_seconds"); v > 0 {
		s.Model.Timeout = time.Duration(v) * time.Second
	}
	if v := store.GetInt("model.max_retries"); v > 0 {
		s.Model.MaxRetries = v
	}

	return s
}
