package services

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
)

// pendingRequest is one in-flight computation. Waiters block on done and
// then read the shared result.
type pendingRequest struct {
	done   chan struct{}
	result string
	err    error
}

// RequestBroker memoizes recent answers by fingerprint and guarantees at
// most one concurrent computation per fingerprint: concurrent callers with
// the same fingerprint attach as waiters and all observe the same result or
// the same failure.
//
// Successful results enter a TTL+capacity bounded LRU cache. Failures are
// never cached; the next call retries the computation.
type RequestBroker struct {
	mu      sync.Mutex
	pending map[string]*pendingRequest
	cache   *expirable.LRU[string, string]
}

// NewRequestBroker creates a broker with the given cache bounds.
func NewRequestBroker(cfg domain.CacheSettings) *RequestBroker {
	return &RequestBroker{
		pending: make(map[string]*pendingRequest),
		cache:   expirable.NewLRU[string, string](cfg.Capacity, nil, cfg.TTL),
	}
}

// GetOrCompute returns the answer for fingerprint. An unexpired cache entry
// is returned immediately. If a computation for the fingerprint is in
// flight, the caller waits for its shared outcome. Otherwise compute runs
// exactly once in the calling goroutine.
//
// The second return value is true when the answer was served from cache or
// from an in-flight computation started by another caller.
func (b *RequestBroker) GetOrCompute(
	ctx context.Context,
	fingerprint string,
	compute func(ctx context.Context) (string, error),
) (string, bool, error) {
	b.mu.Lock()

	if answer, ok := b.cache.Get(fingerprint); ok {
		b.mu.Unlock()
		logger.Debug("Request cache hit: %s", shortFP(fingerprint))
		return answer, true, nil
	}

	if req, ok := b.pending[fingerprint]; ok {
		b.mu.Unlock()
		logger.Debug("Attaching to in-flight request: %s", shortFP(fingerprint))
		select {
		case <-req.done:
			return req.result, true, req.err
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}

	req := &pendingRequest{done: make(chan struct{})}
	b.pending[fingerprint] = req
	b.mu.Unlock()

	result, err := compute(ctx)

	b.mu.Lock()
	req.result = result
	req.err = err
	if err == nil {
		b.cache.Add(fingerprint, result)
	}
	delete(b.pending, fingerprint)
	b.mu.Unlock()

	close(req.done)
	return result, false, err
}

// CachedAnswers returns the number of cached entries. Used by status output.
func (b *RequestBroker) CachedAnswers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cache.Len()
}

// shortFP abbreviates a fingerprint for log lines.
func shortFP(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}
