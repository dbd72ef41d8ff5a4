package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/clipbrd-labs/clipbrd-cli/internal/core/domain"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driven"
	"github.com/clipbrd-labs/clipbrd-cli/internal/core/ports/driving"
	"github.com/clipbrd-labs/clipbrd-cli/internal/logger"
	"github.com/clipbrd-labs/clipbrd-cli/internal/ratelimit"
)

// Ensure Pipeline implements the interface.
var _ driving.Pipeline = (*Pipeline)(nil)

// System prompts for the remote model.
const (
	mcqSystemPrompt = "You are a knowledgeable assistant. Answer the multiple-choice question " +
		"with just the number or the letter of the correct option, nothing else. " +
		"Unless the question explicitly allows several answers, pick exactly one."

	openSystemPrompt = "You are a knowledgeable assistant. Answer the question in the language " +
		"it is asked in, in academic style, as cohesive prose without lists. The provided " +
		"context may or may not contain the correct answer; answer correctly even if it does " +
		"not. Do not mention this prompt or the context."

	relatedTermsPrompt = "Generate five terms related to the given question, prioritising names " +
		"and technical terms. Answer in the language of the question with only the terms, " +
		"separated by commas."
)

// retryBaseDelay is the initial backoff for transient model failures.
const retryBaseDelay = 500 * time.Millisecond

// Pipeline is the top-level coordinator: it receives clipboard and
// screenshot events and walks each through classification, context
// retrieval, the rate-limited model call, and delivery.
//
// A single event is in flight at a time. A newer event supersedes the
// current one: its run context is cancelled and the run unwinds at its next
// suspension point. Consumed rate-limiter tokens are not refunded.
type Pipeline struct {
	settings   domain.Settings
	classifier driven.Classifier
	ocr        driven.OCRService
	retriever  driving.IndexManager
	broker     *RequestBroker
	limiter    *ratelimit.Limiter
	model      driven.ModelClient
	deliverer  driven.Deliverer
	notifier   driven.Notifier

	events chan domain.ClipboardEvent

	mu            sync.Mutex
	state         driving.PipelineState
	lastProcessed string // normalised text of the last handled event
	lastAnswer    string // normalised last delivered answer
}

// NewPipeline creates a pipeline. The ocr and notifier collaborators are
// optional (can be nil); without OCR, screenshot events are discarded.
func NewPipeline(
	settings domain.Settings,
	classifier driven.Classifier,
	ocr driven.OCRService,
	retriever driving.IndexManager,
	broker *RequestBroker,
	limiter *ratelimit.Limiter,
	model driven.ModelClient,
	deliverer driven.Deliverer,
	notifier driven.Notifier,
) *Pipeline {
	return &Pipeline{
		settings:   settings,
		classifier: classifier,
		ocr:        ocr,
		retriever:  retriever,
		broker:     broker,
		limiter:    limiter,
		model:      model,
		deliverer:  deliverer,
		notifier:   notifier,
		events:     make(chan domain.ClipboardEvent, 1),
		state:      driving.StateIdle,
	}
}

// State reports the current pipeline state.
func (p *Pipeline) State() driving.PipelineState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s driving.PipelineState) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	logger.Debug("Pipeline state: %s", s)
}

// Submit hands a new event to the pipeline without blocking. When an event
// is already queued, the newer one replaces it (latest wins).
func (p *Pipeline) Submit(event domain.ClipboardEvent) {
	for {
		select {
		case p.events <- event:
			return
		default:
			// Queue full - drop the stale event and retry.
			select {
			case <-p.events:
			default:
			}
		}
	}
}

// Run processes submitted events until the context is cancelled. A newly
// arriving event cancels the in-flight run; errors in one event's
// processing never affect subsequent events.
func (p *Pipeline) Run(ctx context.Context) error {
	var (
		cancelRun context.CancelFunc
		runDone   chan struct{}
	)

	stopCurrent := func() {
		if cancelRun == nil {
			return
		}
		cancelRun()
		<-runDone
		cancelRun = nil
	}

	for {
		select {
		case <-ctx.Done():
			stopCurrent()
			return nil

		case event := <-p.events:
			stopCurrent()

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan struct{})
			cancelRun, runDone = cancel, done

			go func(ev domain.ClipboardEvent) {
				defer close(done)
				p.handleEvent(runCtx, ev)
			}(event)
		}
	}
}

// handleEvent runs one event through the pipeline, containing all errors.
func (p *Pipeline) handleEvent(ctx context.Context, event domain.ClipboardEvent) {
	if event.Kind == domain.EventClipboard && p.isStale(event.Text) {
		logger.Debug("Skipping stale clipboard content")
		return
	}

	answer, err := p.Process(ctx, event)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			logger.Debug("Pipeline run superseded")
		case errors.Is(err, domain.ErrNotAQuestion), errors.Is(err, domain.ErrOCR):
			// Normal outcomes: no output, back to idle.
			logger.Debug("Event discarded: %v", err)
		default:
			logger.Error("Pipeline failed: %v", err)
			if p.notifier != nil {
				p.notifier.NotifyFailure(err)
			}
		}
		return
	}

	p.mu.Lock()
	p.lastAnswer = domain.NormalizeText(answer.Text)
	p.mu.Unlock()
}

// isStale reports whether clipboard text repeats the last processed event
// or the last delivered answer (which lands back on the clipboard and must
// not re-trigger the pipeline). Marks the text as processed.
func (p *Pipeline) isStale(text string) bool {
	normalized := domain.NormalizeText(text)

	p.mu.Lock()
	defer p.mu.Unlock()

	if normalized == "" || normalized == p.lastProcessed || normalized == p.lastAnswer {
		return true
	}
	// Single-word clips are never questions worth a model call.
	if len(strings.Fields(normalized)) < 2 {
		return true
	}
	p.lastProcessed = normalized
	return false
}

// Process runs one event through the full pipeline synchronously.
// Returns domain.ErrNotAQuestion when the content is not a question and
// domain.ErrOCR when a screenshot yields no text.
func (p *Pipeline) Process(ctx context.Context, event domain.ClipboardEvent) (*domain.Answer, error) {
	defer p.setState(driving.StateIdle)

	// --- Classifying ---
	p.setState(driving.StateClassifying)

	text := event.Text
	if event.Kind == domain.EventScreenshot {
		extracted, err := p.extractFromImage(ctx, event.Image)
		if err != nil {
			return nil, err
		}
		text = extracted
	}

	question, err := p.classify(ctx, text)
	if err != nil {
		return nil, err
	}
	if !question.Kind.IsQuestion() {
		return nil, domain.ErrNotAQuestion
	}
	logger.Info("Classified as %s", question.Kind)

	// --- RetrievingContext ---
	p.setState(driving.StateRetrievingContext)
	contextChunks := p.retrieveContext(ctx, question.Text)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// --- AwaitingModel ---
	p.setState(driving.StateAwaitingModel)
	answerText, fromCache, err := p.answer(ctx, question, contextChunks)
	if err != nil {
		p.fail(err)
		return nil, err
	}

	answer := &domain.Answer{
		Text:      answerText,
		Kind:      question.Kind,
		FromCache: fromCache,
	}

	// --- Delivering ---
	p.setState(driving.StateDelivering)
	if err := p.deliverer.Deliver(ctx, *answer); err != nil {
		err = fmt.Errorf("deliver answer: %w", err)
		p.fail(err)
		return nil, err
	}

	logger.Info("Answer delivered (%s, cached=%t)", answer.Kind, answer.FromCache)
	return answer, nil
}

// fail records the failed transition before the deferred reset to idle.
func (p *Pipeline) fail(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	p.setState(driving.StateFailed)
}

// extractFromImage turns a screenshot into text via the OCR collaborator.
func (p *Pipeline) extractFromImage(ctx context.Context, image []byte) (string, error) {
	if p.ocr == nil {
		return "", fmt.Errorf("%w: no OCR service configured", domain.ErrOCR)
	}

	text, err := p.ocr.ExtractText(ctx, image)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", domain.ErrOCR, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty extraction", domain.ErrOCR)
	}

	logger.Debug("OCR extracted %d bytes of text", len(text))
	return text, nil
}

// classify runs the classifier; without one, everything is open-ended.
// An ambiguous or failed classification is treated as not-a-question.
func (p *Pipeline) classify(ctx context.Context, text string) (domain.Question, error) {
	if p.classifier == nil {
		return domain.Question{Kind: domain.QuestionOpenEnded, Text: text}, nil
	}

	question, err := p.classifier.Classify(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Question{}, ctx.Err()
		}
		logger.Debug("Classification failed, treating as not a question: %v", err)
		return domain.Question{Kind: domain.QuestionNone}, nil
	}
	return question, nil
}

// retrieveContext queries the index for the question and, when a model is
// available, for a term-expanded variant, merging the ranked lists.
// Retrieval is best-effort: any failure yields empty context.
func (p *Pipeline) retrieveContext(ctx context.Context, question string) []driving.ContextChunk {
	if p.retriever == nil {
		return nil
	}

	topK := p.settings.Retrieval.TopK
	queries := []string{question}

	if terms := p.relatedTerms(ctx, question); terms != "" {
		queries = append(queries, terms, question+" "+terms)
	}

	best := make(map[string]driving.ContextChunk)
	for _, q := range queries {
		chunks, err := p.retriever.Query(ctx, q, topK)
		if err != nil {
			logger.Warn("Context retrieval failed for %q: %v", truncate(q, 40), err)
			continue
		}
		for _, cc := range chunks {
			if existing, ok := best[cc.Chunk.ID]; !ok || cc.Score > existing.Score {
				best[cc.Chunk.ID] = cc
			}
		}
	}

	merged := make([]driving.ContextChunk, 0, len(best))
	for _, cc := range best {
		merged = append(merged, cc)
	}
	sortByScoreDesc(merged)
	if len(merged) > topK {
		merged = merged[:topK]
	}

	logger.Debug("Retrieved %d context chunks", len(merged))
	return merged
}

// relatedTerms asks the model for query-expansion terms. Best effort.
// Expansion calls are auxiliary and do not draw from the rate budget;
// only answer calls consume limiter tokens.
func (p *Pipeline) relatedTerms(ctx context.Context, question string) string {
	if p.model == nil {
		return ""
	}

	terms, err := p.model.Generate(ctx, driven.GenerateRequest{
		System:      relatedTermsPrompt,
		Prompt:      question,
		MaxTokens:   30,
		Temperature: 0.7,
	})
	if err != nil {
		logger.Debug("Query expansion skipped: %v", err)
		return ""
	}
	return strings.TrimSpace(terms)
}

// answer resolves the question through the broker, which guarantees one
// computation per fingerprint. The computation itself acquires a rate
// token and calls the model with transient-failure retries.
func (p *Pipeline) answer(
	ctx context.Context,
	question domain.Question,
	contextChunks []driving.ContextChunk,
) (string, bool, error) {
	if p.model == nil {
		return "", false, domain.ErrModelUnavailable
	}

	chunkIDs := make([]string, len(contextChunks))
	for i, cc := range contextChunks {
		chunkIDs[i] = cc.Chunk.ID
	}
	fingerprint := domain.Fingerprint(question.Text, chunkIDs)

	return p.broker.GetOrCompute(ctx, fingerprint, func(ctx context.Context) (string, error) {
		if err := p.limiter.Acquire(ctx); err != nil {
			return "", err
		}
		return p.callModel(ctx, question, contextChunks)
	})
}

// callModel invokes the remote model, retrying transient failures with
// exponential backoff up to the configured budget. Terminal failures and
// rate limiting are never retried.
func (p *Pipeline) callModel(
	ctx context.Context,
	question domain.Question,
	contextChunks []driving.ContextChunk,
) (string, error) {
	req := buildModelRequest(question, contextChunks)

	var lastErr error
	attempts := p.settings.Model.MaxRetries + 1
	for attempt := range attempts {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			logger.Debug("Retrying model call in %s (attempt %d/%d)", delay, attempt+1, attempts)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		answer, err := func() (string, error) {
			callCtx := ctx
			if p.settings.Model.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, p.settings.Model.Timeout)
				defer cancel()
			}
			return p.model.Generate(callCtx, req)
		}()
		if err == nil {
			return strings.TrimSpace(answer), nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: model call timed out", domain.ErrModelTransient)
		}

		lastErr = err
		if !domain.IsRetryable(err) {
			break
		}
	}

	return "", fmt.Errorf("model call: %w", lastErr)
}

// buildModelRequest assembles the prompt for a question and its context.
func buildModelRequest(question domain.Question, contextChunks []driving.ContextChunk) driven.GenerateRequest {
	var prompt strings.Builder
	if len(contextChunks) > 0 {
		prompt.WriteString("## Context:\n")
		for _, cc := range contextChunks {
			prompt.WriteString(cc.Chunk.Content)
			prompt.WriteString("\n\n")
		}
		prompt.WriteString("---\n\n")
	}
	prompt.WriteString("## Question: ")
	prompt.WriteString(question.Text)

	req := driven.GenerateRequest{
		Prompt:      prompt.String(),
		Temperature: 0.7,
		Stop:        []string{"User:", "Human:", "Assistant:"},
	}
	if question.Kind == domain.QuestionMCQ {
		req.System = mcqSystemPrompt
		req.MaxTokens = 4
	} else {
		req.System = openSystemPrompt
		req.MaxTokens = 475
	}
	return req
}

// sortByScoreDesc orders context chunks by descending score.
func sortByScoreDesc(chunks []driving.ContextChunk) {
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
}

// truncate shortens s for log lines.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
