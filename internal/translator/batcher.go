package translator

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lingoreel/lingoreel/pkg/log"
)

const (
	// Separator joined between batched texts. The token is statistically
	// absent from subtitle prose, so a well-behaved provider returns it
	// untouched and the result splits back per segment.
	batchSeparator = " |||SUBTITLE_SEP||| "
	separatorToken = "|||SUBTITLE_SEP|||"

	maxCharsPerBatch = 4500
	minBatchSize     = 10
	maxBatchSize     = 200

	maxRetries      = 3
	baseBackoff     = 2 * time.Second
	interBatchDelay = 500 * time.Millisecond
	singleItemDelay = 300 * time.Millisecond
)

// Batcher translates ordered text sequences through a Translator in
// size-bounded batches, degrading to empty strings instead of failing.
type Batcher struct {
	translator  Translator
	parallelism int
	onProgress  func(done, total int)
	sleep       func(ctx context.Context, d time.Duration)
}

type BatcherOption func(*Batcher)

// WithParallelism dispatches up to n batches concurrently. Results are
// still reassembled in input order.
func WithParallelism(n int) BatcherOption {
	return func(b *Batcher) {
		if n > 1 {
			b.parallelism = n
		}
	}
}

// WithProgress registers a callback invoked after each batch with the count
// of texts processed so far and the total.
func WithProgress(fn func(done, total int)) BatcherOption {
	return func(b *Batcher) {
		b.onProgress = fn
	}
}

// withSleep replaces the delay function, for tests.
func withSleep(fn func(ctx context.Context, d time.Duration)) BatcherOption {
	return func(b *Batcher) {
		b.sleep = fn
	}
}

func NewBatcher(translator Translator, opts ...BatcherOption) *Batcher {
	b := &Batcher{
		translator:  translator,
		parallelism: 1,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// TranslateAll translates texts into targetLanguage, returning a slice of
// identical length and order. Entries that ultimately cannot be translated
// come back as empty strings; the call itself never fails.
func (b *Batcher) TranslateAll(ctx context.Context, texts []string, targetLanguage string) []string {
	results := make([]string, len(texts))
	if len(texts) == 0 {
		return results
	}

	batchSize := b.batchSize(texts)
	batchCount := (len(texts) + batchSize - 1) / batchSize
	log.Info("Translating %d texts in %d batches of up to %d", len(texts), batchCount, batchSize)

	var done int
	var progressMu sync.Mutex
	reportProgress := func(n int) {
		if b.onProgress == nil {
			return
		}
		progressMu.Lock()
		done += n
		current := done
		progressMu.Unlock()
		b.onProgress(current, len(texts))
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.parallelism)

	for start := 0; start < len(texts); start += batchSize {
		if ctx.Err() != nil {
			break
		}
		start := start
		end := min(start+batchSize, len(texts))

		group.Go(func() error {
			translated := b.translateBatch(groupCtx, texts[start:end], targetLanguage)
			copy(results[start:end], translated)
			reportProgress(end - start)
			return nil
		})

		if end < len(texts) {
			b.sleep(ctx, interBatchDelay)
		}
	}
	_ = group.Wait()

	return results
}

// batchSize derives a batch size that keeps the joined batch under the
// provider character ceiling, clamped to avoid degenerate extremes.
func (b *Batcher) batchSize(texts []string) int {
	totalChars := 0
	for _, text := range texts {
		totalChars += len(text)
	}
	avgChars := float64(totalChars) / float64(len(texts))

	size := int(maxCharsPerBatch / (avgChars + float64(len(batchSeparator))))
	if size < minBatchSize {
		size = minBatchSize
	}
	if size > maxBatchSize {
		size = maxBatchSize
	}
	return size
}

// translateBatch translates one batch as a single joined call, falling back
// to per-text translation when the joined result cannot be split cleanly.
func (b *Batcher) translateBatch(ctx context.Context, batch []string, targetLanguage string) []string {
	joined := strings.Join(batch, batchSeparator)

	combined, err := b.translateWithRetry(ctx, joined, targetLanguage)
	if err == nil {
		parts := strings.Split(combined, separatorToken)
		if len(parts) == len(batch) {
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		}
		log.Warn("Batch translation returned %d parts for %d texts, falling back to singles", len(parts), len(batch))
	} else {
		log.Warn("Batch translation failed, falling back to singles: %v", err)
	}

	results := make([]string, len(batch))
	for i, text := range batch {
		if ctx.Err() != nil {
			break
		}
		translated, err := b.translateWithRetry(ctx, text, targetLanguage)
		if err != nil {
			// Empty string beats aborting the whole ingestion for one phrase.
			log.Error("Dropping translation for one text: %v", err)
			continue
		}
		results[i] = strings.TrimSpace(translated)
		if i < len(batch)-1 {
			b.sleep(ctx, singleItemDelay)
		}
	}
	return results
}

// translateWithRetry retries transient failures with exponential backoff
// (2s, 4s, 8s). Non-transient errors propagate immediately so the caller
// can decide how to degrade.
func (b *Batcher) translateWithRetry(ctx context.Context, text string, targetLanguage string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		translated, err := b.translator.Translate(ctx, text, targetLanguage)
		if err == nil {
			return translated, nil
		}
		if !IsTransient(err) {
			return "", err
		}

		lastErr = err
		if attempt < maxRetries-1 {
			wait := baseBackoff << attempt
			log.Warn("Translation rate limited, waiting %s before retry %d/%d", wait, attempt+2, maxRetries)
			b.sleep(ctx, wait)
		}
	}
	return "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
