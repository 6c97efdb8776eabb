// Package batch writes item collections to a store in size-bounded chunks,
// retrying the unprocessed remainder of each chunk with exponential backoff.
package batch

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/okian/pickpool/internal/adapters/repository"
	"github.com/okian/pickpool/pkg/logger"
	"github.com/okian/pickpool/pkg/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Default writer configuration.
const (
	DefaultBatchSize   = repository.MaxBatchItems
	DefaultMaxRetries  = 8
	DefaultBaseWait    = 50 * time.Millisecond
	DefaultMaxJitter   = 100 * time.Millisecond
	DefaultConcurrency = 1

	maxBackoffShift = 30
	maxWait         = time.Duration(math.MaxInt64)
)

// Attempt is one store call for a chunk. Request is the slice sent, freshly
// allocated for this attempt; Wait is the backoff slept before it.
type Attempt struct {
	Request     []repository.Item
	Unprocessed []repository.Item
	Wait        time.Duration
}

// ChunkResult records how one chunk moved through its states.
type ChunkResult struct {
	Index    int
	Size     int
	States   []State
	Attempts []Attempt
}

// State returns the chunk's latest state.
func (c *ChunkResult) State() State {
	if len(c.States) == 0 {
		return StatePending
	}
	return c.States[len(c.States)-1]
}

func (c *ChunkResult) transition(to State) error {
	from := c.State()
	if !canTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	c.States = append(c.States, to)
	return nil
}

// Report summarizes one Write call.
type Report struct {
	Partition string
	Items     int
	Chunks    []ChunkResult
	Attempts  int
	Retries   int
	Duration  time.Duration
}

// Writer persists collections through a repository.Store.
type Writer struct {
	store repository.Store

	batchSize   int
	maxRetries  int
	baseWait    time.Duration
	maxJitter   time.Duration
	jitter      func() time.Duration
	concurrency int
	limiter     *rate.Limiter

	logger logger.Logger
}

// NewWriter creates a Writer with default settings.
func NewWriter(store repository.Store, opts ...Option) *Writer {
	w := &Writer{
		store:       store,
		batchSize:   DefaultBatchSize,
		maxRetries:  DefaultMaxRetries,
		baseWait:    DefaultBaseWait,
		maxJitter:   DefaultMaxJitter,
		concurrency: DefaultConcurrency,
		logger:      logger.Get().Named("batch"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write stores items into partition. Chunks run concurrently up to the
// configured limit. The first failing chunk cancels the rest: no further
// chunk starts and running chunks stop before their next attempt. On
// exhaustion the error is an *ExhaustedError.
func (w *Writer) Write(ctx context.Context, partition string, items []repository.Item) (Report, error) {
	start := time.Now()
	chunks := Split(items, w.batchSize)
	report := Report{
		Partition: partition,
		Items:     len(items),
		Chunks:    make([]ChunkResult, len(chunks)),
	}
	for i, c := range chunks {
		report.Chunks[i] = ChunkResult{Index: i, Size: len(c), States: []State{StatePending}}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	started := 0
	for i, chunk := range chunks {
		if gctx.Err() != nil {
			break
		}
		res := &report.Chunks[i]
		chunk := chunk
		g.Go(func() error {
			return w.writeChunk(gctx, partition, res, chunk)
		})
		started++
	}
	err := g.Wait()
	if err == nil && started < len(chunks) {
		err = fmt.Errorf("batch write %s: %d of %d chunks not started: %w", partition, len(chunks)-started, len(chunks), ctx.Err())
	}

	for _, c := range report.Chunks {
		report.Attempts += len(c.Attempts)
		if len(c.Attempts) > 1 {
			report.Retries += len(c.Attempts) - 1
		}
	}
	report.Duration = time.Since(start)

	if err != nil {
		w.logger.Error(ctx, "batch write failed",
			logger.String("partition", partition),
			logger.Int("items", len(items)),
			logger.Int("attempts", report.Attempts),
			logger.Error(err))
		return report, err
	}

	w.logger.Info(ctx, "batch write complete",
		logger.String("partition", partition),
		logger.Int("items", len(items)),
		logger.Int("chunks", len(chunks)),
		logger.Int("retries", report.Retries),
		logger.Duration("duration", report.Duration))
	return report, nil
}

// writeChunk drives one chunk to Done or Aborted.
func (w *Writer) writeChunk(ctx context.Context, partition string, res *ChunkResult, chunk []repository.Item) error {
	abort := func(err error) error {
		_ = res.transition(StateAborted)
		return err
	}

	remaining := chunk
	var wait time.Duration
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return abort(fmt.Errorf("batch write %s chunk %d: %w", partition, res.Index, err))
		}
		if w.limiter != nil {
			if err := w.limiter.Wait(ctx); err != nil {
				return abort(fmt.Errorf("batch write %s chunk %d: rate limit: %w", partition, res.Index, err))
			}
		}

		request := make([]repository.Item, len(remaining))
		copy(request, remaining)
		if err := res.transition(StateSent); err != nil {
			return abort(err)
		}

		sentAt := time.Now()
		unprocessed, err := w.store.BatchUpsert(ctx, partition, request)
		metrics.RecordBatchRequest(partition, float64(time.Since(sentAt).Milliseconds()))
		res.Attempts = append(res.Attempts, Attempt{Request: request, Unprocessed: unprocessed, Wait: wait})

		if err != nil {
			return abort(fmt.Errorf("batch write %s chunk %d: %w", partition, res.Index, err))
		}
		if len(unprocessed) > len(request) {
			return abort(fmt.Errorf("%w: %d of %d", ErrInvalidUnprocessed, len(unprocessed), len(request)))
		}
		metrics.RecordItemsWritten(partition, len(request)-len(unprocessed))

		if len(unprocessed) == 0 {
			return res.transition(StateDone)
		}

		if err := res.transition(StatePartialFailure); err != nil {
			return abort(err)
		}
		metrics.RecordUnprocessed(partition, len(unprocessed))

		if attempt >= w.maxRetries {
			metrics.RecordExhausted(partition)
			return abort(&ExhaustedError{
				Partition: partition,
				Chunk:     res.Index,
				Attempts:  attempt + 1,
				Residual:  len(unprocessed),
			})
		}

		wait = w.backoff(attempt)
		metrics.RecordRetry(partition, float64(wait.Milliseconds()))
		w.logger.Warn(ctx, "unprocessed items, backing off",
			logger.String("partition", partition),
			logger.Int("chunk", res.Index),
			logger.Int("unprocessed", len(unprocessed)),
			logger.Int("retry", attempt+1),
			logger.Duration("wait", wait))

		if err := sleep(ctx, wait); err != nil {
			return abort(fmt.Errorf("batch write %s chunk %d: backoff: %w", partition, res.Index, err))
		}
		remaining = unprocessed
	}
}

// backoff returns the wait before retry n (0-based), saturating at the
// largest Duration instead of overflowing.
func (w *Writer) backoff(n int) time.Duration {
	shift := min(n, maxBackoffShift)
	wait := maxWait
	if w.baseWait <= maxWait>>shift {
		wait = w.baseWait << shift
	}

	j := w.nextJitter()
	if j > 0 && wait > maxWait-j {
		return maxWait
	}
	return wait + j
}

func (w *Writer) nextJitter() time.Duration {
	if w.jitter != nil {
		return w.jitter()
	}
	if w.maxJitter <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(w.maxJitter) + 1))
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
