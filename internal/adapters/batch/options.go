package batch

import (
	"time"

	"github.com/okian/pickpool/internal/adapters/repository"
	"github.com/okian/pickpool/pkg/logger"
	"golang.org/x/time/rate"
)

// Option applies a configuration option to the Writer.
type Option func(*Writer)

// WithBatchSize sets the chunk size. Values above the store limit are
// capped to it.
func WithBatchSize(size int) Option {
	return func(w *Writer) {
		if size > 0 {
			w.batchSize = min(size, repository.MaxBatchItems)
		}
	}
}

// WithMaxRetries sets how many retries a chunk gets after its first attempt.
func WithMaxRetries(n int) Option {
	return func(w *Writer) {
		if n >= 0 {
			w.maxRetries = n
		}
	}
}

// WithBackoff sets the base wait and the jitter upper bound. The wait before
// retry n is base*2^n plus jitter in [0, maxJitter].
func WithBackoff(base, maxJitter time.Duration) Option {
	return func(w *Writer) {
		if base >= 0 {
			w.baseWait = base
		}
		if maxJitter >= 0 {
			w.maxJitter = maxJitter
		}
	}
}

// WithJitter replaces the jitter source.
func WithJitter(fn func() time.Duration) Option {
	return func(w *Writer) {
		if fn != nil {
			w.jitter = fn
		}
	}
}

// WithConcurrency sets how many chunks may be in flight at once.
func WithConcurrency(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.concurrency = n
		}
	}
}

// WithRateLimit caps store requests per second across all chunks. Zero
// disables the limit.
func WithRateLimit(perSecond float64) Option {
	return func(w *Writer) {
		if perSecond > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets a custom logger for the writer.
func WithLogger(l logger.Logger) Option {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}
