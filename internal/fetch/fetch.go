// Package fetch drives a page driver to a URL with bounded retries. It is the
// only package that touches the network for taxonomy pages.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shelfdata/subjectwatch/internal/progress"
)

// Page is the shape every driver produces: the designated heading element's
// text plus the page's ordered text blocks. DOM selectors and page-lifecycle
// waiting are the driver's concern.
type Page struct {
	Heading string
	Blocks  []string
}

// PageDriver navigates to a URL and extracts the page shape. Implementations
// must honor ctx cancellation and deadlines.
type PageDriver interface {
	Navigate(ctx context.Context, url string) (Page, error)
}

// FetchError reports a navigation that failed after exhausting its retry
// budget. It wraps the last underlying cause.
type FetchError struct {
	URL      string
	Attempts int
	cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.cause)
}

func (e *FetchError) Unwrap() error {
	return e.cause
}

// Options bound a single fetch.
type Options struct {
	// MaxAttempts is the total attempt budget; values below 1 are raised to 1.
	MaxAttempts int
	// Timeout applies per attempt, not to the whole fetch.
	Timeout time.Duration
	// RetryDelay is the flat pause between attempts. The source target is
	// low-volume, so there is nothing to gain from exponential backoff.
	RetryDelay time.Duration
}

func (o Options) normalized() Options {
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 1
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	return o
}

// Controller wraps a PageDriver with bounded sequential retries and progress
// reporting.
type Controller struct {
	driver  PageDriver
	opts    Options
	emitter progress.Emitter
	logger  *zap.Logger
}

// NewController builds a Controller. emitter may be nil when no progress
// reporting is wanted.
func NewController(driver PageDriver, opts Options, emitter progress.Emitter, logger *zap.Logger) (*Controller, error) {
	if driver == nil {
		return nil, errors.New("page driver is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		driver:  driver,
		opts:    opts.normalized(),
		emitter: emitter,
		logger:  logger,
	}, nil
}

// Fetch navigates to url, retrying on failure with a flat delay until the
// attempt budget runs out. A successful navigation is never retried; problems
// the caller finds in the extracted content afterwards are the caller's
// concern. Each attempt emits one FETCH_ATTEMPT event.
func (c *Controller) Fetch(ctx context.Context, runID [16]byte, url string) (Page, error) {
	var (
		lastErr  error
		attempts int
	)
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		c.emitAttempt(runID, url, attempt)
		attempts = attempt

		page, err := c.navigateOnce(ctx, url)
		if err == nil {
			return page, nil
		}
		lastErr = err
		c.logger.Warn("navigation attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", c.opts.MaxAttempts),
			zap.Error(err),
		)

		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			break
		}
		if attempt < c.opts.MaxAttempts {
			if err := c.pause(ctx); err != nil {
				break
			}
		}
	}
	return Page{}, &FetchError{URL: url, Attempts: attempts, cause: lastErr}
}

func (c *Controller) navigateOnce(ctx context.Context, url string) (Page, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()
	return c.driver.Navigate(attemptCtx, url)
}

func (c *Controller) emitAttempt(runID [16]byte, url string, attempt int) {
	if c.emitter == nil {
		return
	}
	c.emitter.Emit(progress.Event{
		RunID:       runID,
		TS:          time.Now().UTC(),
		Stage:       progress.StageFetchAttempt,
		URL:         url,
		Attempt:     attempt,
		MaxAttempts: c.opts.MaxAttempts,
	})
}

func (c *Controller) pause(ctx context.Context) error {
	if c.opts.RetryDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(c.opts.RetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
