// Package batch sequences fetch, segmentation, and validation across a list
// of category page URLs to build one taxonomy snapshot.
package batch

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/shelfdata/subjectwatch/internal/clock"
	"github.com/shelfdata/subjectwatch/internal/fetch"
	"github.com/shelfdata/subjectwatch/internal/progress"
	"github.com/shelfdata/subjectwatch/internal/segment"
	"github.com/shelfdata/subjectwatch/internal/taxonomy"
)

// Options bound the pacing between requests. The source site publishes no
// rate limit; randomized sequential pacing is what keeps the batch under
// abuse-detection thresholds, so URLs are never fetched in parallel.
type Options struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Failure records one URL that contributed nothing to the snapshot.
type Failure struct {
	URL string
	Err error
}

// Result is a completed batch run: the accumulated snapshot plus the per-URL
// failures. Partial coverage is acceptable; the caller decides whether to
// persist a partial snapshot.
type Result struct {
	Snapshot taxonomy.Snapshot
	Failures []Failure
}

// Runner walks URLs strictly in order, one at a time.
type Runner struct {
	controller *fetch.Controller
	opts       Options
	emitter    progress.Emitter
	clock      clock.Clock
	logger     *zap.Logger
}

// NewRunner builds a Runner. emitter may be nil; a nil clk falls back to the
// system clock.
func NewRunner(controller *fetch.Controller, opts Options, emitter progress.Emitter, clk clock.Clock, logger *zap.Logger) (*Runner, error) {
	if controller == nil {
		return nil, fmt.Errorf("fetch controller is required")
	}
	if opts.MinDelay < 0 || opts.MaxDelay < opts.MinDelay {
		return nil, fmt.Errorf("delay window [%s, %s] is invalid", opts.MinDelay, opts.MaxDelay)
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		controller: controller,
		opts:       opts,
		emitter:    emitter,
		clock:      clk,
		logger:     logger,
	}, nil
}

// Run processes every URL in order and never fails as a whole: fetch or
// validation problems are recorded per URL and the loop continues. The run
// can be aborted between URLs via ctx; a cancelled run returns what it
// accumulated so far together with ctx.Err().
func (r *Runner) Run(ctx context.Context, urls []string) (Result, error) {
	runID := progress.NewRunID()
	started := r.clock.Now()
	r.emit(progress.Event{RunID: runID, TS: started, Stage: progress.StageRunStart})

	var result Result
	headings := make(map[string]struct{}, len(urls))

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			r.finish(runID, started, &result)
			return result, err
		}
		r.pauseJittered(ctx)

		category, err := r.processURL(ctx, runID, url)
		if err != nil {
			result.Failures = append(result.Failures, Failure{URL: url, Err: err})
			r.emit(progress.Event{
				RunID: runID,
				TS:    r.clock.Now(),
				Stage: progress.StagePageError,
				URL:   url,
				Note:  err.Error(),
			})
			r.logger.Warn("category page skipped", zap.String("url", url), zap.Error(err))
			continue
		}

		key := taxonomy.HeadingKey(category.Heading)
		if _, dup := headings[key]; dup {
			err := fmt.Errorf("duplicate category heading %q", category.Heading)
			result.Failures = append(result.Failures, Failure{URL: url, Err: err})
			r.emit(progress.Event{
				RunID: runID,
				TS:    r.clock.Now(),
				Stage: progress.StagePageError,
				URL:   url,
				Note:  err.Error(),
			})
			continue
		}
		headings[key] = struct{}{}

		result.Snapshot.Categories = append(result.Snapshot.Categories, category)
		r.emit(progress.Event{
			RunID:   runID,
			TS:      r.clock.Now(),
			Stage:   progress.StagePageOK,
			URL:     url,
			Heading: category.Heading,
			Entries: len(category.Entries),
		})
	}

	r.finish(runID, started, &result)
	return result, nil
}

func (r *Runner) processURL(ctx context.Context, runID [16]byte, url string) (taxonomy.Category, error) {
	page, err := r.controller.Fetch(ctx, runID, url)
	if err != nil {
		return taxonomy.Category{}, err
	}
	raw := segment.Segment(page.Heading, page.Blocks)
	category, err := taxonomy.Validate(raw)
	if err != nil {
		return taxonomy.Category{}, fmt.Errorf("validate %s: %w", url, err)
	}
	return category, nil
}

// finish stamps GeneratedAt exactly once, after the loop.
func (r *Runner) finish(runID [16]byte, started time.Time, result *Result) {
	now := r.clock.Now()
	result.Snapshot.GeneratedAt = now
	r.emit(progress.Event{
		RunID:   runID,
		TS:      now,
		Stage:   progress.StageRunDone,
		Entries: len(result.Snapshot.Categories),
		Dur:     now.Sub(started),
	})
}

func (r *Runner) pauseJittered(ctx context.Context) {
	delay := r.opts.MinDelay
	if window := r.opts.MaxDelay - r.opts.MinDelay; window > 0 {
		delay += randomJitter(window)
	}
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	bound := big.NewInt(int64(limit))
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return limit / 2
	}
	return time.Duration(n.Int64())
}

func (r *Runner) emit(evt progress.Event) {
	if r.emitter == nil {
		return
	}
	r.emitter.Emit(evt)
}
