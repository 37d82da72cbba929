package fetch

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// ChromedpConfig controls the headless page driver.
type ChromedpConfig struct {
	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string
	// HeadingSelector locates the designated title element (default "h1").
	HeadingSelector string
	// BlockSelector locates the ordered text blocks (default "p").
	BlockSelector string
}

// ChromedpDriver implements PageDriver using chromedp and headless Chrome.
// A single browser context is created up front and reused for every
// navigation, so a batch run pays browser startup cost once.
type ChromedpDriver struct {
	cfg           ChromedpConfig
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// NewChromedpDriver starts the exec allocator and one browser tab.
func NewChromedpDriver(cfg ChromedpConfig) (*ChromedpDriver, error) {
	if cfg.HeadingSelector == "" {
		cfg.HeadingSelector = "h1"
	}
	if cfg.BlockSelector == "" {
		cfg.BlockSelector = "p"
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &ChromedpDriver{
		cfg:           cfg,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// Close tears down the browser and the allocator.
func (d *ChromedpDriver) Close() {
	d.browserCancel()
	d.allocCancel()
}

// Navigate loads url in the shared tab and extracts the heading text plus the
// ordered block texts. The ctx deadline bounds the whole navigation.
func (d *ChromedpDriver) Navigate(ctx context.Context, url string) (Page, error) {
	navCtx, cancel := mergeDeadline(d.browserCtx, ctx)
	defer cancel()

	var (
		heading string
		blocks  []string
	)
	actions := []chromedp.Action{
		d.userAgentAction(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(headingScript(d.cfg.HeadingSelector), &heading),
		chromedp.Evaluate(blocksScript(d.cfg.BlockSelector), &blocks),
	}
	if err := chromedp.Run(navCtx, actions...); err != nil {
		return Page{}, fmt.Errorf("chromedp run: %w", err)
	}
	return Page{Heading: strings.TrimSpace(heading), Blocks: blocks}, nil
}

func (d *ChromedpDriver) userAgentAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if d.cfg.UserAgent == "" {
			return nil
		}
		if err := emulation.SetUserAgentOverride(d.cfg.UserAgent).Do(ctx); err != nil {
			return fmt.Errorf("set user-agent: %w", err)
		}
		return nil
	})
}

// mergeDeadline derives a child of the long-lived browser context that is
// also canceled when the per-attempt ctx finishes.
func mergeDeadline(browserCtx, attemptCtx context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(browserCtx)
	if deadline, ok := attemptCtx.Deadline(); ok {
		var dlCancel context.CancelFunc
		merged, dlCancel = context.WithDeadline(merged, deadline)
		parent := cancel
		cancel = func() {
			dlCancel()
			parent()
		}
	}
	stop := context.AfterFunc(attemptCtx, cancel)
	parent := cancel
	return merged, func() {
		stop()
		parent()
	}
}

func headingScript(selector string) string {
	return fmt.Sprintf(
		`(() => { const el = document.querySelector(%q); return el ? el.innerText : ""; })()`,
		selector,
	)
}

func blocksScript(selector string) string {
	return fmt.Sprintf(
		`Array.from(document.querySelectorAll(%q)).map(el => el.innerText)`,
		selector,
	)
}
