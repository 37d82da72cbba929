package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// CollyConfig controls the static page driver.
type CollyConfig struct {
	UserAgent      string
	RequestTimeout time.Duration
	// HeadingSelector locates the designated title element (default "h1").
	HeadingSelector string
	// BlockSelector locates the ordered text blocks (default "p").
	BlockSelector string
}

// CollyDriver implements PageDriver for source mirrors that render
// server-side, using the Colly collector for transport and goquery for text
// extraction. It needs no browser process.
type CollyDriver struct {
	cfg           CollyConfig
	baseCollector *colly.Collector
}

// NewCollyDriver constructs a configured Colly-based driver.
func NewCollyDriver(cfg CollyConfig) (*CollyDriver, error) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.HeadingSelector == "" {
		cfg.HeadingSelector = "h1"
	}
	if cfg.BlockSelector == "" {
		cfg.BlockSelector = "p"
	}

	opts := []colly.CollectorOption{}
	if cfg.UserAgent != "" {
		opts = append(opts, colly.UserAgent(cfg.UserAgent))
	}
	base := colly.NewCollector(opts...)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	return &CollyDriver{cfg: cfg, baseCollector: base}, nil
}

// Navigate fetches url and extracts the heading and block texts from the
// server-rendered HTML. The ctx deadline bounds the request; a ctx that is
// already done is rejected before the request starts.
func (d *CollyDriver) Navigate(ctx context.Context, url string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	collector := d.baseCollector.Clone()
	// Clone shares the transport, so the timeout must be reset on every
	// navigation.
	timeout := d.cfg.RequestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	collector.SetRequestTimeout(timeout)

	resultCh := make(chan navResult, 1)
	var once sync.Once
	send := func(res navResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		page, err := d.extract(r.Body)
		send(navResult{page: page, err: err})
	})
	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(navResult{err: err})
	})

	if err := collector.Visit(url); err != nil {
		return Page{}, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}
		return res.page, res.err
	default:
		return Page{}, errors.New("colly visit produced no result")
	}
}

func (d *CollyDriver) extract(body []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}
	page := Page{
		Heading: strings.TrimSpace(doc.Find(d.cfg.HeadingSelector).First().Text()),
	}
	doc.Find(d.cfg.BlockSelector).Each(func(_ int, sel *goquery.Selection) {
		page.Blocks = append(page.Blocks, strings.TrimSpace(sel.Text()))
	})
	return page, nil
}

type navResult struct {
	page Page
	err  error
}
