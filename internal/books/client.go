// Package books retrieves the weak ranking signals for a book record from a
// volumes-style metadata API.
package books

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the metadata source has no record for the
// identifier. Callers treat it the same as an empty candidate set.
var ErrNotFound = errors.New("book metadata not found")

// Metadata carries the ranking signals for one book.
type Metadata struct {
	Title           string
	Description     string
	LooseCategories []string
}

// Config controls the metadata client.
type Config struct {
	// BaseURL is the volumes endpoint root, e.g.
	// "https://www.googleapis.com/books/v1".
	BaseURL string
	Timeout time.Duration
}

// Client looks up book metadata over HTTP.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a Client from config.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("books base url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &Client{http: httpClient, logger: logger}, nil
}

type volumeResponse struct {
	VolumeInfo struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Categories  []string `json:"categories"`
	} `json:"volumeInfo"`
}

// Lookup fetches the metadata record for a volume identifier.
func (c *Client) Lookup(ctx context.Context, volumeID string) (Metadata, error) {
	if strings.TrimSpace(volumeID) == "" {
		return Metadata{}, errors.New("volume id is required")
	}

	var payload volumeResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		SetPathParam("id", volumeID).
		Get("/volumes/{id}")
	if err != nil {
		return Metadata{}, fmt.Errorf("lookup volume %s: %w", volumeID, err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return Metadata{}, ErrNotFound
	case resp.IsError():
		return Metadata{}, fmt.Errorf("lookup volume %s: unexpected status %d", volumeID, resp.StatusCode())
	}

	meta := Metadata{
		Title:           payload.VolumeInfo.Title,
		Description:     payload.VolumeInfo.Description,
		LooseCategories: payload.VolumeInfo.Categories,
	}
	c.logger.Debug("book metadata fetched",
		zap.String("volume_id", volumeID),
		zap.String("title", meta.Title),
		zap.Int("categories", len(meta.LooseCategories)),
	)
	return meta, nil
}
