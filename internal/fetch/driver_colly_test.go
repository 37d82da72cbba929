package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const categoryPageHTML = `<!DOCTYPE html>
<html>
<head><title>Subject Codes</title></head>
<body>
<h1>ANTIQUES &amp; COLLECTIBLES</h1>
<p>Use subjects in this section for works about collecting.</p>
<p>ANT000000 General</p>
<p>ANT007000 Buttons &amp; Pins</p>
</body>
</html>`

func newCategoryPageServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, html)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCollyDriver_NavigateExtractsHeadingAndBlocks(t *testing.T) {
	t.Parallel()

	server := newCategoryPageServer(t, categoryPageHTML)
	driver, err := NewCollyDriver(CollyConfig{RequestTimeout: time.Second})
	require.NoError(t, err)

	page, err := driver.Navigate(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "ANTIQUES & COLLECTIBLES", page.Heading)
	assert.Equal(t, []string{
		"Use subjects in this section for works about collecting.",
		"ANT000000 General",
		"ANT007000 Buttons & Pins",
	}, page.Blocks)
}

func TestCollyDriver_CustomSelectors(t *testing.T) {
	t.Parallel()

	server := newCategoryPageServer(t, `<!DOCTYPE html>
<html><body>
<h1>site banner</h1>
<h2 class="category-title">POETRY</h2>
<ul>
<li>POE000000 General</li>
<li>POE005010 American</li>
</ul>
</body></html>`)
	driver, err := NewCollyDriver(CollyConfig{
		RequestTimeout:  time.Second,
		HeadingSelector: "h2.category-title",
		BlockSelector:   "li",
	})
	require.NoError(t, err)

	page, err := driver.Navigate(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, "POETRY", page.Heading)
	assert.Equal(t, []string{"POE000000 General", "POE005010 American"}, page.Blocks)
}

func TestCollyDriver_MissingElementsYieldEmptyPage(t *testing.T) {
	t.Parallel()

	server := newCategoryPageServer(t, `<!DOCTYPE html><html><body><div>nothing useful</div></body></html>`)
	driver, err := NewCollyDriver(CollyConfig{RequestTimeout: time.Second})
	require.NoError(t, err)

	page, err := driver.Navigate(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Empty(t, page.Heading)
	assert.Empty(t, page.Blocks)
}

func TestCollyDriver_ServerErrorFailsNavigation(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	driver, err := NewCollyDriver(CollyConfig{RequestTimeout: time.Second})
	require.NoError(t, err)

	_, err = driver.Navigate(context.Background(), server.URL)
	require.Error(t, err)
}

func TestCollyDriver_DoneContextRejectedBeforeRequest(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, categoryPageHTML)
	}))
	t.Cleanup(server.Close)

	driver, err := NewCollyDriver(CollyConfig{RequestTimeout: time.Second})
	require.NoError(t, err)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err = driver.Navigate(ctx, server.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, hits.Load())
}

func TestCollyDriver_DeadlineBoundsRequest(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		fmt.Fprint(w, categoryPageHTML)
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	driver, err := NewCollyDriver(CollyConfig{RequestTimeout: time.Minute})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = driver.Navigate(ctx, server.URL)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second, "deadline should cut the request short")
}
