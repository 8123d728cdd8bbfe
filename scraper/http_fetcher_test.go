package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpustats/scraper"
)

func TestHTTPFetcherRender(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/results":
			gotUA = r.Header.Get("User-Agent")
			w.Write([]byte(`<html><head><title>Results</title></head><body>
<div class="item"><h2>RTX 4080</h2><span class="price">$1,099.00</span></div>
<script>var price = "$1.00";</script></body></html>`))
		case "/blocked":
			w.Write([]byte(`<html><head><title>Robot Check</title></head><body>Enter the characters you see below</body></html>`))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`<html><body>Page not found</body></html>`))
		default:
			w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
		}
	}))
	defer srv.Close()

	f := scraper.NewHTTPFetcher(srv.Client(), "gpustats-test")
	defer f.Close()
	ctx := context.Background()

	t.Run("renders and selects", func(t *testing.T) {
		page, err := f.Render(ctx, srv.URL+"/results", scraper.RenderOptions{WaitSelector: ".item", Timeout: 5 * time.Second})
		require.NoError(t, err)

		assert.Equal(t, "Results", page.Title())
		assert.Equal(t, srv.URL+"/results", page.URL())
		assert.NotContains(t, page.Text(), "var price")
		assert.Equal(t, "gpustats-test", gotUA)

		items := page.FindAll(".item")
		require.Len(t, items, 1)
		prices := items[0].FindAll(".price")
		require.Len(t, prices, 1)
		assert.Equal(t, "$1,099.00", prices[0].Text())
	})

	t.Run("bot wall", func(t *testing.T) {
		_, err := f.Render(ctx, srv.URL+"/blocked", scraper.RenderOptions{})
		assert.ErrorIs(t, err, scraper.ErrBlocked)
	})

	t.Run("bad status", func(t *testing.T) {
		_, err := f.Render(ctx, srv.URL+"/missing", scraper.RenderOptions{})
		assert.ErrorIs(t, err, scraper.ErrFetch)
	})

	t.Run("wait selector never appears", func(t *testing.T) {
		_, err := f.Render(ctx, srv.URL+"/other", scraper.RenderOptions{WaitSelector: ".item"})
		assert.ErrorIs(t, err, scraper.ErrFetch)
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := f.Render(ctx, "http://127.0.0.1:1/", scraper.RenderOptions{Timeout: time.Second})
		assert.ErrorIs(t, err, scraper.ErrFetch)
	})
}
