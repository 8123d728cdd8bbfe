package scraper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpustats/models"
	"gpustats/scraper"
	"gpustats/scraper/scrapertest"
)

const specIndex = `<html><body><table class="processors">
<tr><td><a href="/gpu-specs/geforce-rtx-4090.c3889">GeForce RTX 4090</a></td><td>NVIDIA</td></tr>
<tr><td><a href="/gpu-specs/radeon-rx-7900-xt.c3912">Radeon RX 7900 XT</a></td><td>AMD</td></tr>
<tr><td><a href="/gpu-specs/geforce-rtx-4090.c3889">GeForce RTX 4090</a></td><td>NVIDIA</td></tr>
<tr><td><a href="">empty</a></td><td></td></tr>
</table></body></html>`

const rtx4090Sheet = `<html><head><title>NVIDIA GeForce RTX 4090 Specs | TechPowerUp GPU Database</title></head><body>
<section class="details">
<dl><dt>Base Clock</dt><dd>2235 MHz</dd></dl>
<dl><dt>Boost Clock</dt><dd>2520 MHz</dd></dl>
<dl><dt>TDP</dt><dd>450   W</dd></dl>
<dl><dt>Launch Price</dt><dd>1,599 USD</dd></dl>
<dl><dt>Driver Support</dt><dd>N/A</dd></dl>
</section></body></html>`

func TestSpecSheetAdapterLinks(t *testing.T) {
	cfg := sourceConfig(t, "specs")
	a := scraper.NewSpecSheetAdapter(cfg, scrapertest.NewFetcher(map[string]string{cfg.URL: specIndex}), time.Second)

	links, err := a.Links(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.techpowerup.com/gpu-specs/geforce-rtx-4090.c3889",
		"https://www.techpowerup.com/gpu-specs/radeon-rx-7900-xt.c3912",
	}, links)
}

func TestSpecSheetAdapterLinksEmpty(t *testing.T) {
	cfg := sourceConfig(t, "specs")
	a := scraper.NewSpecSheetAdapter(cfg, scrapertest.NewFetcher(map[string]string{
		cfg.URL: `<table class="processors"><tr><td>nothing</td></tr></table>`,
	}), time.Second)

	_, err := a.Links(context.Background())
	assert.True(t, errors.Is(err, scraper.ErrNoEntries))
}

func TestSpecSheetAdapterSheet(t *testing.T) {
	cfg := sourceConfig(t, "specs")
	link := "https://www.techpowerup.com/gpu-specs/geforce-rtx-4090.c3889"
	a := scraper.NewSpecSheetAdapter(cfg, scrapertest.NewFetcher(map[string]string{link: rtx4090Sheet}), time.Second)

	sheet, err := a.Sheet(context.Background(), link)
	require.NoError(t, err)

	assert.Equal(t, "GeForce RTX 4090", sheet.Label)
	assert.Equal(t, link, sheet.URL)
	assert.Equal(t, []models.Field{
		{Attribute: models.TextAttribute("tdp"), Value: models.Text("450 W")},
		{Attribute: models.TextAttribute("base_clock"), Value: models.Text("2235 MHz")},
		{Attribute: models.TextAttribute("driver_support"), Value: models.Absent()},
		{Attribute: models.TextAttribute("launch_prices"), Value: models.Text("1,599 USD")},
	}, sheet.Fields)
}
