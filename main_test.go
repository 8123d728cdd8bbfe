package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gpustats/database"
	"gpustats/repository"
)

// execute runs the root command with args and returns its stdout
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seedCatalog creates the product table with names and returns the database path
func seedCatalog(t *testing.T, names ...string) string {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gpus.db")

	db, err := database.Open(ctx, "sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.CreateTables(ctx, "gpus"))
	for _, name := range names {
		_, err := db.ExecContext(ctx, `INSERT INTO "gpus" (name) VALUES (?)`, name)
		require.NoError(t, err)
	}
	return path
}

func writeTestConfig(t *testing.T, dbPath, shopURL string) string {
	t.Helper()
	content := `database:
  driver: sqlite
  dsn: ` + dbPath + `
pacing:
  min_delay: 0s
  max_delay: 0s
schedule:
  enabled: false
sources:
  - name: shop
    kind: listing
    enabled: true
    fetcher: http
    attribute: shop_avg
    url: "` + shopURL + `/search?q={query}"
    item_selector: ".item"
    label_selector: ".title"
    value_selector: ".price"
    match_on: label
    cap: 2
    markers: [refurbished]
    noise_tokens: [geforce, nvidia]
`
	path := filepath.Join(t.TempDir(), "gpustats.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newShopServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "RTX 4080":
			w.Write([]byte(`<html><body>
<div class="item"><span class="title">NVIDIA GeForce RTX 4080</span><span class="price">$1,000.00</span></div>
<div class="item"><span class="title">RTX 4080 Refurbished</span><span class="price">$700.00</span></div>
<div class="item"><span class="title">RTX 4080 OC</span><span class="price">$1,200.00</span></div>
<div class="item"><span class="title">RTX 4080 Gaming</span><span class="price">$5,000.00</span></div>
</body></html>`))
		default:
			w.Write([]byte(`<html><body><div class="item"><span class="title">Something else</span><span class="price">$1</span></div></body></html>`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRootCommands(t *testing.T) {
	cmd := NewRootCmd()
	for _, name := range []string{"run", "serve", "report", "init", "sources"} {
		found, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, found.Name())
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestRunCommand(t *testing.T) {
	dbPath := seedCatalog(t, "RTX 4080", "RX 7900 XT")
	cfgPath := writeTestConfig(t, dbPath, newShopServer(t).URL)

	out, err := execute(t, "--config", cfgPath, "run", "--no-delay")
	require.NoError(t, err)
	assert.Contains(t, out, "shop")

	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	repo, err := repository.NewProductRepository(db, "gpus")
	require.NoError(t, err)

	p, err := repo.Product(ctx, "RTX 4080")
	require.NoError(t, err)
	assert.Equal(t, 1100.0, p.Attributes["shop_avg"], "refurbished skipped, capped at two observations")

	p, err = repo.Product(ctx, "RX 7900 XT")
	require.NoError(t, err)
	assert.Nil(t, p.Attributes["shop_avg"])
}

func TestRunCommandUnknownSource(t *testing.T) {
	cfgPath := writeTestConfig(t, seedCatalog(t), "http://127.0.0.1:1")

	_, err := execute(t, "--config", cfgPath, "run", "newegg")
	assert.Error(t, err)
}

func TestSourcesCommand(t *testing.T) {
	cfgPath := writeTestConfig(t, seedCatalog(t), "http://127.0.0.1:1")

	out, err := execute(t, "--config", cfgPath, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "shop")
	assert.Contains(t, out, "shop_avg")
}

func TestReportCommand(t *testing.T) {
	dbPath := seedCatalog(t, "RTX 4080")
	cfgPath := writeTestConfig(t, dbPath, "http://127.0.0.1:1")

	out, err := execute(t, "--config", cfgPath, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "RTX 4080")

	out, err = execute(t, "--config", cfgPath, "report", "--format", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"))

	_, err = execute(t, "--config", cfgPath, "report", "--format", "csv")
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpustats.yaml")

	out, err := execute(t, "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "amazon_new_avg")
	assert.Contains(t, string(data), "min_delay: 10s")

	_, err = execute(t, "init", "-o", path)
	assert.Error(t, err, "refuses to overwrite without --force")

	_, err = execute(t, "init", "-o", path, "--force")
	assert.NoError(t, err)
}
