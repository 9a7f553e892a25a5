package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gimgdl/internal/downloader"
	"gimgdl/pkg/ui"
)

// newFakeAPI serves one page of three results, one of which 404s, and an
// empty second page. The key "bad" is rejected with 403.
func newFakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server

	mux := http.NewServeMux()
	mux.HandleFunc("/customsearch/v1", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("key") == "bad" {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error":{"code":403,"message":"API key not valid. Please pass a valid API key."}}`)
			return
		}
		if q.Get("start") != "1" {
			fmt.Fprint(w, `{"kind":"customsearch#search","queries":{"request":[{"startIndex":4}]}}`)
			return
		}
		fmt.Fprintf(w, `{
			"kind": "customsearch#search",
			"queries": {"nextPage": [{"count": 10, "startIndex": 4}]},
			"items": [
				{"kind": "customsearch#result", "link": "%[1]s/img/a.png", "image": {"width": 800, "height": 600}},
				{"kind": "customsearch#result", "link": "%[1]s/img/missing.jpg", "image": {"width": 800, "height": 600}},
				{"kind": "customsearch#result", "link": "%[1]s/img/b.jpg", "image": {"width": 800, "height": 600}}
			]
		}`, server.URL)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "missing") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("image bytes for " + r.URL.Path))
	})

	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// isolate keeps real user configuration and environment out of a test
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, name := range []string{
		"GIMGDL_API_KEY", "GIMGDL_ENGINE_ID", "GIMGDL_BASE_URL", "GIMGDL_OUTPUT_DIR",
		"GIMGDL_TARGET", "GIMGDL_STRATEGY", "GIMGDL_LOG_LEVEL", "GIMGDL_LOG_FILE", "GIMGDL_METRICS_FILE",
	} {
		t.Setenv(name, "")
	}
	t.Cleanup(func() {
		ui.SetOutput(os.Stdout, os.Stderr)
		ui.SetColor(true)
	})
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestDownloadRun(t *testing.T) {
	isolate(t)
	server := newFakeAPI(t)
	t.Setenv("GIMGDL_BASE_URL", server.URL+"/customsearch/v1")

	dir := filepath.Join(t.TempDir(), "images")
	metricsFile := filepath.Join(t.TempDir(), "gimgdl.prom")

	out, errOut, err := execute(t,
		"-q", "hedgehog", "-a", "key", "-e", "cx",
		"-o", dir, "-t", "10", "--metrics-file", metricsFile,
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Downloaded 2 images")
	assert.Contains(t, out, "1 downloads failed")
	assert.Contains(t, errOut, "Failed to download image")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	exts := []string{filepath.Ext(entries[0].Name()), filepath.Ext(entries[1].Name())}
	assert.ElementsMatch(t, []string{".png", ".jpg"}, exts)

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "gimgdl_images_saved_total 2")
	assert.Contains(t, string(prom), `gimgdl_searches_total{outcome="ok"} 2`)
}

func TestDownloadRunStopsAtTarget(t *testing.T) {
	isolate(t)
	server := newFakeAPI(t)
	t.Setenv("GIMGDL_BASE_URL", server.URL+"/customsearch/v1")
	dir := t.TempDir()

	out, _, err := execute(t, "-q", "hedgehog", "-a", "key", "-e", "cx", "-o", dir, "-t", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Downloaded 1 images")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDownloadRunFatalSearch(t *testing.T) {
	isolate(t)
	server := newFakeAPI(t)
	t.Setenv("GIMGDL_BASE_URL", server.URL+"/customsearch/v1")
	dir := filepath.Join(t.TempDir(), "images")

	out, errOut, err := execute(t, "-q", "hedgehog", "-a", "bad", "-e", "cx", "-o", dir)
	require.Error(t, err)

	var shown *exitError
	assert.ErrorAs(t, err, &shown)
	assert.True(t, downloader.IsFatal(err))
	assert.Contains(t, errOut, "Search failed at start 1")
	assert.Contains(t, errOut, "API key not valid")
	assert.NotContains(t, errOut, "key=bad")
	assert.Contains(t, out, "Downloaded 0 images")

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDownloadRequiresQuery(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "-a", "key", "-e", "cx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"query"`)
}

func TestDownloadRequiresCredentials(t *testing.T) {
	isolate(t)

	_, errOut, err := execute(t, "-q", "hedgehog")
	require.Error(t, err)
	assert.Contains(t, errOut, "API key is required")
	assert.Contains(t, errOut, "search engine ID is required")
}

func TestDownloadRejectsUnknownStrategy(t *testing.T) {
	isolate(t)

	_, errOut, err := execute(t, "-q", "hedgehog", "-a", "key", "-e", "cx", "--strategy", "avif")
	require.Error(t, err)
	assert.Contains(t, errOut, `invalid download strategy "avif"`)
}

func TestFlagMapOnlyIncludesChangedFlags(t *testing.T) {
	global := &globalOptions{}
	opts := &downloadOptions{}
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	bindDownloadFlags(cmd, opts)

	require.NoError(t, cmd.ParseFlags([]string{"-q", "hedgehog", "-t", "25", "--min-width", "640", "--safe", "active"}))

	flags := flagMap(cmd, global, opts)
	assert.Equal(t, map[string]interface{}{
		"target":    25,
		"min-width": 640,
		"safe":      "active",
	}, flags)

	global.verbose = true
	assert.Equal(t, "debug", flagMap(cmd, global, opts)["log-level"])

	global.logLevel = "warn"
	assert.Equal(t, "warn", flagMap(cmd, global, opts)["log-level"])
}

func TestConfigCommands(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "conf", "gimgdl.yaml")

	out, _, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created: "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, errOut, err := execute(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, errOut, "Configuration file already exists")

	_, _, err = execute(t, "config", "validate", "--config", path)
	require.Error(t, err, "example config has no credentials")

	t.Setenv("GIMGDL_API_KEY", "AIzaSyExampleKey1234")
	t.Setenv("GIMGDL_ENGINE_ID", "engine-123")

	out, _, err = execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "API key: ****************1234")

	out, _, err = execute(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Current Configuration")
	assert.Contains(t, out, "1234")
	assert.NotContains(t, out, "AIzaSyExampleKey1234")
	assert.Contains(t, out, "engine_id: engine-123")
	assert.Contains(t, out, "4. Configuration file: "+path)
}
