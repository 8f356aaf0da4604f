package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// fakeCatalog serves search and detail pages from fixed tables.
type fakeCatalog struct {
	redirects    map[string]string
	chains       map[string][]string
	searchStatus int

	searchHits atomic.Int32
	detailHits atomic.Int32
}

func (f *fakeCatalog) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		f.searchHits.Add(1)
		if f.searchStatus != 0 {
			w.WriteHeader(f.searchStatus)
			return
		}
		id, ok := f.redirects[r.URL.Query().Get("q")]
		if !ok {
			_, _ = io.WriteString(w, "<html><body>no results</body></html>")
			return
		}
		fmt.Fprintf(w, `<html><body><table><tr><td><a onclick="goToDetails(&quot;%s&quot;);">Update %s</a></td></tr></table></body></html>`, id, id)
	})
	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		f.detailHits.Add(1)
		var b strings.Builder
		b.WriteString("<html><body><div id=\"supersededbyInfo\">")
		for _, n := range f.chains[r.URL.Query().Get("id")] {
			fmt.Fprintf(&b, `<div style="padding-bottom: 0.3em;">
				2026-01 Cumulative Update for Windows 10 (KB%s)
			</div>`, n)
		}
		b.WriteString("</div></body></html>")
		_, _ = io.WriteString(w, b.String())
	})
	return mux
}

// testEnv is a fake catalog plus a config file pointing at it.
type testEnv struct {
	server     *httptest.Server
	catalog    *fakeCatalog
	configPath string
	dbDir      string
}

func newTestEnv(t *testing.T, f *fakeCatalog) *testEnv {
	t.Helper()

	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)

	dir := t.TempDir()
	dbDir := filepath.Join(dir, "data")
	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`catalog:
  searchURL: %q
  detailURL: %q
timeout: 5s
dbDir: %q
`, server.URL+"/search?q=", server.URL+"/detail?id=", dbDir)

	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	return &testEnv{
		server:     server,
		catalog:    f,
		configPath: configPath,
		dbDir:      dbDir,
	}
}

// run executes the CLI against the environment's config file.
func (e *testEnv) run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	full := append([]string{"-c", e.configPath}, args...)
	code = run(context.Background(), full, &out, &errOut)
	return code, out.String(), errOut.String()
}
