package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/kbreplace/internal/catalog"
)

// fakeCatalog serves search and detail pages from fixed tables.
type fakeCatalog struct {
	// redirects maps a search query to the redirect id of its first product.
	redirects map[string]string
	// chains maps a redirect id to the cumulative update numbers listed on its page.
	chains map[string][]string
	// searchStatus, when non-zero, is returned for every search request.
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
		fmt.Fprintf(w, `<html><body><a id="x" onclick='goToDetails("%s");'>Cumulative Update for Windows</a></body></html>`, id)
	})
	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		f.detailHits.Add(1)
		var b strings.Builder
		b.WriteString("<html><body>")
		for _, n := range f.chains[r.URL.Query().Get("id")] {
			fmt.Fprintf(&b, `<div style="padding-bottom: 0.3em;">Cumulative Update (KB%s)</div>`, n)
		}
		b.WriteString("</body></html>")
		_, _ = io.WriteString(w, b.String())
	})
	return mux
}

// start runs the fake catalog and returns a client pointed at it.
func (f *fakeCatalog) start(t *testing.T) *catalog.Client {
	t.Helper()

	server := httptest.NewServer(f.handler())
	t.Cleanup(server.Close)

	return catalog.NewClient(server.Client(),
		catalog.WithSearchURL(server.URL+"/search?q="),
		catalog.WithDetailURL(server.URL+"/detail?id="),
	)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
