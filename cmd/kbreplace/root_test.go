package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/nao1215/kbreplace/internal/catalog"
	"github.com/nao1215/kbreplace/internal/config"
	"github.com/nao1215/kbreplace/internal/model"
	"github.com/nao1215/kbreplace/internal/transport"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has flags", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
		}{
			{"timeout", "t"},
			{"proxy", "x"},
			{"batch", "b"},
			{"rate", "r"},
			{"json", "j"},
			{"markdown", "m"},
			{"save", "s"},
		}
		for _, tt := range tests {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("%s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
		}

		for _, name := range []string{"verbose", "config"} {
			if cmd.PersistentFlags().Lookup(name) == nil {
				t.Errorf("expected persistent %s flag", name)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		names := make(map[string]bool)
		for _, sub := range cmd.Commands() {
			names[sub.Name()] = true
		}
		for _, want := range []string{"history", "init", "version"} {
			if !names[want] {
				t.Errorf("expected %s subcommand", want)
			}
		}
	})
}

func TestRunLookup(t *testing.T) {
	t.Parallel()

	t.Run("end to end", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, &fakeCatalog{
			redirects: map[string]string{"KB5001234": "redirect-999"},
			chains:    map[string][]string{"redirect-999": {"5001000", "4999999"}},
		})

		code, stdout, stderr := env.run(t, "KB5001234")
		if code != exitOK {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}
		if want := "Current: KB5001234\nReplaces: KB4999999\n"; stdout != want {
			t.Errorf("expected %q, got %q", want, stdout)
		}
	})

	t.Run("input with surrounding text is echoed unchanged", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, &fakeCatalog{
			redirects: map[string]string{"xKB1234567y": "abc-123"},
			chains:    map[string][]string{"abc-123": {"1111111", "2222222", "1111111"}},
		})

		code, stdout, stderr := env.run(t, "xKB1234567y")
		if code != exitOK {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}
		if want := "Current: xKB1234567y\nReplaces: KB2222222\n"; stdout != want {
			t.Errorf("expected %q, got %q", want, stdout)
		}
	})

	t.Run("search 404 prints status and skips detail fetch", func(t *testing.T) {
		t.Parallel()

		fake := &fakeCatalog{searchStatus: http.StatusNotFound}
		env := newTestEnv(t, fake)

		code, stdout, _ := env.run(t, "KB5001234")
		if code != exitFailure {
			t.Fatalf("expected exit 1, got %d", code)
		}
		want := fmt.Sprintf("HTTP Error: 404\n\nURL: %s/search?q=KB5001234\n", env.server.URL)
		if stdout != want {
			t.Errorf("expected %q, got %q", want, stdout)
		}
		if fake.detailHits.Load() != 0 {
			t.Errorf("expected no detail fetch, got %d", fake.detailHits.Load())
		}
	})

	t.Run("invalid identifier makes no request", func(t *testing.T) {
		t.Parallel()

		fake := &fakeCatalog{}
		env := newTestEnv(t, fake)

		code, stdout, stderr := env.run(t, "KB123")
		if code != exitUsage {
			t.Fatalf("expected exit 2, got %d", code)
		}
		if stdout != "" {
			t.Errorf("expected no output, got %q", stdout)
		}
		if !strings.Contains(stderr, "must be in format KB#######") {
			t.Errorf("unexpected stderr %q", stderr)
		}
		if fake.searchHits.Load() != 0 {
			t.Errorf("expected no search request, got %d", fake.searchHits.Load())
		}
	})

	t.Run("one invalid identifier in a batch rejects all", func(t *testing.T) {
		t.Parallel()

		fake := &fakeCatalog{}
		env := newTestEnv(t, fake)

		code, _, _ := env.run(t, "KB5001234", "not-a-kb")
		if code != exitUsage {
			t.Fatalf("expected exit 2, got %d", code)
		}
		if fake.searchHits.Load() != 0 {
			t.Errorf("expected no search request, got %d", fake.searchHits.Load())
		}
	})

	t.Run("no cumulative update", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, &fakeCatalog{
			redirects: map[string]string{"KB5001234": "empty"},
		})

		code, stdout, stderr := env.run(t, "KB5001234")
		if code != exitNotFound {
			t.Fatalf("expected exit 3, got %d", code)
		}
		if stdout != "" {
			t.Errorf("expected no output, got %q", stdout)
		}
		if !strings.Contains(stderr, catalog.ErrNoCumulativeUpdate.Error()) {
			t.Errorf("unexpected stderr %q", stderr)
		}
	})

	t.Run("no product on search page", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, &fakeCatalog{})

		code, _, stderr := env.run(t, "KB5001234")
		if code != exitNotFound {
			t.Fatalf("expected exit 3, got %d", code)
		}
		if !strings.Contains(stderr, catalog.ErrRedirectNotFound.Error()) {
			t.Errorf("unexpected stderr %q", stderr)
		}
	})

	t.Run("batch JSON keeps argument order", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, &fakeCatalog{
			redirects: map[string]string{
				"KB3000000": "r3",
				"KB1000000": "r1",
				"KB2000000": "r2",
			},
			chains: map[string][]string{
				"r1": {"0100000"},
				"r2": {"0200000"},
				"r3": {"0300000"},
			},
		})

		code, stdout, stderr := env.run(t, "--json", "-b", "2", "KB3000000", "KB1000000", "KB2000000")
		if code != exitOK {
			t.Fatalf("expected exit 0, got %d (stderr: %s)", code, stderr)
		}

		var got []model.Lookup
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		want := []string{"KB0300000", "KB0100000", "KB0200000"}
		if len(got) != len(want) {
			t.Fatalf("expected %d lookups, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i].Replaces != want[i] {
				t.Errorf("lookup %d: expected %s, got %s", i, want[i], got[i].Replaces)
			}
		}
	})

	t.Run("single JSON lookup is an object", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, &fakeCatalog{
			redirects: map[string]string{"KB5001234": "redirect-999"},
			chains:    map[string][]string{"redirect-999": {"4999999"}},
		})

		code, stdout, _ := env.run(t, "-j", "KB5001234")
		if code != exitOK {
			t.Fatalf("expected exit 0, got %d", code)
		}
		var got model.Lookup
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if got.RedirectID != "redirect-999" || got.Replaces != "KB4999999" {
			t.Errorf("unexpected lookup %+v", got)
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, &fakeCatalog{
			redirects: map[string]string{"KB5001234": "redirect-999"},
			chains:    map[string][]string{"redirect-999": {"4999999"}},
		})

		code, stdout, _ := env.run(t, "--markdown", "KB5001234")
		if code != exitOK {
			t.Fatalf("expected exit 0, got %d", code)
		}
		if !strings.Contains(stdout, "# KB Supersedence Report") || !strings.Contains(stdout, "`KB4999999`") {
			t.Errorf("unexpected markdown %s", stdout)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		fake := &fakeCatalog{}
		env := newTestEnv(t, fake)

		code, _, stderr := env.run(t, "--json", "--markdown", "KB5001234")
		if code != exitUsage {
			t.Fatalf("expected exit 2, got %d", code)
		}
		if !strings.Contains(stderr, "conflicting report formats") {
			t.Errorf("unexpected stderr %q", stderr)
		}
		if fake.searchHits.Load() != 0 {
			t.Error("expected no request")
		}
	})

	t.Run("invalid proxy", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, &fakeCatalog{})

		code, _, _ := env.run(t, "--proxy", "not a proxy", "KB5001234")
		if code != exitUsage {
			t.Fatalf("expected exit 2, got %d", code)
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, &fakeCatalog{})

		code, _, _ := env.run(t, "--no-such-flag", "KB5001234")
		if code != exitUsage {
			t.Fatalf("expected exit 2, got %d", code)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		var out, errOut strings.Builder
		code := run(t.Context(), []string{"-c", "/nonexistent/kbreplace.yaml", "KB5001234"}, &out, &errOut)
		if code != exitUsage {
			t.Fatalf("expected exit 2, got %d", code)
		}
		if !strings.Contains(errOut.String(), "configuration file not found") {
			t.Errorf("unexpected stderr %q", errOut.String())
		}
	})
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitOK},
		{"usage", &usageError{err: errors.New("bad")}, exitUsage},
		{"wrapped usage", fmt.Errorf("x: %w", &usageError{err: config.ErrNoTarget}), exitUsage},
		{"proxy", transport.ErrInvalidProxyAddress, exitUsage},
		{"status", &catalog.StatusError{StatusCode: 500, URL: "http://x"}, exitFailure},
		{"redirect", fmt.Errorf("KB1: %w", catalog.ErrRedirectNotFound), exitNotFound},
		{"no update", catalog.ErrNoCumulativeUpdate, exitNotFound},
		{"malformed", &catalog.MalformedEntryError{Text: "Cumulative Update"}, exitNotFound},
		{"other", errors.New("connection refused"), exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
