package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/perfo/internal/config"
	perfohttp "github.com/wesleyorama2/perfo/internal/http"
)

// runCLI executes a fresh command tree with an isolated home directory
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func newTimingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Server-Timing", `db;dur=53, app;dur=47.2`)
		w.Header().Add("X-Cache", "MISS")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(server.Close)
	return server
}

func decodeDocument(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc), out)
	return doc
}

func TestRootCommand_Help(t *testing.T) {
	out, _, err := runCLI(t, "--help")
	require.NoError(t, err)

	for _, name := range []string{"one", "oo", "cc"} {
		assert.Contains(t, out, name)
	}
}

func TestOneCommand_Text(t *testing.T) {
	server := newTimingServer(t)

	out, _, err := runCLI(t, "one", server.URL, "-t", "-z", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "perfo v"+version)
	assert.Contains(t, out, "URL: "+server.URL)
	assert.Contains(t, out, "Protocol: HTTP/1.1")
	assert.Contains(t, out, "Status Code: 200")
	assert.Contains(t, out, "Execution time:")

	assert.Contains(t, out, "Headers:")
	assert.Contains(t, out, "x-cache")

	assert.Contains(t, out, "Server-Timing:")
	assert.Contains(t, out, "db")
	assert.Contains(t, out, "53.00")

	assert.Contains(t, out, "Timing (in ms):")
	assert.Contains(t, out, "DNS Lookup")
	assert.Contains(t, out, "Total")
}

func TestOneCommand_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	out, _, err := runCLI(t, "one", url)
	require.NoError(t, err, "failed requests are reported, not returned")

	assert.Contains(t, out, "Error:")
	assert.NotContains(t, out, "Timing (in ms):")
}

func TestOneCommand_TLSWithoutVerification(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secure"))
	}))
	defer server.Close()

	out, _, err := runCLI(t, "one", server.URL, "--select", "samples.0.status", "--select", "samples.0.outcome")
	require.NoError(t, err)
	assert.Equal(t, "200\nsuccess\n", out)
}

func TestOneByOneCommand_JSON(t *testing.T) {
	server := newTimingServer(t)

	out, _, err := runCLI(t, "oo", server.URL, "-r", "3", "--format", "json", "-t")
	require.NoError(t, err)

	doc := decodeDocument(t, out)
	assert.Equal(t, "sequential", doc["strategy"])
	assert.Equal(t, float64(3), doc["requests"])
	assert.NotEmpty(t, doc["runId"])

	timing, ok := doc["timing"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), timing["succeeded"])
	assert.Equal(t, float64(0), timing["failed"])
	assert.Len(t, timing["phases"], 6)

	serverTiming, ok := doc["serverTiming"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, serverTiming["absent"])
	assert.Len(t, serverTiming["metrics"], 2)

	assert.Nil(t, doc["samples"], "samples are only included with --detail")
}

func TestOneByOneCommand_YAML(t *testing.T) {
	server := newTimingServer(t)

	out, _, err := runCLI(t, "oo", server.URL, "-r", "2", "--format", "yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "strategy: sequential")
	assert.Contains(t, out, "requests: 2")
	assert.Contains(t, out, "succeeded: 2")
}

func TestOneByOneCommand_DetailAndHistogram(t *testing.T) {
	server := newTimingServer(t)

	out, _, err := runCLI(t, "oo", server.URL, "-r", "3", "--detail", "--histogram")
	require.NoError(t, err)

	assert.Contains(t, out, "Doing 3 requests one by one...")
	assert.Contains(t, out, "Requests:")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "#3")
	assert.Contains(t, out, "Total distribution (in ms):")
	assert.Contains(t, out, "p99")
}

func TestConcurrentCommand_Select(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	out, _, err := runCLI(t, "cc", server.URL, "-r", "5", "--select", "timing.succeeded", "--select", "strategy")
	require.NoError(t, err)

	assert.Equal(t, "5\nconcurrent\n", out)
	assert.Equal(t, int32(5), calls.Load())
}

func TestConcurrentCommand_FailedRequestsAreNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	out, _, err := runCLI(t, "cc", server.URL, "-r", "4", "-t")
	require.NoError(t, err)

	assert.Contains(t, out, "Doing 4 concurrent requests...")
	assert.Contains(t, out, "Failed requests: 4")
	assert.Contains(t, out, "No successful requests")
	assert.Contains(t, out, "Server-Timing header not exists")
}

func TestConcurrentCommand_TimingTable(t *testing.T) {
	server := newTimingServer(t)

	out, _, err := runCLI(t, "cc", server.URL, "-r", "4", "-t")
	require.NoError(t, err)

	headers := strings.ToLower(out)
	assert.Contains(t, headers, "timings")
	assert.Contains(t, headers, "server")
	assert.Contains(t, out, "TTFB")
	assert.Contains(t, out, "app")
	assert.NotContains(t, out, "Failed requests")
}

func TestRequestFlagsAreSent(t *testing.T) {
	var mu sync.Mutex
	var seen []http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Clone())
		mu.Unlock()
	}))
	defer server.Close()

	_, _, err := runCLI(t, "oo", server.URL, "-r", "2", "--format", "json",
		"-H", "X-Test: yes", "-H", "Authorization: Bearer abc", "-b", "-e", "gzip")
	require.NoError(t, err)

	require.Len(t, seen, 2)
	for _, h := range seen {
		assert.Equal(t, "yes", h.Get("X-Test"))
		assert.Equal(t, "Bearer abc", h.Get("Authorization"))
		assert.Equal(t, perfohttp.BrowserUserAgent, h.Get("User-Agent"))
		assert.Equal(t, "gzip", h.Get("Accept-Encoding"))
	}
}

func TestDefaultUserAgent(t *testing.T) {
	var agent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.Header.Get("User-Agent"))
	}))
	defer server.Close()

	_, _, err := runCLI(t, "one", server.URL, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, perfohttp.DefaultUserAgent, agent.Load())
}

func TestNoFollow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusMovedPermanently)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	out, _, err := runCLI(t, "one", server.URL+"/old", "--no-follow", "--select", "samples.0.status")
	require.NoError(t, err)
	assert.Equal(t, "301\n", out)

	out, _, err = runCLI(t, "one", server.URL+"/old", "--select", "samples.0.status", "--select", "samples.0.effectiveUrl")
	require.NoError(t, err)
	assert.Equal(t, "200\n"+server.URL+"/new\n", out)
}

func TestProfilePrecedence(t *testing.T) {
	server := newTimingServer(t)

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("requests: 4\nformat: json\n"), 0o644))

	out, _, err := runCLI(t, "oo", server.URL, "--config", path, "--select", "requests")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out, "profile value replaces the default")

	out, _, err = runCLI(t, "oo", server.URL, "--config", path, "-r", "2")
	require.NoError(t, err)
	doc := decodeDocument(t, out)
	assert.Equal(t, float64(2), doc["requests"], "flag wins over profile")
}

func TestVerboseLogsToStderr(t *testing.T) {
	server := newTimingServer(t)

	out, errOut, err := runCLI(t, "oo", server.URL, "-r", "2", "-v", "--format", "json")
	require.NoError(t, err)

	assert.Contains(t, errOut, "target "+server.URL)
	assert.Contains(t, errOut, "request #1: 200 HTTP/1.1")
	assert.Contains(t, errOut, "request #2: 200 HTTP/1.1")
	assert.NotContains(t, out, "request #1")
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing url", []string{"one"}, "accepts 1 arg"},
		{"exclusive versions", []string{"one", "example.com", "--http1", "--http2"}, "none of the others can be"},
		{"invalid header", []string{"one", "example.com", "-H", "broken"}, "invalid header"},
		{"unknown format", []string{"oo", "example.com", "--format", "xml"}, "unknown output format"},
		{"zero requests", []string{"cc", "example.com", "-r", "0"}, "at least 1"},
		{"zero timeout", []string{"one", "example.com", "--timeout", "0s"}, "timeout must be positive"},
		{"missing profile", []string{"one", "example.com", "--config", "/nonexistent/perfo.yaml"}, "config file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestInvalidProfileIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("requests: many\n"), 0o644))

	_, _, err := runCLI(t, "oo", "example.com", "--config", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestParseHeaders(t *testing.T) {
	headers, err := parseHeaders([]string{"Accept: text/html", "X-Empty:", "X-Colon: a:b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Accept":  "text/html",
		"X-Empty": "",
		"X-Colon": "a:b",
	}, headers)

	for _, bad := range []string{"no-colon", ": value"} {
		_, err := parseHeaders([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestSettingsStructured(t *testing.T) {
	s := &settings{format: "text"}
	assert.False(t, s.structured())

	s.selects = []string{"requests"}
	assert.True(t, s.structured())

	s = &settings{format: "yaml"}
	assert.True(t, s.structured())
}

func TestLoggerDisabled(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false).Printf("hidden %d", 1)
	assert.Empty(t, buf.String())

	l := newLogger(&buf, true)
	l.Printf("shown %d", 2)
	assert.True(t, strings.HasPrefix(buf.String(), "shown 2"))
}
