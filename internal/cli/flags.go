package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/perfo/internal/config"
	"github.com/wesleyorama2/perfo/internal/http"
	"github.com/wesleyorama2/perfo/internal/output"
)

const defaultRequests = 10

// addRequestFlags declares the flags shared by every probe command. many adds
// the flags that only make sense for batches.
func addRequestFlags(cmd *cobra.Command, many bool) {
	flags := cmd.Flags()

	flags.BoolP("server-timing", "t", false, "Show Server-Timing metrics")
	flags.StringP("content-encoding", "e", http.DefaultEncoding, "Accept-Encoding sent with every request")
	flags.BoolP("browser-user-agent", "b", false, "Send a desktop browser User-Agent")
	flags.String("user-agent", "", "Send this User-Agent")
	flags.Bool("http1", false, "Force HTTP/1.1")
	flags.Bool("http2", false, "Force HTTP/2")
	flags.Bool("http3", false, "Force HTTP/3 over QUIC")
	flags.Bool("force-http3", false, "Alias of --http3")
	flags.Bool("reuse", false, "Reuse connections between requests")
	flags.Bool("verify-tls", false, "Verify the server certificate")
	flags.Bool("no-follow", false, "Do not follow redirects")
	flags.Duration("timeout", http.DefaultTimeout, "Timeout of a single request")
	flags.StringArrayP("header", "H", nil, "Request header as 'Name: value' (repeatable)")

	cmd.MarkFlagsMutuallyExclusive("http1", "http2", "http3", "force-http3")
	cmd.MarkFlagsMutuallyExclusive("browser-user-agent", "user-agent")

	if many {
		flags.IntP("requests", "r", defaultRequests, "Number of requests")
		flags.Bool("detail", false, "Show one line per request")
		flags.Bool("histogram", false, "Show the distribution of total time")
	} else {
		flags.BoolP("output-headers", "z", false, "Show response headers")
	}
}

// settings is everything a probe command needs, merged from built-in
// defaults, the profile and explicit flags in that order.
type settings struct {
	opts http.RequestOptions

	requests      int
	serverTiming  bool
	outputHeaders bool
	detail        bool
	histogram     bool

	format  output.OutputFormat
	selects []string
	noColor bool
	verbose bool

	profilePath string
}

// structured reports whether results are written as a document
func (s *settings) structured() bool {
	return s.format != output.FormatText || len(s.selects) > 0
}

func loadSettings(cmd *cobra.Command, rawURL string) (*settings, error) {
	flags := cmd.Flags()

	configPath, _ := flags.GetString("config")
	profile, err := config.Discover(configPath)
	if err != nil {
		return nil, err
	}

	s := &settings{
		opts:        http.DefaultRequestOptions(http.NormalizeURL(rawURL)),
		requests:    defaultRequests,
		format:      output.FormatText,
		profilePath: profile.Path,
	}

	applyProfile(s, profile)
	if err := applyFlags(cmd, s); err != nil {
		return nil, err
	}

	if s.requests < 1 {
		return nil, fmt.Errorf("request count must be at least 1, got %d", s.requests)
	}
	if s.opts.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", s.opts.Timeout)
	}
	return s, nil
}

func applyProfile(s *settings, p *config.Profile) {
	p.Apply(&s.opts)

	if p.Requests != nil {
		s.requests = *p.Requests
	}
	if p.ServerTiming != nil {
		s.serverTiming = *p.ServerTiming
	}
	if p.OutputHeaders != nil {
		s.outputHeaders = *p.OutputHeaders
	}
	if p.NoColor != nil {
		s.noColor = *p.NoColor
	}
	if f, err := output.ParseFormat(p.Format); err == nil && p.Format != "" {
		s.format = f
	}
}

func applyFlags(cmd *cobra.Command, s *settings) error {
	flags := cmd.Flags()
	changed := flags.Changed

	if changed("format") {
		name, _ := flags.GetString("format")
		f, err := output.ParseFormat(name)
		if err != nil {
			return err
		}
		s.format = f
	}
	s.selects, _ = flags.GetStringArray("select")
	s.verbose, _ = flags.GetBool("verbose")
	if changed("no-color") {
		s.noColor, _ = flags.GetBool("no-color")
	}

	if changed("server-timing") {
		s.serverTiming, _ = flags.GetBool("server-timing")
	}
	if changed("output-headers") {
		s.outputHeaders, _ = flags.GetBool("output-headers")
	}
	if changed("requests") {
		s.requests, _ = flags.GetInt("requests")
	}
	s.detail, _ = flags.GetBool("detail")
	s.histogram, _ = flags.GetBool("histogram")

	if changed("content-encoding") {
		s.opts.Encoding, _ = flags.GetString("content-encoding")
	}
	if browser, _ := flags.GetBool("browser-user-agent"); browser {
		s.opts.UserAgent = http.BrowserUserAgent
	}
	if changed("user-agent") {
		s.opts.UserAgent, _ = flags.GetString("user-agent")
	}

	if v, ok := versionFromFlags(cmd); ok {
		s.opts.HTTPVersion = v
	}

	if changed("reuse") {
		s.opts.Reuse, _ = flags.GetBool("reuse")
	}
	if changed("verify-tls") {
		s.opts.VerifyTLS, _ = flags.GetBool("verify-tls")
	}
	if changed("no-follow") {
		noFollow, _ := flags.GetBool("no-follow")
		s.opts.FollowRedirects = !noFollow
	}
	if changed("timeout") {
		s.opts.Timeout, _ = flags.GetDuration("timeout")
	}

	if changed("header") {
		lines, _ := flags.GetStringArray("header")
		headers, err := parseHeaders(lines)
		if err != nil {
			return err
		}
		merged := make(map[string]string, len(s.opts.Headers)+len(headers))
		for k, v := range s.opts.Headers {
			merged[k] = v
		}
		for k, v := range headers {
			merged[k] = v
		}
		s.opts.Headers = merged
	}

	return nil
}

func versionFromFlags(cmd *cobra.Command) (http.HTTPVersion, bool) {
	flags := cmd.Flags()
	for _, f := range []struct {
		name    string
		version http.HTTPVersion
	}{
		{"http1", http.VersionHTTP11},
		{"http2", http.VersionHTTP2},
		{"http3", http.VersionHTTP3},
		{"force-http3", http.VersionHTTP3},
	} {
		if on, _ := flags.GetBool(f.name); on {
			return f.version, true
		}
	}
	return http.VersionAuto, false
}

// parseHeaders splits "Name: value" lines
func parseHeaders(lines []string) (map[string]string, error) {
	headers := make(map[string]string, len(lines))
	for _, line := range lines {
		parts := strings.SplitN(line, ":", 2)
		name := strings.TrimSpace(parts[0])
		if len(parts) != 2 || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected 'Name: value')", line)
		}
		headers[name] = strings.TrimSpace(parts[1])
	}
	return headers, nil
}
