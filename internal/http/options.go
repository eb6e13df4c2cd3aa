package http

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultEncoding is the Accept-Encoding sent when none is configured
	DefaultEncoding = "gzip, deflate, br, zstd"

	// DefaultUserAgent identifies perfo to the target server
	DefaultUserAgent = "gulch/perfo via Go"

	// BrowserUserAgent mimics a desktop Chrome
	BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// DefaultTimeout bounds a single request on the underlying client
	DefaultTimeout = 30 * time.Second

	maxRedirects = 10
)

// HTTPVersion pins the protocol used for a request.
type HTTPVersion int

const (
	// VersionAuto lets the transport negotiate (HTTP/2 over TLS when offered)
	VersionAuto HTTPVersion = iota
	// VersionHTTP11 forces HTTP/1.1
	VersionHTTP11
	// VersionHTTP2 forces HTTP/2 via ALPN
	VersionHTTP2
	// VersionHTTP3 sends the request over QUIC
	VersionHTTP3
)

// versionNames is the single mapping between textual versions and HTTPVersion.
// The first name of every entry is the canonical one.
var versionNames = map[HTTPVersion][]string{
	VersionAuto:   {"auto", ""},
	VersionHTTP11: {"1.1", "http1", "http/1.1", "h1"},
	VersionHTTP2:  {"2", "http2", "http/2", "h2"},
	VersionHTTP3:  {"3", "http3", "http/3", "h3"},
}

// String returns the canonical name of the version
func (v HTTPVersion) String() string {
	if names, ok := versionNames[v]; ok {
		return names[0]
	}
	return fmt.Sprintf("HTTPVersion(%d)", int(v))
}

// ParseHTTPVersion maps a textual version to an HTTPVersion
func ParseHTTPVersion(s string) (HTTPVersion, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v, names := range versionNames {
		for _, name := range names {
			if s == name {
				return v, nil
			}
		}
	}
	return VersionAuto, fmt.Errorf("unknown HTTP version %q (expected auto, 1.1, 2 or 3)", s)
}

// ProtocolLabel returns the display label of a negotiated protocol version
func ProtocolLabel(major, minor int) string {
	switch {
	case major == 1 && minor == 0:
		return "HTTP/1.0"
	case major == 1 && minor == 1:
		return "HTTP/1.1"
	case major == 2:
		return "HTTP/2"
	case major == 3:
		return "HTTP/3"
	case major == 0 && minor == 0:
		return ""
	default:
		return fmt.Sprintf("HTTP/%d.%d", major, minor)
	}
}

// RequestOptions configures every trial of a run. It is built once per
// invocation and only read afterwards.
type RequestOptions struct {
	URL             string
	VerifyTLS       bool
	FollowRedirects bool
	Encoding        string
	UserAgent       string
	HTTPVersion     HTTPVersion
	Reuse           bool
	Timeout         time.Duration
	Headers         map[string]string
}

// DefaultRequestOptions returns the options perfo uses when nothing is configured
func DefaultRequestOptions(url string) RequestOptions {
	return RequestOptions{
		URL:             url,
		FollowRedirects: true,
		Encoding:        DefaultEncoding,
		UserAgent:       DefaultUserAgent,
		HTTPVersion:     VersionAuto,
		Timeout:         DefaultTimeout,
	}
}
