package http

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Build constructs the GET request sent by every trial
func (o RequestOptions) Build(ctx context.Context) (*http.Request, error) {
	reqURL, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(reqURL.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %q (only http and https are allowed)", reqURL.Scheme)
	}
	if reqURL.Host == "" {
		return nil, fmt.Errorf("URL must have a hostname: %s", o.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}

	if o.UserAgent != "" {
		req.Header.Set("User-Agent", o.UserAgent)
	}
	if o.Encoding != "" {
		req.Header.Set("Accept-Encoding", o.Encoding)
	}
	for key, value := range o.Headers {
		req.Header.Set(key, value)
	}

	return req, nil
}

// NormalizeURL adds a scheme to a bare host such as "example.com/path"
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return "https://" + raw
	}
	return raw
}
