package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
)

// Client executes single measured requests for a fixed set of options.
type Client struct {
	opts      RequestOptions
	tlsConfig *tls.Config

	// shared is only set when connections are reused across trials
	sharedMu sync.Mutex
	shared   transport
}

// ClientOption is a function that configures a Client
type ClientOption func(*Client)

// WithTLSConfig sets the base TLS configuration, e.g. custom root CAs
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *Client) {
		c.tlsConfig = cfg
	}
}

// NewClient creates a client for opts
func NewClient(opts RequestOptions, options ...ClientOption) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := &Client{opts: opts}
	for _, option := range options {
		option(client)
	}
	return client
}

// Options returns the options the client was built with
func (c *Client) Options() RequestOptions {
	return c.opts
}

// Close releases connections kept for reuse
func (c *Client) Close() {
	c.sharedMu.Lock()
	defer c.sharedMu.Unlock()
	if c.shared != nil {
		c.shared.close()
		c.shared = nil
	}
}

func (c *Client) transport() (transport, func()) {
	if !c.opts.Reuse {
		t := newTransport(c.opts, c.tlsConfig)
		return t, t.close
	}

	c.sharedMu.Lock()
	defer c.sharedMu.Unlock()
	if c.shared == nil {
		c.shared = newTransport(c.opts, c.tlsConfig)
	}
	return c.shared, func() {}
}

// Do performs exactly one request and returns its sample. It never retries
// and never returns an error: transport failures are reported through
// Sample.Err with Status 0.
func (c *Client) Do(ctx context.Context) Sample {
	sample := Sample{URL: c.opts.URL}

	tl := newTimeline()
	recorder := NewHeaderRecorder()

	req, err := c.opts.Build(tl.withTimeline(ctx))
	if err != nil {
		sample.Err = err
		return sample
	}

	rt, release := c.transport()
	defer release()

	httpClient := &http.Client{
		Transport: rt,
		Timeout:   c.opts.Timeout,
		CheckRedirect: func(r *http.Request, via []*http.Request) error {
			if !c.opts.FollowRedirects {
				return http.ErrUseLastResponse
			}
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			tl.nextHop()
			return nil
		},
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		tl.mark(&tl.total)
		tl.apply(&sample)
		sample.Err = err
		sample.Headers = recorder.Headers()
		return sample
	}

	// Some transports (HTTP/3) do not report the first byte through httptrace;
	// the response headers have arrived by now.
	tl.markIfUnset(&tl.firstByte)

	recordResponseHeaders(recorder, resp)

	n, readErr := io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	tl.mark(&tl.total)

	tl.apply(&sample)
	sample.Status = resp.StatusCode
	sample.Protocol = ProtocolLabel(resp.ProtoMajor, resp.ProtoMinor)
	sample.EffectiveURL = resp.Request.URL.String()
	sample.BytesDownloaded = n
	sample.Headers = recorder.Headers()
	if readErr != nil {
		sample.Err = fmt.Errorf("reading body: %w", readErr)
	}

	return sample
}

// recordResponseHeaders feeds the headers of every hop of a redirect chain,
// oldest first, into the recorder. Names within one response are fed in
// sorted order since net/http does not keep the wire order across names.
func recordResponseHeaders(recorder *HeaderRecorder, resp *http.Response) {
	var chain []*http.Response
	for r := resp; r != nil; {
		chain = append(chain, r)
		if r.Request == nil {
			break
		}
		r = r.Request.Response
	}

	for i := len(chain) - 1; i >= 0; i-- {
		header := chain[i].Header
		names := make([]string, 0, len(header))
		for name := range header {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			for _, value := range header[name] {
				recorder.Add(name + ": " + value)
			}
		}
	}
}
