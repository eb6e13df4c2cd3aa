package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
)

// transport is a RoundTripper that can release its connections.
type transport interface {
	http.RoundTripper
	close()
}

type tcpTransport struct {
	*http.Transport
}

func (t tcpTransport) close() {
	t.CloseIdleConnections()
}

type quicTransport struct {
	*http3.Transport
}

func (t quicTransport) close() {
	_ = t.Close()
}

// newTransport builds the transport pinned to the requested protocol version
func newTransport(opts RequestOptions, base *tls.Config) transport {
	tlsConfig := &tls.Config{}
	if base != nil {
		tlsConfig = base.Clone()
	}
	if !opts.VerifyTLS {
		tlsConfig.InsecureSkipVerify = true
	}

	if opts.HTTPVersion == VersionHTTP3 {
		return quicTransport{&http3.Transport{
			TLSClientConfig: tlsConfig,
			Dial:            dialQUIC,
		}}
	}

	dialer := &net.Dialer{
		Timeout:   opts.Timeout,
		KeepAlive: 30 * time.Second,
	}

	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         dialer.DialContext,
		TLSClientConfig:     tlsConfig,
		DisableKeepAlives:   !opts.Reuse,
		DisableCompression:  true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
	}

	switch opts.HTTPVersion {
	case VersionHTTP11:
		tlsConfig.NextProtos = []string{"http/1.1"}
		t.ForceAttemptHTTP2 = false
		// A non-nil empty map disables the bundled HTTP/2 upgrade.
		t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	case VersionHTTP2:
		tlsConfig.NextProtos = []string{"h2"}
		t.ForceAttemptHTTP2 = true
	default:
		t.ForceAttemptHTTP2 = true
	}

	return tcpTransport{t}
}

// dialQUIC resolves the host and performs the QUIC handshake, recording both
// on the request timeline. QUIC has no separate connect phase, so the TLS
// handshake absorbs the time between resolution and an established session.
func dialQUIC(ctx context.Context, addr string, tlsCfg *tls.Config, cfg *quic.Config) (*quic.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, "443"
	}

	tl := timelineFrom(ctx)

	ip := host
	if net.ParseIP(host) == nil {
		addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", host, err)
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("resolve %s: no addresses", host)
		}
		ip = addrs[0].IP.String()
	}
	if tl != nil {
		tl.mark(&tl.dns)
	}

	tlsCfg = tlsCfg.Clone()
	if tlsCfg.ServerName == "" {
		tlsCfg.ServerName = host
	}

	conn, err := quic.DialAddr(ctx, net.JoinHostPort(ip, port), tlsCfg, cfg)
	if err != nil {
		return nil, err
	}
	if tl != nil {
		tl.mark(&tl.tls)
		tl.mark(&tl.pretransfer)
	}
	return conn, nil
}
