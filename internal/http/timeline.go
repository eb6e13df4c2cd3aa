package http

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"
	"sync"
	"time"
)

// timeline records phase timestamps of one request. Trace hooks may fire on
// dialer goroutines, so every mark takes the lock.
type timeline struct {
	mu    sync.Mutex
	start time.Time

	dns         time.Duration
	connect     time.Duration
	tls         time.Duration
	pretransfer time.Duration
	firstByte   time.Duration
	total       time.Duration
	redirect    time.Duration
}

type timelineKey struct{}

func newTimeline() *timeline {
	return &timeline{start: time.Now()}
}

func (t *timeline) mark(field *time.Duration) {
	t.mu.Lock()
	*field = time.Since(t.start)
	t.mu.Unlock()
}

func (t *timeline) markIfUnset(field *time.Duration) {
	t.mu.Lock()
	if *field == 0 {
		*field = time.Since(t.start)
	}
	t.mu.Unlock()
}

// nextHop starts the next hop of a redirect chain. Connection phases of the
// previous hop are dropped and the new hop is measured from now.
func (t *timeline) nextHop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.redirect = time.Since(t.start)
	t.dns, t.connect, t.tls, t.pretransfer, t.firstByte = 0, 0, 0, 0, 0
}

// withTimeline attaches the timeline to ctx together with an httptrace hook
// set. The HTTP/3 dialer looks the timeline up directly since QUIC does not
// go through the httptrace dial hooks.
func (t *timeline) withTimeline(ctx context.Context) context.Context {
	trace := &httptrace.ClientTrace{
		DNSDone: func(info httptrace.DNSDoneInfo) {
			if info.Err == nil {
				t.mark(&t.dns)
			}
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				t.mark(&t.connect)
			}
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil {
				t.mark(&t.tls)
			}
		},
		GotConn: func(info httptrace.GotConnInfo) {
			t.mark(&t.pretransfer)
		},
		GotFirstResponseByte: func() {
			t.mark(&t.firstByte)
		},
	}

	ctx = context.WithValue(ctx, timelineKey{}, t)
	return httptrace.WithClientTrace(ctx, trace)
}

func timelineFrom(ctx context.Context) *timeline {
	t, _ := ctx.Value(timelineKey{}).(*timeline)
	return t
}

// apply copies the timestamps into s. A phase that did not happen inherits
// the previous timestamp so it measures zero.
func (t *timeline) apply(s *Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()

	carry := func(v, prev time.Duration) time.Duration {
		if v == 0 {
			return prev
		}
		return v
	}

	s.DNSDone = carry(t.dns, t.redirect)
	s.ConnectDone = carry(t.connect, s.DNSDone)
	s.TLSDone = carry(t.tls, s.ConnectDone)
	s.PretransferDone = carry(t.pretransfer, s.TLSDone)
	s.FirstByteDone = carry(t.firstByte, s.PretransferDone)
	s.TotalDone = carry(t.total, s.FirstByteDone)
	s.RedirectTime = t.redirect
}
