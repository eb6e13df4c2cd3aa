package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/wesleyorama2/perfo/internal/http"
)

// logger writes diagnostics to stderr when --verbose is set. Concurrent runs
// log from many goroutines, so writes are serialized.
type logger struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
}

func newLogger(w io.Writer, enabled bool) *logger {
	return &logger{w: w, enabled: enabled}
}

func (l *logger) Printf(format string, args ...interface{}) {
	if !l.enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, format+"\n", args...)
}

// Sample logs one completed trial
func (l *logger) Sample(s http.Sample) {
	switch s.Outcome() {
	case http.OutcomeTransportFailure:
		l.Printf("request #%d failed after %.2f ms: %v", s.Index+1, http.Millis(s.TotalDone), s.Err)
	default:
		l.Printf("request #%d: %d %s in %.2f ms", s.Index+1, s.Status, s.Protocol, http.Millis(s.TotalDone))
	}
}
