// Package report reduces a batch of samples to the tables printed after a
// run: per-phase timing statistics and merged Server-Timing statistics.
package report

import (
	"github.com/wesleyorama2/perfo/internal/http"
	"github.com/wesleyorama2/perfo/internal/servertiming"
	"github.com/wesleyorama2/perfo/internal/stats"
)

// ServerTimingAbsent is reported instead of an empty Server-Timing table.
const ServerTimingAbsent = "Server-Timing header not exists"

// Phase names in display order
const (
	PhaseDNS          = "DNS Lookup"
	PhaseTCP          = "TCP Handshake"
	PhaseTLS          = "SSL Handshake"
	PhaseTTFB         = "TTFB"
	PhaseDataTransfer = "Data Transfer"
	PhaseTotal        = "Total"
)

// Phases lists every phase of the timing table in order.
var Phases = []string{PhaseDNS, PhaseTCP, PhaseTLS, PhaseTTFB, PhaseDataTransfer, PhaseTotal}

// Row is one named line of a statistics table.
type Row struct {
	Name    string        `json:"name" yaml:"name"`
	Summary stats.Summary `json:"stats" yaml:"stats"`

	// Values are the raw inputs of Summary, in sample order
	Values []float64 `json:"-" yaml:"-"`
}

// TimingTable holds per-phase statistics of the successful samples.
type TimingTable struct {
	Rows []Row `json:"phases" yaml:"phases"`

	// Succeeded counts samples with status 200 that fed the table
	Succeeded int `json:"succeeded" yaml:"succeeded"`

	// Failed counts transport failures and non-200 responses
	Failed int `json:"failed" yaml:"failed"`

	// Malformed counts 200 responses rejected for out-of-order phases
	Malformed int `json:"malformed" yaml:"malformed"`
}

// Empty reports whether no sample contributed to the table
func (t TimingTable) Empty() bool {
	return len(t.Rows) == 0
}

// Row returns the row of the named phase
func (t TimingTable) Row(phase string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Name == phase {
			return r, true
		}
	}
	return Row{}, false
}

// ServerTimingTable holds per-metric statistics of Server-Timing durations.
type ServerTimingTable struct {
	Rows []Row `json:"metrics" yaml:"metrics"`
}

// Absent reports whether no sample carried a numeric Server-Timing duration
func (t ServerTimingTable) Absent() bool {
	return len(t.Rows) == 0
}

// Row returns the row of the named metric
func (t ServerTimingTable) Row(name string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Name == name {
			return r, true
		}
	}
	return Row{}, false
}

func phaseValues(p http.Phases) []float64 {
	return []float64{p.DNS, p.TCP, p.TLS, p.TTFB, p.DataTransfer, p.Total}
}

// usable splits samples into those that may feed statistics and counts of
// the rest.
func usable(samples []http.Sample) (ok []http.Sample, failed, malformed int) {
	for _, s := range samples {
		if !s.Succeeded() {
			failed++
			continue
		}
		if s.Validate() != nil {
			malformed++
			continue
		}
		ok = append(ok, s)
	}
	return ok, failed, malformed
}

// BuildTimingTable summarizes every phase over the successful samples. The
// table has no rows when no sample succeeded.
func BuildTimingTable(samples []http.Sample) TimingTable {
	ok, failed, malformed := usable(samples)

	table := TimingTable{
		Succeeded: len(ok),
		Failed:    failed,
		Malformed: malformed,
	}
	if len(ok) == 0 {
		return table
	}

	columns := make([][]float64, len(Phases))
	for _, s := range ok {
		for i, v := range phaseValues(s.Phases()) {
			columns[i] = append(columns[i], v)
		}
	}

	for i, name := range Phases {
		summary, err := stats.Summarize(columns[i])
		if err != nil {
			continue
		}
		table.Rows = append(table.Rows, Row{Name: name, Summary: summary, Values: columns[i]})
	}
	return table
}

// ServerTimingEntries parses every Server-Timing header occurrence of a sample
func ServerTimingEntries(s http.Sample) []servertiming.Entry {
	value, ok := s.Headers.Get("server-timing")
	if !ok {
		return []servertiming.Entry{}
	}
	return servertiming.ParseValues(value.Values())
}

// BuildServerTimingTable merges numeric Server-Timing durations of the
// successful samples by metric name, in order of first appearance.
func BuildServerTimingTable(samples []http.Sample) ServerTimingTable {
	succeeded, _, _ := usable(samples)

	var order []string
	durations := make(map[string][]float64)

	for _, s := range succeeded {
		for _, entry := range ServerTimingEntries(s) {
			dur, ok := entry.Dur()
			if !ok {
				continue
			}
			if _, seen := durations[entry.Name]; !seen {
				order = append(order, entry.Name)
			}
			durations[entry.Name] = append(durations[entry.Name], dur)
		}
	}

	var table ServerTimingTable
	for _, name := range order {
		summary, err := stats.Summarize(durations[name])
		if err != nil {
			continue
		}
		table.Rows = append(table.Rows, Row{Name: name, Summary: summary, Values: durations[name]})
	}
	return table
}
