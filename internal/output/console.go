// Package output renders perfo results for the terminal and as structured
// JSON or YAML documents.
package output

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/wesleyorama2/perfo/internal/http"
	"github.com/wesleyorama2/perfo/internal/report"
	"github.com/wesleyorama2/perfo/internal/runner"
	"github.com/wesleyorama2/perfo/internal/servertiming"
	"github.com/wesleyorama2/perfo/internal/stats"
)

const (
	// leaderWidth is the column at which dotted-leader values end
	leaderWidth = 40

	// histogramWidth is the length of the longest histogram bar
	histogramWidth = 30

	barFilled = "█"
)

// Printer writes human-readable results.
type Printer struct {
	w       io.Writer
	scheme  *ColorScheme
	noColor bool
}

// NewPrinter creates a printer writing to w
func NewPrinter(w io.Writer, noColor bool) *Printer {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Printer{w: w, scheme: scheme, noColor: noColor}
}

func (p *Printer) println(a ...interface{}) {
	fmt.Fprintln(p.w, a...)
}

// Break writes the blank lines separating output blocks
func (p *Printer) Break() {
	fmt.Fprint(p.w, "\n\n")
}

func (p *Printer) leader(n int) string {
	if n < 1 {
		n = 1
	}
	return p.scheme.Leader.Sprint(strings.Repeat(".", n))
}

func (p *Printer) rule() string {
	return p.scheme.Leader.Sprint(strings.Repeat("-", leaderWidth))
}

// Welcome prints the banner
func (p *Printer) Welcome(version string) {
	p.Break()
	p.println(p.scheme.Title.Sprintf("🚀 perfo v%s", version))
	p.println(p.scheme.Subtitle.Sprintf("Using Go %s net/http, HTTP/3 via quic-go", runtime.Version()))
	p.Break()
}

// Progress announces a batch before it runs
func (p *Printer) Progress(strategy runner.Strategy, n int) {
	switch strategy {
	case runner.StrategyConcurrent:
		p.println(fmt.Sprintf("Doing %d concurrent requests...", n))
	case runner.StrategySequential:
		p.println(fmt.Sprintf("Doing %d requests one by one...", n))
	}
}

// GeneralInfo prints URL, protocol, status and size of a sample
func (p *Printer) GeneralInfo(s http.Sample) {
	url := s.URL
	if s.Redirected() {
		url += " -> " + p.scheme.Highlight.Sprint(s.EffectiveURL)
	}

	p.println(p.scheme.Label.Sprint("URL:"), url)
	if s.Outcome() == http.OutcomeTransportFailure {
		p.println(p.scheme.Error.Sprint("Error:"), errorText(s))
		return
	}
	p.println(p.scheme.Label.Sprint("Protocol:"), s.Protocol)
	p.println(p.scheme.Label.Sprint("Status Code:"), p.scheme.Status(s.Status).Sprint(s.Status))
	p.println(p.scheme.Label.Sprint("Response Size:"), HumanReadableSize(s.BytesDownloaded))
}

// ExecutionTime prints the wall-clock duration of a batch
func (p *Printer) ExecutionTime(d time.Duration) {
	p.println(fmt.Sprintf("Execution time: %2.3f seconds", d.Seconds()))
}

// Headers prints response headers sorted by name
func (p *Printer) Headers(headers http.Headers) {
	p.println(p.scheme.Section.Sprint("Headers:"))

	for _, name := range headers.Names() {
		value := headers[name]
		p.println(p.scheme.HeaderKey.Sprint(name) + p.leader(leaderWidth-len(name)) + value.String())
	}
}

// ServerTiming prints the parsed Server-Timing entries of one response
func (p *Printer) ServerTiming(entries []servertiming.Entry) {
	p.println(p.scheme.Section.Sprint("Server-Timing:"))

	if len(entries) == 0 {
		p.println(p.scheme.Absent.Sprint(report.ServerTimingAbsent))
		return
	}

	for _, e := range entries {
		dur := ""
		if v, ok := e.Dur(); ok {
			dur = formatMs(v)
		}

		line := p.scheme.Metric.Sprint(e.Name) + p.leader(leaderWidth-len(e.Name)-len(dur)) + dur
		if desc, ok := e.Desc(); ok {
			line += p.leader(5) + p.scheme.Metric.Sprint(desc)
		}
		p.println(line)
	}
}

func (p *Printer) timingLine(title string, ms float64, c func(a ...interface{}) string) string {
	value := formatMs(ms)
	return c(title) + p.leader(leaderWidth-len(title)-len(value)) + value
}

// Timing prints the phase breakdown of a single sample
func (p *Printer) Timing(s http.Sample) {
	phases := s.Phases()

	p.println(p.scheme.Section.Sprint("Timing (in ms):"))
	p.println(p.timingLine(report.PhaseDNS, phases.DNS, p.scheme.Phase.Sprint))
	p.println(p.timingLine(report.PhaseTCP, phases.TCP, p.scheme.Phase.Sprint))
	p.println(p.timingLine(report.PhaseTLS, phases.TLS, p.scheme.Phase.Sprint))
	p.println(p.timingLine(report.PhaseTTFB, phases.TTFB, p.scheme.Phase.Sprint))
	p.println(p.timingLine(report.PhaseDataTransfer, phases.DataTransfer, p.scheme.Phase.Sprint))
	p.println(p.rule())
	p.println(p.timingLine(report.PhaseTotal, phases.Total, p.scheme.Total.Sprint))

	if s.RedirectTime > 0 {
		p.println(p.rule())
		p.println(p.timingLine("Redirect", phases.Redirect, p.scheme.Phase.Sprint))
	}
}

// FailedRequests prints the failure counters of a batch, if any
func (p *Printer) FailedRequests(table report.TimingTable) {
	if table.Failed > 0 {
		p.println(p.scheme.Error.Sprintf("Failed requests: %d", table.Failed))
	}
	if table.Malformed > 0 {
		p.println(p.scheme.Error.Sprintf("Malformed samples: %d", table.Malformed))
	}
}

func (p *Printer) statsTable(title string, rows []report.Row) error {
	table := tablewriter.NewTable(p.w,
		tablewriter.WithHeader([]string{title, "min", "max", "avg", "mdn", "p75", "p95"}),
	)

	for _, r := range rows {
		s := r.Summary
		if err := table.Append([]string{
			r.Name,
			formatMs(s.Min),
			formatMs(s.Max),
			formatMs(s.Average),
			formatMs(s.Median),
			formatMs(s.P75),
			formatMs(s.P95),
		}); err != nil {
			return fmt.Errorf("rendering %s: %w", title, err)
		}
	}

	return table.Render()
}

// TimingTable prints per-phase statistics of a batch
func (p *Printer) TimingTable(table report.TimingTable) error {
	p.FailedRequests(table)

	if table.Empty() {
		p.println(p.scheme.Error.Sprint("No successful requests"))
		return nil
	}
	return p.statsTable("Timings (in ms)", table.Rows)
}

// ServerTimingTable prints merged Server-Timing statistics of a batch
func (p *Printer) ServerTimingTable(table report.ServerTimingTable) error {
	if table.Absent() {
		p.println(p.scheme.Absent.Sprint(report.ServerTimingAbsent))
		return nil
	}
	return p.statsTable("Server-Timing", table.Rows)
}

// Detail prints one line per trial
func (p *Printer) Detail(samples []http.Sample) {
	p.println(p.scheme.Section.Sprint("Requests:"))

	for _, s := range samples {
		prefix := fmt.Sprintf("#%-4d", s.Index+1)

		switch s.Outcome() {
		case http.OutcomeTransportFailure:
			p.println(prefix, ErrorIcon(p.noColor), p.scheme.Error.Sprint(errorText(s)))
		case http.OutcomeNonSuccessStatus:
			p.println(prefix, WarningIcon(p.noColor), p.scheme.Status(s.Status).Sprint(s.Status),
				s.Protocol, formatMs(http.Millis(s.TotalDone))+" ms")
		default:
			p.println(prefix, SuccessIcon(p.noColor), p.scheme.Status(s.Status).Sprint(s.Status),
				s.Protocol, formatMs(http.Millis(s.TotalDone))+" ms")
		}
	}
}

// Histogram prints quantiles and a bar chart of a distribution
func (p *Printer) Histogram(title string, d *stats.Distribution) {
	p.println(p.scheme.Section.Sprintf("%s distribution (in ms):", title))

	for _, q := range d.Quantiles(50, 90, 99, 99.9) {
		label := "p" + strconv.FormatFloat(q.Quantile, 'f', -1, 64)
		value := formatMs(q.Value)
		p.println(p.scheme.Phase.Sprint(label) + p.leader(leaderWidth-len(label)-len(value)) + value)
	}

	buckets := d.Buckets(10)
	var peak int64
	for _, b := range buckets {
		if b.Count > peak {
			peak = b.Count
		}
	}
	if peak == 0 {
		return
	}

	p.println(p.rule())
	for _, b := range buckets {
		width := int(math.Round(float64(b.Count) / float64(peak) * histogramWidth))
		p.println(fmt.Sprintf("%10s - %-10s %s %d",
			formatMs(b.From), formatMs(b.To), p.scheme.Metric.Sprint(strings.Repeat(barFilled, width)), b.Count))
	}
}

func errorText(s http.Sample) string {
	if s.Err != nil {
		return s.Err.Error()
	}
	return "no response"
}

func formatMs(v float64) string {
	return fmt.Sprintf("%4.2f", v)
}

var sizeUnits = []string{"bytes", "KB", "MB", "GB", "TB"}

// HumanReadableSize formats a byte count with binary units, e.g. "1.5 KB"
func HumanReadableSize(bytes int64) string {
	if bytes <= 0 {
		return "0.00 bytes"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	value = math.Round(value*100) / 100
	return strconv.FormatFloat(value, 'f', -1, 64) + " " + sizeUnits[unit]
}
