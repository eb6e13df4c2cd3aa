package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/perfo/internal/http"
	"github.com/wesleyorama2/perfo/internal/report"
	"github.com/wesleyorama2/perfo/internal/runner"
	"github.com/wesleyorama2/perfo/internal/servertiming"
	"github.com/wesleyorama2/perfo/internal/stats"
	"github.com/wesleyorama2/perfo/pkg/jsonpath"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat maps a format name to an OutputFormat
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected text, json or yaml)", s)
	}
}

// OptionsData describes the request options of a run
type OptionsData struct {
	HTTPVersion     string            `json:"httpVersion" yaml:"httpVersion"`
	Encoding        string            `json:"encoding" yaml:"encoding"`
	UserAgent       string            `json:"userAgent" yaml:"userAgent"`
	VerifyTLS       bool              `json:"verifyTls" yaml:"verifyTls"`
	FollowRedirects bool              `json:"followRedirects" yaml:"followRedirects"`
	Reuse           bool              `json:"reuse" yaml:"reuse"`
	TimeoutMs       int64             `json:"timeoutMs" yaml:"timeoutMs"`
	Headers         map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// SampleData is the structured form of one trial
type SampleData struct {
	Index           int                  `json:"index" yaml:"index"`
	Outcome         string               `json:"outcome" yaml:"outcome"`
	Status          int                  `json:"status" yaml:"status"`
	Protocol        string               `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	URL             string               `json:"url" yaml:"url"`
	EffectiveURL    string               `json:"effectiveUrl,omitempty" yaml:"effectiveUrl,omitempty"`
	BytesDownloaded int64                `json:"bytesDownloaded" yaml:"bytesDownloaded"`
	Timing          http.Phases          `json:"timing" yaml:"timing"`
	Headers         http.Headers         `json:"headers,omitempty" yaml:"headers,omitempty"`
	ServerTiming    []servertiming.Entry `json:"serverTiming,omitempty" yaml:"serverTiming,omitempty"`
	Error           string               `json:"error,omitempty" yaml:"error,omitempty"`
}

// ServerTimingData is the merged Server-Timing table of a batch
type ServerTimingData struct {
	Absent  bool         `json:"absent" yaml:"absent"`
	Message string       `json:"message,omitempty" yaml:"message,omitempty"`
	Metrics []report.Row `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// HistogramData is the HDR distribution of total time
type HistogramData struct {
	Count     int64            `json:"count" yaml:"count"`
	MeanMs    float64          `json:"meanMs" yaml:"meanMs"`
	StdDevMs  float64          `json:"stdDevMs" yaml:"stdDevMs"`
	Quantiles []stats.Quantile `json:"quantiles" yaml:"quantiles"`
	Buckets   []stats.Bucket   `json:"buckets" yaml:"buckets"`
}

// Document is the structured result of one perfo invocation
type Document struct {
	RunID           string              `json:"runId" yaml:"runId"`
	Timestamp       string              `json:"timestamp" yaml:"timestamp"`
	Strategy        runner.Strategy     `json:"strategy" yaml:"strategy"`
	URL             string              `json:"url" yaml:"url"`
	Requests        int                 `json:"requests" yaml:"requests"`
	ExecutionTimeMs float64             `json:"executionTimeMs" yaml:"executionTimeMs"`
	Options         OptionsData         `json:"options" yaml:"options"`
	Samples         []SampleData        `json:"samples,omitempty" yaml:"samples,omitempty"`
	Timing          *report.TimingTable `json:"timing,omitempty" yaml:"timing,omitempty"`
	ServerTiming    *ServerTimingData   `json:"serverTiming,omitempty" yaml:"serverTiming,omitempty"`
	Histogram       *HistogramData      `json:"histogram,omitempty" yaml:"histogram,omitempty"`
}

// DocumentOptions selects the optional parts of a Document
type DocumentOptions struct {
	// Samples includes every trial; single requests always include theirs
	Samples bool
	// Headers includes response headers of included samples
	Headers bool
	// ServerTiming includes Server-Timing data
	ServerTiming bool
	// Histogram includes the HDR distribution of total time
	Histogram bool
}

// NewDocument builds the structured result of a batch
func NewDocument(opts http.RequestOptions, batch runner.Batch, docOpts DocumentOptions) *Document {
	doc := &Document{
		RunID:           uuid.NewString(),
		Timestamp:       time.Now().Format(time.RFC3339),
		Strategy:        batch.Strategy,
		URL:             opts.URL,
		Requests:        len(batch.Samples),
		ExecutionTimeMs: http.Millis(batch.Duration),
		Options: OptionsData{
			HTTPVersion:     opts.HTTPVersion.String(),
			Encoding:        opts.Encoding,
			UserAgent:       opts.UserAgent,
			VerifyTLS:       opts.VerifyTLS,
			FollowRedirects: opts.FollowRedirects,
			Reuse:           opts.Reuse,
			TimeoutMs:       opts.Timeout.Milliseconds(),
			Headers:         opts.Headers,
		},
	}

	single := batch.Strategy == runner.StrategySingle
	if single || docOpts.Samples {
		doc.Samples = make([]SampleData, 0, len(batch.Samples))
		for _, s := range batch.Samples {
			doc.Samples = append(doc.Samples, newSampleData(s, docOpts))
		}
	}

	if single {
		return doc
	}

	timing := report.BuildTimingTable(batch.Samples)
	doc.Timing = &timing

	if docOpts.ServerTiming {
		table := report.BuildServerTimingTable(batch.Samples)
		doc.ServerTiming = &ServerTimingData{Absent: table.Absent(), Metrics: table.Rows}
		if table.Absent() {
			doc.ServerTiming.Message = report.ServerTimingAbsent
		}
	}

	if docOpts.Histogram {
		if row, ok := timing.Row(report.PhaseTotal); ok {
			if dist, err := stats.NewDistribution(row.Values); err == nil {
				doc.Histogram = &HistogramData{
					Count:     dist.Count(),
					MeanMs:    dist.Mean(),
					StdDevMs:  dist.StdDev(),
					Quantiles: dist.Quantiles(50, 90, 99, 99.9),
					Buckets:   dist.Buckets(10),
				}
			}
		}
	}

	return doc
}

func newSampleData(s http.Sample, docOpts DocumentOptions) SampleData {
	data := SampleData{
		Index:           s.Index,
		Outcome:         s.Outcome().String(),
		Status:          s.Status,
		Protocol:        s.Protocol,
		URL:             s.URL,
		BytesDownloaded: s.BytesDownloaded,
		Timing:          s.Phases(),
	}
	if s.Redirected() {
		data.EffectiveURL = s.EffectiveURL
	}
	if s.Err != nil {
		data.Error = s.Err.Error()
	}
	if docOpts.Headers {
		data.Headers = s.Headers
	}
	if docOpts.ServerTiming {
		data.ServerTiming = report.ServerTimingEntries(s)
	}
	return data
}

// Marshal encodes the document in the given format
func (d *Document) Marshal(format OutputFormat) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(d, "", "  ")
	case FormatYAML:
		return yaml.Marshal(d)
	default:
		return nil, fmt.Errorf("format %q is not structured", format)
	}
}

// Select evaluates path expressions against the JSON form of the document
func (d *Document) Select(paths []string) ([]jsonpath.Selection, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return jsonpath.SelectAll(data, paths)
}

// Write encodes the document to w. With paths, only the selected values are
// written, one per line.
func (d *Document) Write(w io.Writer, format OutputFormat, paths []string) error {
	if len(paths) > 0 {
		selections, err := d.Select(paths)
		if err != nil {
			return err
		}
		for _, s := range selections {
			if _, err := fmt.Fprintln(w, s.Value); err != nil {
				return err
			}
		}
		return nil
	}

	data, err := d.Marshal(format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if format == FormatJSON {
		_, err = fmt.Fprintln(w)
	}
	return err
}
