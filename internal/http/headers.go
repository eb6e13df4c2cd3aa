package http

import (
	"encoding/json"
	"sort"
	"strings"
)

// HeaderValue is one folded response header. A header received once holds a
// single value; a repeated header holds every value in the order received.
type HeaderValue struct {
	values []string
}

// NewHeaderValue builds a HeaderValue from values in receipt order
func NewHeaderValue(values ...string) HeaderValue {
	return HeaderValue{values: append([]string(nil), values...)}
}

// IsMulti reports whether the header was received more than once
func (h HeaderValue) IsMulti() bool {
	return len(h.values) > 1
}

// Values returns all values in receipt order
func (h HeaderValue) Values() []string {
	return append([]string(nil), h.values...)
}

// String returns the scalar value, or all values joined with " • "
func (h HeaderValue) String() string {
	return strings.Join(h.values, " • ")
}

// MarshalJSON encodes a scalar header as a string and a repeated one as an array
func (h HeaderValue) MarshalJSON() ([]byte, error) {
	if h.IsMulti() {
		return json.Marshal(h.values)
	}
	return json.Marshal(h.String())
}

// MarshalYAML mirrors MarshalJSON for yaml.v3
func (h HeaderValue) MarshalYAML() (interface{}, error) {
	if h.IsMulti() {
		return h.values, nil
	}
	return h.String(), nil
}

func (h HeaderValue) fold(value string) HeaderValue {
	return HeaderValue{values: append(h.values, value)}
}

// Headers maps lower-cased header names to their folded values.
type Headers map[string]HeaderValue

// Get returns the header value for name, compared case-insensitively
func (h Headers) Get(name string) (HeaderValue, bool) {
	v, ok := h[strings.ToLower(strings.TrimSpace(name))]
	return v, ok
}

// Names returns the header names sorted alphabetically
func (h Headers) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HeaderRecorder accumulates raw header lines of a single request. It is
// owned by one request and must not be shared.
type HeaderRecorder struct {
	headers Headers
}

// NewHeaderRecorder creates an empty recorder
func NewHeaderRecorder() *HeaderRecorder {
	return &HeaderRecorder{headers: make(Headers)}
}

// Add records one raw header line such as "Set-Cookie: a=1". Lines without
// a colon or with an empty value are ignored. A repeated name is folded by
// appending the new value after the ones already seen.
func (r *HeaderRecorder) Add(line string) {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}

	name = strings.ToLower(strings.TrimSpace(name))
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return
	}

	if existing, seen := r.headers[name]; seen {
		r.headers[name] = existing.fold(value)
		return
	}
	r.headers[name] = NewHeaderValue(value)
}

// Headers returns a copy of the recorded headers
func (r *HeaderRecorder) Headers() Headers {
	out := make(Headers, len(r.headers))
	for name, value := range r.headers {
		out[name] = NewHeaderValue(value.values...)
	}
	return out
}
