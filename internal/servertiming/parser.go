// Package servertiming parses Server-Timing response headers
// (https://www.w3.org/TR/server-timing).
//
// Example header:
//
//	Server-Timing: miss,db;dur=53,app;dur=47.2,cache;desc="Cache Read";dur=23.2
package servertiming

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Param is one metric parameter, e.g. dur=53.
type Param struct {
	Key   string
	Value string
}

// Entry is one metric of a Server-Timing header. Params keep the order in
// which they first appeared; a repeated key overwrites the earlier value.
type Entry struct {
	Name   string
	Params []Param
}

// Param returns the value of the parameter named key
func (e Entry) Param(key string) (string, bool) {
	for _, p := range e.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Dur returns the duration in milliseconds, if present and a finite number
func (e Entry) Dur() (float64, bool) {
	raw, ok := e.Param("dur")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Desc returns the description parameter
func (e Entry) Desc() (string, bool) {
	return e.Param("desc")
}

func (e *Entry) set(key, value string) {
	for i := range e.Params {
		if e.Params[i].Key == key {
			e.Params[i].Value = value
			return
		}
	}
	e.Params = append(e.Params, Param{Key: key, Value: value})
}

// MarshalJSON encodes the entry as a flat object: {"name":..., "dur":..., ...}
func (e Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	name, err := json.Marshal(e.Name)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"name":`)
	buf.Write(name)

	for _, p := range e.Params {
		if p.Key == "name" {
			continue
		}
		key, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the entry as a flat mapping
func (e Entry) MarshalYAML() (interface{}, error) {
	out := make(map[string]string, len(e.Params)+1)
	for _, p := range e.Params {
		out[p.Key] = p.Value
	}
	out["name"] = e.Name
	return out, nil
}

// Parse parses one Server-Timing header value. Metrics are returned in
// header order. A blank header yields an empty slice. Malformed parameters
// never fail the parse: a parameter with an empty key is skipped, and a
// bare key without "=" is kept with an empty value.
func Parse(header string) []Entry {
	header = strings.TrimSpace(header)
	if header == "" {
		return []Entry{}
	}

	metrics := strings.Split(header, ",")
	entries := make([]Entry, 0, len(metrics))

	for _, metric := range metrics {
		params := strings.Split(metric, ";")
		entry := Entry{Name: params[0]}

		for _, param := range params[1:] {
			key, value, _ := strings.Cut(param, "=")

			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}

			value = strings.Trim(strings.TrimSpace(value), `"`)
			entry.set(key, value)
		}

		entries = append(entries, entry)
	}

	return entries
}

// ParseValues parses every occurrence of a repeated Server-Timing header and
// concatenates the results, occurrences first, metrics within each second.
func ParseValues(values []string) []Entry {
	entries := []Entry{}
	for _, v := range values {
		entries = append(entries, Parse(v)...)
	}
	return entries
}
