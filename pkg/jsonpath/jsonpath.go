// Package jsonpath selects values from perfo JSON reports. Paths are either
// JSONPath-style ($.timing.phases[5].stats.p95) or native gjson syntax
// (timing.phases.#(name=="Total").stats.p95).
package jsonpath

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Selection is the value found at one path.
type Selection struct {
	Path  string
	Value string
}

// Select returns the value at path. Strings are returned unquoted, objects
// and arrays as raw JSON.
func Select(doc []byte, path string) (string, error) {
	if len(doc) == 0 {
		return "", fmt.Errorf("empty JSON document")
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("empty path expression")
	}
	if !gjson.ValidBytes(doc) {
		return "", fmt.Errorf("invalid JSON document")
	}

	result := gjson.GetBytes(doc, convertToGjsonPath(path))
	if !result.Exists() {
		return "", fmt.Errorf("path not found: %s", path)
	}

	switch result.Type {
	case gjson.Null:
		return "null", nil
	case gjson.JSON:
		return result.Raw, nil
	default:
		return result.String(), nil
	}
}

// SelectAll selects every path in order. Paths that fail are reported
// together; the selections that succeeded are still returned.
func SelectAll(doc []byte, paths []string) ([]Selection, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no path expressions provided")
	}

	selections := make([]Selection, 0, len(paths))
	var errors []string

	for _, path := range paths {
		value, err := Select(doc, path)
		if err != nil {
			errors = append(errors, err.Error())
			continue
		}
		selections = append(selections, Selection{Path: path, Value: value})
	}

	if len(errors) > 0 {
		return selections, fmt.Errorf("selection errors: %s", strings.Join(errors, "; "))
	}
	return selections, nil
}

// convertToGjsonPath converts a JSONPath expression to gjson syntax. Paths
// without a leading $ are assumed to be gjson already.
func convertToGjsonPath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "$") {
		return path
	}

	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	if path == "" {
		return "@this"
	}

	// $['name'] and $["name"]
	for _, quote := range []string{"'", `"`} {
		path = strings.ReplaceAll(path, "["+quote, ".")
		path = strings.ReplaceAll(path, quote+"]", "")
	}

	// items[0] -> items.0
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")

	return strings.TrimPrefix(path, ".")
}
