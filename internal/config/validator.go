package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wesleyorama2/perfo/internal/http"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateProfile checks the values the profile schema cannot express
func ValidateProfile(p *Profile) []ValidationError {
	var errors []ValidationError

	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			errors = append(errors, ValidationError{
				Path:    "timeout",
				Message: fmt.Sprintf("invalid duration: %s", p.Timeout),
			})
		} else if d <= 0 {
			errors = append(errors, ValidationError{
				Path:    "timeout",
				Message: "timeout must be positive",
			})
		}
	}

	if p.HTTPVersion != "" {
		if _, err := http.ParseHTTPVersion(p.HTTPVersion); err != nil {
			errors = append(errors, ValidationError{
				Path:    "httpVersion",
				Message: err.Error(),
			})
		}
	}

	if p.UserAgent != "" && p.BrowserUserAgent != nil && *p.BrowserUserAgent {
		errors = append(errors, ValidationError{
			Path:    "userAgent",
			Message: "userAgent and browserUserAgent are mutually exclusive",
		})
	}

	names := make([]string, 0, len(p.Headers))
	for name := range p.Headers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, ": \t") {
			errors = append(errors, ValidationError{
				Path:    fmt.Sprintf("headers.%s", name),
				Message: "invalid header name",
			})
		}
	}

	return errors
}

func joinErrors(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}
