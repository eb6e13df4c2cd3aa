// Package config loads perfo profiles: YAML files holding default values for
// command-line flags.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/perfo/internal/http"
	"github.com/wesleyorama2/perfo/pkg/jsonschema"
)

// DefaultFileName is looked up in the home directory when no profile is given
const DefaultFileName = ".perfo.yaml"

// ErrInvalidConfig wraps every profile that cannot be loaded.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed schema.json
var profileSchemaJSON string

var profileSchema = jsonschema.MustCompile("perfo-profile.json", profileSchemaJSON)

// Profile holds configured defaults. Nil fields were not set in the file.
type Profile struct {
	Requests         *int              `yaml:"requests"`
	Timeout          string            `yaml:"timeout"`
	Encoding         *string           `yaml:"encoding"`
	BrowserUserAgent *bool             `yaml:"browserUserAgent"`
	UserAgent        string            `yaml:"userAgent"`
	HTTPVersion      string            `yaml:"httpVersion"`
	VerifyTLS        *bool             `yaml:"verifyTls"`
	FollowRedirects  *bool             `yaml:"followRedirects"`
	Reuse            *bool             `yaml:"reuse"`
	ServerTiming     *bool             `yaml:"serverTiming"`
	OutputHeaders    *bool             `yaml:"outputHeaders"`
	Format           string            `yaml:"format"`
	NoColor          *bool             `yaml:"noColor"`
	Headers          map[string]string `yaml:"headers"`

	// Path is the file the profile was read from, empty for built-in defaults
	Path string `yaml:"-"`
}

// DefaultPath returns $HOME/.perfo.yaml, or "" when the home directory is
// unknown
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultFileName)
}

// Discover loads the explicit profile when one is given. Otherwise it loads
// the default profile if that file exists, and returns an empty profile if
// it does not.
func Discover(explicit string) (*Profile, error) {
	if explicit != "" {
		return Load(explicit)
	}

	path := DefaultPath()
	if path == "" {
		return &Profile{}, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return &Profile{}, nil
	}
	return Load(path)
}

// Load reads and validates a profile file
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: config file not found: %s", ErrInvalidConfig, path)
		}
		return nil, fmt.Errorf("%w: error reading config file: %v", ErrInvalidConfig, err)
	}

	profile, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	profile.Path = path
	return profile, nil
}

// Parse decodes a YAML profile, validates it against the profile schema and
// then checks values the schema cannot express.
func Parse(data []byte) (*Profile, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: error parsing config file: %v", ErrInvalidConfig, err)
	}

	// An empty file is an empty profile
	if doc == nil {
		return &Profile{}, nil
	}

	if errs := profileSchema.ValidateValue(doc); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, errs)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: error parsing config file: %v", ErrInvalidConfig, err)
	}

	if errs := ValidateProfile(&profile); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, joinErrors(errs))
	}

	return &profile, nil
}

// TimeoutDuration returns the parsed timeout, zero when unset
func (p *Profile) TimeoutDuration() time.Duration {
	if p.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(p.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Apply copies every value set in the profile onto opts
func (p *Profile) Apply(opts *http.RequestOptions) {
	if p.Encoding != nil {
		opts.Encoding = *p.Encoding
	}
	if p.BrowserUserAgent != nil && *p.BrowserUserAgent {
		opts.UserAgent = http.BrowserUserAgent
	}
	if p.UserAgent != "" {
		opts.UserAgent = p.UserAgent
	}
	if p.HTTPVersion != "" {
		if v, err := http.ParseHTTPVersion(p.HTTPVersion); err == nil {
			opts.HTTPVersion = v
		}
	}
	if p.VerifyTLS != nil {
		opts.VerifyTLS = *p.VerifyTLS
	}
	if p.FollowRedirects != nil {
		opts.FollowRedirects = *p.FollowRedirects
	}
	if p.Reuse != nil {
		opts.Reuse = *p.Reuse
	}
	if d := p.TimeoutDuration(); d > 0 {
		opts.Timeout = d
	}
	if len(p.Headers) > 0 {
		headers := make(map[string]string, len(opts.Headers)+len(p.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		for k, v := range p.Headers {
			headers[k] = v
		}
		opts.Headers = headers
	}
}
