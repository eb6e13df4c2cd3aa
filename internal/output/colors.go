package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for different elements in the output
type ColorScheme struct {
	Title       *color.Color
	Subtitle    *color.Color
	Label       *color.Color
	Section     *color.Color
	Leader      *color.Color
	Phase       *color.Color
	Total       *color.Color
	HeaderKey   *color.Color
	Metric      *color.Color
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	Error       *color.Color
	Absent      *color.Color
	Highlight   *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Title:       color.New(color.FgHiMagenta, color.Bold),
		Subtitle:    color.New(color.FgMagenta),
		Label:       color.New(color.FgGreen),
		Section:     color.New(color.FgHiBlack),
		Leader:      color.New(color.FgHiBlack),
		Phase:       color.New(color.FgYellow),
		Total:       color.New(color.FgHiYellow, color.Bold),
		HeaderKey:   color.New(color.FgBlue),
		Metric:      color.New(color.FgMagenta),
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		Error:       color.New(color.FgRed),
		Absent:      color.New(color.FgHiBlack, color.BgRed),
		Highlight:   color.New(color.Bold),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	for _, c := range scheme.all() {
		c.DisableColor()
	}

	return scheme
}

func (s *ColorScheme) all() []*color.Color {
	return []*color.Color{
		s.Title, s.Subtitle, s.Label, s.Section, s.Leader, s.Phase, s.Total,
		s.HeaderKey, s.Metric, s.StatusOK, s.StatusWarn, s.StatusError,
		s.Error, s.Absent, s.Highlight,
	}
}

// Status returns the color for an HTTP status code
func (s *ColorScheme) Status(code int) *color.Color {
	switch {
	case code == 200:
		return s.StatusOK
	case code >= 300 && code < 400:
		return s.StatusWarn
	default:
		return s.StatusError
	}
}

// SuccessIcon returns a checkmark symbol with appropriate color
func SuccessIcon(noColor bool) string {
	if noColor {
		return "✓"
	}
	return color.New(color.FgGreen).Sprint("✓")
}

// ErrorIcon returns an X symbol with appropriate color
func ErrorIcon(noColor bool) string {
	if noColor {
		return "✗"
	}
	return color.New(color.FgRed).Sprint("✗")
}

// WarningIcon returns a warning symbol with appropriate color
func WarningIcon(noColor bool) string {
	if noColor {
		return "⚠"
	}
	return color.New(color.FgYellow).Sprint("⚠")
}
