// Package output renders command results, errors, notifications and the
// dashboard state for the presale CLI, as text or JSON.
package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format represents the output format.
type Format string

// Output format constants.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// Formatter chooses how command results are written.
type Formatter struct {
	format Format
}

// NewFormatter returns a formatter for an already resolved format.
func NewFormatter(format Format) *Formatter {
	return &Formatter{format: format}
}

// Format returns the resolved format.
func (f *Formatter) Format() Format {
	return f.format
}

// IsJSON reports whether results are written as JSON.
func (f *Formatter) IsJSON() bool {
	return f != nil && f.format == FormatJSON
}

// Result writes v to w as JSON, or lets text render the human form.
func (f *Formatter) Result(w io.Writer, v any, text func(io.Writer) error) error {
	if f.IsJSON() {
		return EncodeJSON(w, v)
	}
	return text(w)
}

// EncodeJSON writes v to w as two-space indented JSON and a newline.
func EncodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DetectFormat resolves FormatAuto: text on a terminal, JSON otherwise.
func DetectFormat(w io.Writer, explicit Format) Format {
	if explicit != FormatAuto {
		return explicit
	}
	if isTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

// DetectColor resolves a color mode (auto, always, never) for w.
func DetectColor(w io.Writer, mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "never":
		return false
	default:
		return isTerminal(w)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: Fd() returns uintptr, safe conversion for term.IsTerminal
}

// ParseFormat parses a format string.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatAuto
	}
}
