package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/mrz1836/presale/internal/notify"
)

// ANSI colors for notification titles.
const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// Terminal prints notifications as they arrive, one per line. Text lines
// carry an icon per kind; JSON lines are notify.Notification objects
// without the timestamp.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
	color  bool
}

// NewTerminal creates a notifier writing to w.
func NewTerminal(w io.Writer, format Format, color bool) *Terminal {
	return &Terminal{w: w, format: format, color: color}
}

// Notify implements notify.Notifier.
func (t *Terminal) Notify(kind notify.Kind, title, description string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.format == FormatJSON {
		line, err := json.Marshal(struct {
			Kind        string `json:"kind"`
			Title       string `json:"title"`
			Description string `json:"description,omitempty"`
		}{kind.String(), title, description})
		if err == nil {
			_, _ = fmt.Fprintln(t.w, string(line))
		}
		return
	}

	icon, color := style(kind)
	if t.color {
		title = color + title + ansiReset
	}
	if description == "" {
		_, _ = fmt.Fprintf(t.w, "%s %s\n", icon, title)
		return
	}
	_, _ = fmt.Fprintf(t.w, "%s %s: %s\n", icon, title, description)
}

func style(kind notify.Kind) (icon, color string) {
	switch kind {
	case notify.Success:
		return "✅", ansiGreen
	case notify.Warning:
		return "⚠️ ", ansiYellow
	case notify.Error:
		return "❌", ansiRed
	case notify.Info:
		return "ℹ️ ", ansiCyan
	default:
		return "•", ""
	}
}
