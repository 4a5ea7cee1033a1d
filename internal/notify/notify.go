// Package notify is the outcome-reporting boundary: the core calls a Notifier
// with a kind, a short title and a description, and never reads anything back.
package notify

import (
	"sync"
	"time"
)

// Kind is the severity of a notification.
type Kind int

// Notification kinds.
const (
	Info Kind = iota
	Success
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Notifier receives fire-and-forget notifications.
type Notifier interface {
	Notify(kind Kind, title, description string)
}

// Func adapts a function to Notifier.
type Func func(kind Kind, title, description string)

// Notify implements Notifier.
func (f Func) Notify(kind Kind, title, description string) { f(kind, title, description) }

// Discard drops every notification.
var Discard Notifier = Func(func(Kind, string, string) {}) //nolint:gochecknoglobals // stateless no-op

// Multi fans a notification out to several notifiers in order.
func Multi(notifiers ...Notifier) Notifier {
	out := make([]Notifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return Func(func(kind Kind, title, description string) {
		for _, n := range out {
			n.Notify(kind, title, description)
		}
	})
}

// LogWriter is the logging surface used by Log.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// Log writes notifications to a log: errors and warnings at error level,
// the rest at debug level.
func Log(l LogWriter) Notifier {
	return Func(func(kind Kind, title, description string) {
		if kind == Error || kind == Warning {
			l.Error("notify %s: %s: %s", kind, title, description)
			return
		}
		l.Debug("notify %s: %s: %s", kind, title, description)
	})
}

// Notification is one recorded call.
type Notification struct {
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
}

// Recorder keeps notifications in memory, for JSON output and inspection.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(kind Kind, title, description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{
		Kind:        kind.String(),
		Title:       title,
		Description: description,
		Time:        time.Now().UTC(),
	})
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Titles returns the recorded titles in order.
func (r *Recorder) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.items))
	for i, n := range r.items {
		out[i] = n.Title
	}
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
