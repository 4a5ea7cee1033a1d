package refresh

import (
	"time"

	"github.com/mrz1836/presale/internal/notify"
)

// Notification titles for refresh failures.
const (
	TitleStaticFailed  = "Error Fetching Presale Config"
	TitleDynamicFailed = "Error Fetching Presale Status"
)

// Config contains dependencies for creating a refresh service.
type Config struct {
	Store    StateStore
	Readers  ReaderFactory
	Notifier notify.Notifier
	Metrics  MetricsRecorder
	Logger   LogWriter

	// DynamicInterval and UserInterval are the loop periods. Zero selects
	// the config package defaults.
	DynamicInterval time.Duration
	UserInterval    time.Duration

	// ReadTimeout bounds a single refresh. Zero means no bound beyond the
	// caller's context.
	ReadTimeout time.Duration
}

type nopMetrics struct{}

func (nopMetrics) RecordRefresh(string, string, time.Duration) {}
