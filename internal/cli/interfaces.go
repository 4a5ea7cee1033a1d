package cli

import (
	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/output"
)

var (
	_ ConfigProvider = (*config.Config)(nil)
	_ LogWriter      = (*config.Logger)(nil)
	_ FormatProvider = (*output.Formatter)(nil)
)

// ConfigProvider is the read-only configuration a command step needs.
type ConfigProvider interface {
	// GetDefaultNetwork returns the network selected at startup.
	GetDefaultNetwork() string

	// GetSync returns the refresh cadence and read timeout.
	GetSync() config.SyncConfig
}

// LogWriter is the logging surface of the HTTP handlers.
type LogWriter interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

// FormatProvider tells how results are written.
type FormatProvider interface {
	Format() output.Format
	IsJSON() bool
}
