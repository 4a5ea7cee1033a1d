package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/config"
	"github.com/mrz1836/presale/internal/dashboard"
	"github.com/mrz1836/presale/internal/output"
	presaleerr "github.com/mrz1836/presale/pkg/errors"
)

// openDashboard builds a dashboard on the selected network. Notifications are
// printed to the command's stderr as they arrive. The returned close func is
// never nil.
func openDashboard(cmd *cobra.Command) (*dashboard.Dashboard, func(), error) {
	cc := GetCmdContext(cmd)
	if cc == nil {
		return nil, func() {}, presaleerr.WithMessage(presaleerr.ErrGeneral, "command context is not initialized")
	}

	provider, closeProvider, err := cc.OpenProvider(cmd.Context(), cc.Cfg)
	if err != nil {
		return nil, func() {}, err
	}

	stderr := cmd.ErrOrStderr()
	term := output.NewTerminal(stderr, cc.Fmt.Format(), output.DetectColor(stderr, cc.Cfg.Output.Color))

	d, err := dashboard.New(cmd.Context(), dashboard.Options{
		App:      cc.Cfg,
		Provider: provider,
		Dial:     cc.Dial,
		Notifier: term,
		Metrics:  cc.Metrics,
		Logger:   cc.Log,
	})
	if err != nil {
		closeProvider()
		return nil, func() {}, err
	}
	return d, func() {
		d.Close()
		closeProvider()
	}, nil
}

// connectAndLoad connects the wallet and loads every batch once, so the
// snapshot is complete when it returns.
func connectAndLoad(cmd *cobra.Command, d *dashboard.Dashboard) error {
	if err := d.Connect(cmd.Context()); err != nil {
		return err
	}
	ctx, cancel := contextWithTimeout(cmd, loadTimeout(GetCmdContext(cmd).Cfg))
	defer cancel()
	return d.Refresh(ctx)
}

// loadTimeout bounds the initial load: static, then dynamic and user.
func loadTimeout(c ConfigProvider) time.Duration {
	timeout := c.GetSync().ReadTimeout
	if timeout <= 0 {
		timeout = config.DefaultReadTimeout
	}
	return 2 * timeout
}

// background returns the command context, or a background context.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// contextWithTimeout bounds a command step without detaching it from the
// command's cancellation.
func contextWithTimeout(cmd *cobra.Command, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(background(cmd), d)
}
