package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/presale/internal/chain"
	"github.com/mrz1836/presale/internal/output"
	"github.com/mrz1836/presale/internal/state"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	watchListen  string
	watchUpdates int
)

// watchCmd keeps the dashboard connected and prints every state change.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stay connected and print the dashboard as it changes",
	Long: `Connect the wallet and keep the presale status and your position in sync,
printing the dashboard every time it changes. Notifications, such as a
wallet switching accounts or networks, are printed to stderr as they happen.

With --listen, an HTTP server exposes Prometheus metrics at /metrics, the
current dashboard as JSON at /status and a liveness check at /healthz.`,
	Example: `  presale watch
  presale watch --listen :9464
  presale watch --updates 5 -o json`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	watchCmd.GroupID = groupPresale
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchListen, "listen", "", "serve /metrics, /status and /healthz on this address (default: config metrics.listen)")
	watchCmd.Flags().IntVar(&watchUpdates, "updates", 0, "exit after this many updates (0 runs until interrupted)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cc := GetCmdContext(cmd)

	ctx, stop := signal.NotifyContext(background(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	d, closeFn, err := openDashboard(cmd)
	defer closeFn()
	if err != nil {
		return err
	}

	listen := watchListen
	if listen == "" {
		listen = cc.Cfg.Metrics.Listen
	}
	if listen != "" {
		status := func() output.StatusView { return output.NewStatusView(d.Network(), d.Snapshot()) }
		addr, shutdown, err := serveHTTP(listen, newWatchRouter(cc.Metrics.Handler(), status, cc.Log), cc.Log)
		if err != nil {
			return err
		}
		defer shutdown()
		out(cmd.ErrOrStderr(), "Serving metrics on http://%s/metrics\n", addr)
	}

	updates, cancel := d.Subscribe()
	defer cancel()

	if err := d.Connect(ctx); err != nil {
		return err
	}
	return renderUpdates(ctx, cmd.OutOrStdout(), cc.Fmt, d.Network, updates, watchUpdates)
}

// renderUpdates prints each snapshot whose rendering differs from the last
// one, until ctx is done, updates closes or limit views were printed.
func renderUpdates(
	ctx context.Context,
	w io.Writer,
	f FormatProvider,
	network func() chain.Network,
	updates <-chan state.Snapshot,
	limit int,
) error {
	var last string
	printed := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			view := output.NewStatusView(network(), snap)
			rendered, err := renderView(view, f.IsJSON())
			if err != nil {
				return err
			}
			if rendered == last {
				continue
			}
			last = rendered

			if f.IsJSON() {
				outln(w, rendered)
			} else {
				out(w, "[%s]\n%s\n\n", time.Now().Format(time.TimeOnly), rendered)
			}

			printed++
			if limit > 0 && printed >= limit {
				return nil
			}
		}
	}
}

// renderView returns one JSON line or the text form of view.
func renderView(view output.StatusView, asJSON bool) (string, error) {
	if !asJSON {
		return view.String(), nil
	}
	data, err := json.Marshal(view)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
