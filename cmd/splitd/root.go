// Package main is the splitd CLI entrypoint: a single cobra root
// command (no subcommands — this appliance has exactly one
// long-running mode) that binds flags through viper into
// internal/config, wires up logging and metrics, and hands off to the
// supervisor.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/svenno/splitgo/dhcp"
	"github.com/svenno/splitgo/digest"
	"github.com/svenno/splitgo/internal/applog"
	"github.com/svenno/splitgo/internal/config"
	"github.com/svenno/splitgo/internal/metrics"
	"github.com/svenno/splitgo/registrar"
	"github.com/svenno/splitgo/sipproxy"
	"github.com/svenno/splitgo/supervisor"
)

var v = viper.New()

var rootCmd = &cobra.Command{
	Use:   "splitd",
	Short: "A small-footprint SIP proxy/redirect server and DHCP lease responder",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func init() {
	config.BindFlags(rootCmd.Flags(), v)
}

// Execute runs the root command and maps startup failures to the
// appliance's fail-fast exit codes: config errors and bind failures
// both exit non-zero after logging, per the error-handling design's
// "fail fast at startup" disposition.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "splitd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}

	log := applog.New(applog.Sink(cfg.LogPath), cfg.Debug)
	transcript := applog.New(applog.Sink(cfg.SIP.TranscriptLogPath), cfg.Debug)
	metrics.Serve(cfg.MetricsAddr, log)

	sup := supervisor.New(log)

	store := registrar.New()
	nonces := digest.NewNonces(time.Now().UnixNano())
	dispatcher := sipproxy.NewDispatcher(&cfg, store, nonces, log, transcript)
	sup.Register("sip", sipproxy.New(&cfg, dispatcher, log))

	if cfg.DHCP.Enabled {
		leases := dhcp.NewStore(cfg.DHCP.LeasesFile)
		if err := leases.Load(log); err != nil {
			log.Error("failed to load dhcp leases file", "error", err)
		}
		sup.Register("dhcp", dhcp.New(&cfg, leases, log))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sup.Run(ctx)
}
