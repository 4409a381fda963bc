package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rescp17/directOTA/internal/config"
	"github.com/rescp17/directOTA/internal/style"
	"github.com/rescp17/directOTA/internal/util"
	"github.com/rescp17/directOTA/pkg/sender"
	"github.com/rescp17/directOTA/pkg/transfer"
	"github.com/rescp17/directOTA/pkg/ui"
)

type flashOptions struct {
	target        targetFlags
	plain         bool
	verbose       bool
	acceptTimeout time.Duration
	ioTimeout     time.Duration
	probeTTL      int
}

func newFlashCmd() *cobra.Command {
	opts := &flashOptions{}
	cmd := &cobra.Command{
		Use:   "flash",
		Short: "Identify the device and push the firmware image to it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlash(cmd, opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func (opts *flashOptions) register(cmd *cobra.Command) {
	opts.target.register(cmd)
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "print progress lines instead of the interactive view")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug details")
	cmd.Flags().DurationVar(&opts.acceptTimeout, "accept-timeout", 0, "give up if the device does not connect back in time (0 waits forever)")
	cmd.Flags().DurationVar(&opts.ioTimeout, "io-timeout", 0, "per-chunk send and ack timeout (0 waits forever)")
	cmd.Flags().IntVar(&opts.probeTTL, "probe-ttl", 0, "IP TTL of the identify datagram (0 keeps the OS default)")
}

// transferConfig builds the engine configuration from the settings file and
// the flags set on cmd.
func (opts *flashOptions) transferConfig(cmd *cobra.Command, settings config.Settings) *transfer.Config {
	cfg := transfer.DefaultConfig()
	settings.Apply(cfg)
	if cmd.Flags().Changed("probe-ttl") {
		cfg.ProbeTTL = opts.probeTTL
	}
	cfg.AcceptTimeout = opts.acceptTimeout
	cfg.IOTimeout = opts.ioTimeout
	return cfg
}

func runFlash(cmd *cobra.Command, opts *flashOptions) error {
	settings, err := opts.target.settings(cmd)
	if err != nil {
		return err
	}
	req := settings.Request()

	tui := !opts.plain && isTerminal(os.Stdout)
	closer, err := setupLogging(tui, opts.verbose)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			slog.Warn("failed to close log file", "error", err)
		}
	}()

	app, err := sender.NewApp(opts.transferConfig(cmd, settings), nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		g      errgroup.Group
		report *sender.Report
	)
	g.Go(func() error {
		var err error
		report, err = app.Run(ctx, req)
		return err
	})
	g.Go(func() error {
		if !tui {
			ui.PrintMessages(ctx, cmd.OutOrStdout(), app.UIMessages())
			return nil
		}
		p := tea.NewProgram(ui.InitialModel(app, req.Target(), cancel), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			cancel()
			return fmt.Errorf("ui: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, transfer.ErrDisabled) {
		fmt.Fprintln(cmd.OutOrStdout(), "OTA skipped: disable_script is set")
		return nil
	}
	if err != nil {
		return err
	}
	if tui {
		fmt.Fprintln(cmd.OutOrStdout(), style.SuccessStyle.Render(fmt.Sprintf(
			"OTA done: %s sent to %s in %s", util.FormatSize(report.BytesSent), report.Device, util.FormatDuration(report.Duration))))
	}
	return nil
}
