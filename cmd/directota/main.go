package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rescp17/directOTA/internal/config"
)

func main() {
	cmd := &cobra.Command{
		Use:          "directota",
		Short:        "Push firmware images to ESP devices over the network",
		SilenceUsage: true,
	}

	cmd.AddCommand(newFlashCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newInspectCmd())

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

// targetFlags are the operator inputs shared by flash and validate.
type targetFlags struct {
	configPath    string
	ip            string
	port          int
	binPath       string
	disableScript bool
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "JSON or YAML file with ip, port, bin_path and disable_script")
	cmd.Flags().StringVar(&f.ip, "ip", "", "IPv4 address of the device")
	cmd.Flags().IntVarP(&f.port, "port", "p", config.DefaultPort, "OTA port of the device (3232 or 8266)")
	cmd.Flags().StringVarP(&f.binPath, "bin", "b", "", "firmware image (.bin)")
	cmd.Flags().BoolVar(&f.disableScript, "disable-script", false, "skip the OTA without touching the network")
}

// settings loads the config file, if any, and lets explicitly set flags win.
func (f *targetFlags) settings(cmd *cobra.Command) (config.Settings, error) {
	s := config.Default()
	if f.configPath != "" {
		var err error
		if s, err = config.Load(f.configPath); err != nil {
			return config.Settings{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("ip") {
		s.IP = f.ip
	}
	if flags.Changed("port") {
		s.Port = f.port
	}
	if flags.Changed("bin") {
		s.BinPath = f.binPath
	}
	if flags.Changed("disable-script") {
		s.DisableScript = f.disableScript
	}
	return s, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// setupLogging points the default logger at debug.log while the TUI owns the
// terminal, and at stderr otherwise. The returned closer must be called on exit.
func setupLogging(tui, verbose bool) (io.Closer, error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	if !tui {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		return closerFunc(func() error { return nil }), nil
	}

	f, err := os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return f, nil
}
