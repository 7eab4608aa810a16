package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"uniled/boards"
	"uniled/host/client"
	"uniled/host/config"
	"uniled/host/logging"
	"uniled/host/metrics"
	"uniled/host/serial"
	"uniled/protocol"
)

// app carries the resolved settings shared by every subcommand
type app struct {
	configPath  string
	metricsAddr string
	cfg         config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "uniled",
		Short: "Control and simulate uniled boards",
		Long: `uniled talks to boards running the uniled firmware over their serial port.
Commands are plain text lines such as ON, COLOR,255,0,0 or RAINBOW,50.
The sim subcommand runs the firmware command loop locally.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	defaults := config.Default()
	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Path to configuration file (.toml, .yaml)")
	pf.StringP(config.FlagDevice, "d", defaults.Device, "Serial device")
	pf.Int(config.FlagBaud, defaults.Baud, "Baud rate")
	pf.Duration(config.FlagTimeout, defaults.Timeout(), "How long to wait for each response")
	pf.String(config.FlagLogLevel, defaults.Logging.Level, "Logging level (debug, info, warn, error)")
	pf.String(config.FlagLogFormat, defaults.Logging.Format, "Logging format (text, json)")
	pf.StringVar(&a.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9100")

	root.AddCommand(
		newSendCmd(a),
		newReplCmd(a),
		newRunCmd(a),
		newSimCmd(a),
		newBoardsCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup merges defaults, config file, environment and flags, then starts logging
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg
	logging.Initialize(cfg.Logging)
	logging.GetLogger("main").Debug("Configuration resolved",
		"device", cfg.Device, "baud", cfg.Baud, "timeout", cfg.Timeout())
	return nil
}

// connect opens the configured serial device
func (a *app) connect() (*client.Client, error) {
	sc := serial.DefaultConfig(a.cfg.Device)
	sc.Baud = a.cfg.Baud

	port, err := serial.Open(sc)
	if err != nil {
		return nil, err
	}
	logging.GetLogger("main").Info("Connected", "device", a.cfg.Device, "baud", a.cfg.Baud)
	return client.New(port, client.WithTimeout(a.cfg.Timeout())), nil
}

// startMetrics serves metrics when --metrics-addr is set. The returned
// Metrics is nil otherwise. stop shuts the server down and waits for it.
func (a *app) startMetrics(ctx context.Context) (m *metrics.Metrics, stop func()) {
	if a.metricsAddr == "" {
		return nil, func() {}
	}

	m = metrics.New()
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := m.Serve(ctx, a.metricsAddr); err != nil {
			logging.GetLogger("metrics").Error("Metrics server failed", "error", err)
		}
	}()
	return m, func() {
		cancel()
		<-done
	}
}

// sender instruments c when metrics are enabled
func sender(c *client.Client, m *metrics.Metrics) metrics.Sender {
	if m == nil {
		return c
	}
	return m.Instrument(c)
}

// loadProfiles reads a boards file, or returns nil for the built-in set
func loadProfiles(path string) ([]boards.Profile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	profiles, err := boards.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}

// printResult writes the response line for one command, or the error when
// no response arrived. It reports whether the command was accepted.
func printResult(w io.Writer, line string, resp protocol.Response, err error) bool {
	switch {
	case err == nil:
		fmt.Fprintln(w, resp.String())
		return true
	case resp.Body != "" || resp.Overflow:
		fmt.Fprintln(w, resp.String())
	default:
		fmt.Fprintf(w, "%s: %v\n", line, err)
	}
	return false
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the protocol version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "uniled protocol %s\n", protocol.Version)
		},
	}
}
