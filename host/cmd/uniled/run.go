package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"uniled/host/logging"
	"uniled/host/script"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		delay       time.Duration
		stopOnError bool
		watch       bool
	)

	cmd := &cobra.Command{
		Use:   "run SCRIPT",
		Short: "Send every command in a script file",
		Long: `Sends the commands in SCRIPT one at a time, waiting for each response.
Lines starting with # are comments and "sleep <duration>" pauses the run.
With --watch the script is sent again every time the file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			logger := logging.GetLogger("script")
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			c, err := a.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			m, stop := a.startMetrics(ctx)
			defer stop()

			opts := script.Options{
				Delay:       delay,
				StopOnError: stopOnError,
				Report: func(r script.Result) {
					printResult(out, r.Step.Command, r.Response, r.Err)
				},
			}
			runOnce := func() error {
				steps, err := script.ParseFile(path)
				if err != nil {
					return err
				}
				logger.Info("Running script", "path", path, "steps", len(steps))
				return script.Run(ctx, sender(c, m), steps, opts)
			}

			if !watch {
				return runOnce()
			}

			if err := runOnce(); err != nil {
				logger.Warn("Script run failed", "error", err)
			}
			err = script.Watch(ctx, path, script.DefaultDebounce, func() {
				if err := runOnce(); err != nil {
					logger.Warn("Script run failed", "error", err)
				}
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 0, "Pause after every command")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop at the first failed command")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Run again whenever the script changes")
	return cmd
}
