package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"uniled/core"
	"uniled/protocol"
)

func newSendCmd(a *app) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "send COMMAND...",
		Short: "Send commands to the board",
		Long: `Sends each argument as one command line and prints the board's response.
With --check the commands are validated locally and nothing is sent.`,
		Example: `  uniled send ON
  uniled send COLOR,255,0,0 BLINK2,255,0,0,0,0,255,250
  uniled send --check RAINBOW,0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if check {
				return checkCommands(out, args)
			}

			c, err := a.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			m, stop := a.startMetrics(cmd.Context())
			defer stop()
			s := sender(c, m)

			failed := 0
			for _, line := range args {
				resp, err := s.Send(cmd.Context(), line)
				if !printResult(out, line, resp, err) {
					failed++
				}
				if ctxErr := cmd.Context().Err(); ctxErr != nil {
					return ctxErr
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d commands failed", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Validate the commands locally instead of sending them")
	return cmd
}

// checkCommands prints the response the firmware would give each line
func checkCommands(w io.Writer, lines []string) error {
	failed := 0
	for _, line := range lines {
		resp := checkLine(line)
		fmt.Fprintln(w, resp.String())
		if !resp.Accepted {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d commands invalid", failed, len(lines))
	}
	return nil
}

func checkLine(line string) protocol.Response {
	line = strings.TrimSpace(line)
	if len(line) > protocol.MaxLineLength {
		return protocol.Response{Overflow: true, Body: protocol.OverflowToken, Reason: protocol.OverflowReason}
	}
	cmd, err := core.ParseCommand(line)
	if err != nil {
		reason := core.ReasonUnknownCommand
		var rej *core.RejectError
		if errors.As(err, &rej) {
			reason = rej.Reason
		}
		return protocol.Response{Body: line, Reason: reason}
	}
	return protocol.Response{Accepted: true, Body: cmd.String()}
}
