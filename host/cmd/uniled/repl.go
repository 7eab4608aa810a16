package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const replHelp = `Commands:
  ON | OFF
  COLOR,r,g,b
  BLINK1,r,g,b,interval
  BLINK2,r1,g1,b1,r2,g2,b2,interval
  RAINBOW,interval
  check LINE     validate LINE without sending it
  help           show this text
  quit           leave
`

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Type commands interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.connect()
			if err != nil {
				return err
			}
			defer c.Close()

			m, stop := a.startMetrics(cmd.Context())
			defer stop()
			s := sender(c, m)

			out := cmd.OutOrStdout()
			return repl(cmd.InOrStdin(), out, func(line string) {
				resp, err := s.Send(cmd.Context(), line)
				printResult(out, line, resp, err)
			})
		},
	}
}

// repl reads lines from in until EOF or quit, handing commands to send
func repl(in io.Reader, out io.Writer, send func(string)) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "quit" || line == "exit" || line == "q":
			return nil
		case line == "help" || line == "?":
			fmt.Fprint(out, replHelp)
		case strings.HasPrefix(line, "check "):
			fmt.Fprintln(out, checkLine(strings.TrimPrefix(line, "check ")).String())
		default:
			send(line)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}
