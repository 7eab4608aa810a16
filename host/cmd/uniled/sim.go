package main

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"uniled/boards"
	"uniled/host/config"
	"uniled/host/sim"
)

func newSimCmd(a *app) *cobra.Command {
	var (
		input  string
		linger time.Duration
		ansi   bool
	)

	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Run the firmware command loop on this machine",
		Long: `Reads command lines from stdin (or --input), answers them on stdout exactly
as a board would, and draws the LED on stderr.`,
		Example: `  printf 'ON\nBLINK1,255,0,0,200\n' | uniled sim --board xiao-rp2040 --linger 2s`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := loadProfiles(a.cfg.Sim.BoardsFile)
			if err != nil {
				return err
			}
			profile, err := boards.Lookup(a.cfg.Sim.Board, profiles)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if input != "" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			s, err := sim.New(sim.Options{
				Profile:  profile,
				Output:   cmd.OutOrStdout(),
				Renderer: sim.NewRenderer(cmd.ErrOrStderr(), profile.Name, ansi),
				Linger:   linger,
			})
			if err != nil {
				return err
			}

			m, stop := a.startMetrics(cmd.Context())
			defer stop()
			if m != nil {
				m.RegisterHandler(s.Handler())
			}

			err = s.Run(cmd.Context(), in)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	defaults := config.Default()
	cmd.Flags().String(config.FlagBoard, defaults.Sim.Board, "Board profile to simulate")
	cmd.Flags().String(config.FlagBoardsFile, "", "JSON file of extra board profiles")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Read commands from this file instead of stdin")
	cmd.Flags().DurationVar(&linger, "linger", 0, "Keep animating this long after the input ends")
	cmd.Flags().BoolVar(&ansi, "ansi", false, "Draw the LED in 24-bit color")
	return cmd
}
