package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"uniled/boards"
	"uniled/host/config"
)

func newBoardsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List board profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := loadProfiles(a.cfg.Sim.BoardsFile)
			if err != nil {
				return err
			}
			if profiles == nil {
				profiles = boards.Builtin()
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tLED\tDATA\tPOWER\tPIXELS\tBRIGHTNESS\tBAUD\tDESCRIPTION")
			for _, p := range profiles {
				power := "-"
				if p.PowerPin != boards.NoPin {
					power = fmt.Sprint(p.PowerPin)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%d\t%d\t%d\t%s\n",
					p.Name, p.LED, p.DataPin, power, p.PixelCount, p.Brightness, p.Baud, p.Description)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().String(config.FlagBoardsFile, "", "JSON file of board profiles to list instead of the built-in set")
	return cmd
}
