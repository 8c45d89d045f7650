package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/codecritic/internal/checks"
	"github.com/dshills/codecritic/internal/config"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Report which local checkers are available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		statuses := checks.NewSet(checkOptions(cfg, nil)).Detect(ctx)

		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		missing := 0
		for _, st := range statuses {
			state := green.Sprint("ok")
			if !st.Available {
				state = red.Sprint("missing")
				missing++
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", st.Language, st.Tool, state, st.Detail)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if missing > 0 {
			fmt.Fprintf(os.Stderr, "%d checker(s) unavailable; their results will carry a not-installed marker\n", missing)
		}
		return nil
	},
}
