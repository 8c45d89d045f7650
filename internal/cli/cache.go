package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/codecritic/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the model reply cache",
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache location and size",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		store, err := openCache(cfg)
		if err != nil {
			return err
		}
		stats, err := store.Stats()
		if err != nil {
			return err
		}
		state := "disabled"
		if cfg.Cache.Enabled {
			state = "enabled"
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Cache:   %s (ttl %ds)\n", state, cfg.Cache.TTLSeconds)
		fmt.Fprintf(out, "Dir:     %s\n", stats.Dir)
		fmt.Fprintf(out, "Entries: %d (%d expired)\n", stats.Entries, stats.Expired)
		fmt.Fprintf(out, "Size:    %d bytes\n", stats.TotalBytes)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached reply",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		store, err := openCache(cfg)
		if err != nil {
			return err
		}
		n, err := store.Clear()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached replies from %s\n", n, store.Dir())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
