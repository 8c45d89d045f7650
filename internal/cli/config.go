package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/codecritic/internal/cache"
	"github.com/dshills/codecritic/internal/config"
	"github.com/dshills/codecritic/internal/providers"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage codecritic configuration",
}

// seedProvider picks the first hosted provider whose key is already in the
// environment, so a fresh config works without editing.
func seedProvider() string {
	for _, name := range []string{providers.OpenRouter, providers.OpenAI, providers.Anthropic} {
		if os.Getenv(providers.APIKeyEnv(name)) != "" {
			return name
		}
	}
	return providers.OpenRouter
}

// toolTable lists the configured local binaries and whether each resolves.
func toolTable(w io.Writer, tools config.ToolsConfig) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range []struct{ role, bin string }{
		{"python compile", tools.Python},
		{"python lint", tools.Pylint},
		{"java", tools.Javac},
		{"c++", tools.CXX},
	} {
		where := "not found"
		if p, err := checkRunner.LookPath(t.bin); err == nil {
			where = p
		}
		fmt.Fprintf(tw, "#   %s\t%s\t%s\n", t.role, t.bin, where)
	}
	fmt.Fprintf(tw, "#   prose\tLanguageTool\t%s\n", tools.LanguageToolURL)
	return tw.Flush()
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config seeded from the environment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Config file already exists at %s\n", path)
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}

		cfg := config.Default()
		cfg.Provider = seedProvider()
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Config file created at %s\n", path)
		fmt.Fprintf(out, "Provider %s (model %s), key read from $%s\n",
			cfg.Provider, providers.DefaultModel(cfg.Provider), cfg.KeyEnv())
		return toolTable(out, cfg.Tools)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Keys: " + strings.Join(config.Keys, ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		// The file may be partial, so the value is validated on its own
		// against defaults before it touches the file.
		candidate := config.Default()
		if err := config.SetField(&candidate, key, value); err != nil {
			return err
		}
		if err := config.Validate(candidate); err != nil {
			return err
		}

		cfg, err := config.LoadFile()
		if err != nil || cfg.Provider == "" {
			cfg = config.Default()
		}
		if err := config.SetField(&cfg, key, value); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration and what it resolves to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, string(data))

		model := cfg.Model
		if model == "" {
			model = providers.DefaultModel(cfg.Provider)
		}
		endpoint := cfg.BaseURL
		if endpoint == "" {
			endpoint = providers.DefaultBaseURL(cfg.Provider)
		}
		fmt.Fprintf(out, "# resolved\n")
		fmt.Fprintf(out, "#   model     %s\n", model)
		fmt.Fprintf(out, "#   endpoint  %s\n", endpoint)
		fmt.Fprintf(out, "#   api key   $%s (set: %t)\n", cfg.KeyEnv(), cfg.APIKey() != "")
		if cfg.Cache.Enabled {
			dir := cfg.Cache.Dir
			if dir == "" {
				dir, _ = cache.DefaultDir()
			}
			fmt.Fprintf(out, "#   cache     %s\n", dir)
		} else {
			fmt.Fprintf(out, "#   cache     off\n")
		}
		fmt.Fprintf(out, "# tools\n")
		return toolTable(out, cfg.Tools)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
