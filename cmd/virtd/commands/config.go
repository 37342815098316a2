package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-virt/virtd/internal/cli/output"
	"github.com/go-virt/virtd/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect virtd configuration",
	Long: `Inspect virtd's effective configuration, after defaults, config file,
and environment variable overrides have all been applied.`,
}

var showOutput string

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the effective virtd configuration: the result of applying
defaults, then the config file, then VIRTD_* environment variable
overrides.

Examples:
  # Show as YAML (default)
  virtd config show

  # Show as JSON
  virtd config show --output json`,
	RunE: runConfigShow,
}

func init() {
	configShowCmd.Flags().StringVarP(&showOutput, "output", "o", "yaml", "Output format (yaml|json)")
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(showOutput)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, cfg)
	default:
		return output.PrintYAML(os.Stdout, cfg)
	}
}
