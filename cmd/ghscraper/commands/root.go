package commands

import (
	"context"
	"fmt"
	"os"

	"ghscraper/internal/components/configutil"
	"ghscraper/internal/components/telemetry"

	"github.com/spf13/cobra"
)

var (
	logLevel   *string
	configPath *string
)

func init() {
	logLevel = rootCmd.PersistentFlags().String("log-level", "INFO", "Logging level: DEBUG, INFO, WARNING, ERROR or CRITICAL.")
	configPath = rootCmd.PersistentFlags().String("config", "settings.json5", "Path to the settings file.")
}

var rootCmd = &cobra.Command{
	Use:   "ghscraper",
	Short: "ghscraper scrapes profile metadata and contribution signals from GitHub profile pages.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := telemetry.ParseLevel(*logLevel)
		if err != nil {
			return err
		}
		telemetry.InitSlog(os.Stderr, level)

		return configutil.LoadEnv()
	},
	SilenceUsage: true,
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
