package commands

import (
	"os"

	"ghscraper/internal/components/serviceutil"
	"ghscraper/internal/export"
	"ghscraper/internal/scrapers/github"

	"github.com/spf13/cobra"
)

var parseUrl *string

func init() {
	parseUrl = parseCmd.Flags().String("url", "", "The url recorded as the profile's user field.")
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <profile.html> [--url <profile url>]",
	Short: "Extracts a profile record from a saved profile page and prints it as json.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		settings := loadSettings(*configPath)
		extractor, err := github.NewExtractor(settings.BaseUrl)
		if err != nil {
			serviceutil.Fatal("failed to create extractor", err)
		}

		f, err := os.Open(args[0])
		if err != nil {
			serviceutil.Fatal("failed to open page", err)
		}
		defer f.Close()

		profile, err := extractor.ParseProfileReader(f, *parseUrl)
		if err != nil {
			serviceutil.Fatal("failed to parse page", err)
		}

		err = export.WriteJson(os.Stdout, []github.Profile{profile})
		if err != nil {
			serviceutil.Fatal("failed to write profile", err)
		}
	},
}
