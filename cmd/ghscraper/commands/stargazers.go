package commands

import (
	"fmt"
	"os"

	"ghscraper/internal/components/serviceutil"
	"ghscraper/internal/scrapers/github"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(stargazersCmd)
}

var stargazersCmd = &cobra.Command{
	Use:   "stargazers <stargazers.html>",
	Short: "Lists the profile urls found on a saved stargazers page, one per line.",
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

		profiles, err := extractor.ParseStargazersReader(f)
		if err != nil {
			serviceutil.Fatal("failed to parse page", err)
		}
		for _, p := range profiles {
			fmt.Println(p)
		}
	},
}
