package commands

import (
	"context"
	"log/slog"
	"time"

	"ghscraper/internal/components/serviceutil"
	"ghscraper/internal/components/telemetry"
	"ghscraper/internal/export"
	"ghscraper/internal/scrapers/github"

	"github.com/spf13/cobra"
)

var (
	profilesFile  *string
	stargazersUrl *string
	outputPath    *string
	outputFormat  *string
	maxProfiles   *int
	concurrency   *int
	printSummary  *bool
	dumpDir       *string
)

func init() {
	flags := scrapeCmd.Flags()
	profilesFile = flags.String("profiles-file", "", "Path to a text file containing GitHub profile URLs (one per line).")
	stargazersUrl = flags.String("stargazers-url", "", "GitHub repository stargazers URL to discover profiles from.")
	outputPath = flags.String("output", "data/output.json", "Output file path.")
	outputFormat = flags.String("format", string(export.FormatJson), "Output format: json, csv or sqlite.")
	maxProfiles = flags.Int("max-profiles", 0, "Maximum number of profiles to process (0 means no limit).")
	concurrency = flags.Int("concurrency", 0, "Number of profiles fetched at once (defaults to the settings file, then 1).")
	printSummary = flags.Bool("summary", false, "Print a table of the scraped profiles.")
	dumpDir = flags.String("dump-dir", "", "Directory to save every fetched page to, must be empty or missing (overrides the settings file).")

	scrapeCmd.MarkFlagsMutuallyExclusive("profiles-file", "stargazers-url")
	scrapeCmd.MarkFlagsOneRequired("profiles-file", "stargazers-url")

	rootCmd.AddCommand(scrapeCmd)
}

func setupTelemetry(ctx context.Context, settings Settings) func() {
	if !settings.Telemetry.Enabled() {
		return func() {}
	}

	providers, err := telemetry.Setup(ctx, "ghscraper", settings.Telemetry)
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	perfCtx, cancel := context.WithCancel(ctx)
	telemetry.InstrumentPerfStats(perfCtx, 15*time.Second)

	return func() {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		err := providers.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn("failed to shutdown telemetry", "err", err)
		}
	}
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape (--profiles-file <path> | --stargazers-url <url>) [--output <path>] [--format json|csv|sqlite]",
	Short: "Scrapes GitHub profiles and writes the records to a file.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		format, err := export.ParseFormat(*outputFormat)
		if err != nil {
			serviceutil.Fatal("invalid output format", err)
		}

		settings := loadSettings(*configPath)
		if *concurrency > 0 {
			settings.Concurrency = *concurrency
		}
		if *dumpDir != "" {
			settings.DumpDir = *dumpDir
		}

		shutdown := setupTelemetry(ctx, settings)
		defer shutdown()

		tel := telemetry.SlogAPI{}

		opts, err := settings.clientOptions()
		if err != nil {
			serviceutil.Fatal("failed to prepare dump directory", err)
		}
		client, err := github.NewClient(opts, tel)
		if err != nil {
			serviceutil.Fatal("failed to create client", err)
		}
		extractor, err := github.NewExtractor(settings.BaseUrl)
		if err != nil {
			serviceutil.Fatal("failed to create extractor", err)
		}
		scraper := github.NewScraper(client, extractor, tel, settings.Concurrency)

		var profileUrls []string
		if *profilesFile != "" {
			profileUrls, err = scraper.LoadProfileList(*profilesFile)
			if err != nil {
				serviceutil.Fatal("failed to load profile list", err)
			}
		} else {
			profileUrls, err = scraper.DiscoverFromStargazers(ctx, *stargazersUrl, *maxProfiles)
			if err != nil {
				serviceutil.Fatal("failed to discover profiles from stargazers", err)
			}
		}

		if len(profileUrls) == 0 {
			slog.Error("no profile urls to process, exiting")
			return
		}

		start := time.Now()
		profiles, err := scraper.ScrapeProfiles(ctx, profileUrls, *maxProfiles)
		if err != nil {
			serviceutil.Fatal("scrape interrupted", err)
		}
		slog.Info(
			"successfully scraped profiles",
			"count", len(profiles),
			"seconds", time.Since(start).Seconds(),
		)

		err = export.ToFile(ctx, *outputPath, format, profiles)
		if err != nil {
			serviceutil.Fatal("failed to write output", err)
		}

		if *printSummary {
			renderSummary(profiles)
		}

		slog.Info("done", "profiles", len(profiles), "output", *outputPath, "format", format)
	},
}
