// scraper.go drives client.go and the extractors over a list of profiles.

package github

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"ghscraper/internal/components/assert"
	"ghscraper/internal/components/telemetry"

	"golang.org/x/sync/errgroup"
)

const (
	report_scraper_load_profile_list = "scraper.load-profile-list"
	report_scraper_discover          = "scraper.discover"
	report_scraper_scrape_profile    = "scraper.scrape-profile"
	report_scraper_profiles_scraped  = "scraper.profiles-scraped"
)

var ErrProfileListNotFound = errors.New("profile list not found")

// Fetcher retrieves raw pages, *Client is the production implementation.
type Fetcher interface {
	FetchProfile(ctx context.Context, profileUrl string) (string, error)
	FetchStargazerPages(ctx context.Context, stargazersUrl string, yield func(markup string) bool) error
}

type Scraper struct {
	fetcher     Fetcher
	extractor   Extractor
	tel         telemetry.API
	concurrency int
}

// NewScraper creates a scraper fetching at most concurrency profiles at once.
func NewScraper(fetcher Fetcher, extractor Extractor, tel telemetry.API, concurrency int) Scraper {
	assert.NotNil(fetcher)
	assert.NotNil(tel)
	assert.Positive(concurrency)
	return Scraper{
		fetcher:     fetcher,
		extractor:   extractor,
		tel:         telemetry.NewScopedAPI("github_scraper", tel),
		concurrency: concurrency,
	}
}

// LoadProfileList reads one profile url per line, blank lines and lines
// starting with "#" are skipped.
func LoadProfileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrProfileListNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	profiles := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		profiles = append(profiles, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return profiles, nil
}

// LoadProfileList is the reporting variant of the package function.
func (s Scraper) LoadProfileList(path string) ([]string, error) {
	profiles, err := LoadProfileList(path)
	if err != nil {
		s.tel.ReportBroken(report_scraper_load_profile_list, err)
		return nil, err
	}
	s.tel.ReportInfo("loaded profiles from file", len(profiles), path)
	return profiles, nil
}

// DiscoverFromStargazers collects profile urls page by page from a
// repository's stargazers listing. A positive maxProfiles stops discovery as
// soon as that many urls were found.
func (s Scraper) DiscoverFromStargazers(ctx context.Context, stargazersUrl string, maxProfiles int) ([]string, error) {
	profiles := []string{}
	var parseErr error

	err := s.fetcher.FetchStargazerPages(ctx, stargazersUrl, func(markup string) bool {
		page, err := s.extractor.ParseStargazers(markup)
		if err != nil {
			parseErr = err
			return false
		}
		s.tel.ReportDebug("found stargazers on page", len(page))

		for _, profile := range page {
			profiles = append(profiles, profile)
			if maxProfiles > 0 && len(profiles) >= maxProfiles {
				s.tel.ReportInfo("reached max profiles limit", maxProfiles)
				return false
			}
		}
		return true
	})
	err = errors.Join(err, parseErr)
	if err != nil {
		s.tel.ReportBroken(report_scraper_discover, err, stargazersUrl)
		return profiles, err
	}

	s.tel.ReportInfo("discovered profiles from stargazers", len(profiles))
	return profiles, nil
}

func (s Scraper) scrapeProfile(ctx context.Context, profileUrl string) (Profile, error) {
	markup, err := s.fetcher.FetchProfile(ctx, profileUrl)
	if err != nil {
		return Profile{}, err
	}
	profile, err := s.extractor.ParseProfile(markup, profileUrl)
	if err != nil {
		return Profile{}, fmt.Errorf("parse %s: %w", profileUrl, err)
	}
	return profile, nil
}

// ScrapeProfiles fetches and parses every url, keeping input order. Profiles
// that fail are reported and skipped. A positive maxProfiles stops the scrape
// once that many records were parsed, failed urls do not count against it. The only error returned is a cancelled ctx, along with
// the records scraped up to that point.
func (s Scraper) ScrapeProfiles(ctx context.Context, profileUrls []string, maxProfiles int) ([]Profile, error) {
	results := make([]*Profile, len(profileUrls))
	var succeeded atomic.Int64
	limitReached := func() bool {
		return maxProfiles > 0 && succeeded.Load() >= int64(maxProfiles)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.concurrency)

	for i, profileUrl := range profileUrls {
		if groupCtx.Err() != nil || limitReached() {
			break
		}
		i, profileUrl := i, profileUrl
		group.Go(func() error {
			if limitReached() {
				return nil
			}
			s.tel.ReportInfo("fetching profile", fmt.Sprintf("(%d/%d)", i+1, len(profileUrls)), profileUrl)

			profile, err := s.scrapeProfile(groupCtx, profileUrl)
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}
			if err != nil {
				s.tel.ReportBroken(report_scraper_scrape_profile, err, profileUrl)
				return nil
			}

			results[i] = &profile
			succeeded.Add(1)
			return nil
		})
	}
	err := group.Wait()

	profiles := []Profile{}
	for _, profile := range results {
		if profile == nil {
			continue
		}
		profiles = append(profiles, *profile)
	}
	if maxProfiles > 0 && len(profiles) > maxProfiles {
		profiles = profiles[:maxProfiles]
	}

	s.tel.ReportCount(report_scraper_profiles_scraped, int64(len(profiles)))
	if err == nil {
		err = ctx.Err()
	}
	return profiles, err
}
