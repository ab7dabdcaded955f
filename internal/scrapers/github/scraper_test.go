package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	mutex    sync.Mutex
	profiles map[string]string
	pages    []string
	fetched  []string
	pageErr  error
}

func (f *fakeFetcher) FetchProfile(ctx context.Context, profileUrl string) (string, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.fetched = append(f.fetched, profileUrl)

	markup, ok := f.profiles[profileUrl]
	if !ok {
		return "", fmt.Errorf("fetch %s: unexpected status 404", profileUrl)
	}
	return markup, nil
}

func (f *fakeFetcher) FetchStargazerPages(ctx context.Context, stargazersUrl string, yield func(markup string) bool) error {
	for _, page := range f.pages {
		if !yield(page) {
			return nil
		}
	}
	return f.pageErr
}

func profileMarkup(name string) string {
	return fmt.Sprintf(`<html><body><span itemprop="name">%s</span></body></html>`, name)
}

func names(profiles []Profile) []string {
	out := []string{}
	for _, p := range profiles {
		out = append(out, p.Name)
	}
	return out
}

func newTestScraper(fetcher Fetcher, tel *recorder, concurrency int) Scraper {
	return NewScraper(fetcher, defaultExtractor, tel, concurrency)
}

func TestNewScraperRequiresPositiveConcurrency(t *testing.T) {
	require.Panics(t, func() {
		NewScraper(&fakeFetcher{}, defaultExtractor, &recorder{}, 0)
	})
}

func TestLoadProfileList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.txt")
	content := strings.Join([]string{
		"# seed list",
		"https://github.com/alice",
		"",
		"   /bob   ",
		"  # indented comment",
		"charlie",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	profiles, err := LoadProfileList(path)
	require.NoError(t, err)
	require.Equal(t, []string{"https://github.com/alice", "/bob", "charlie"}, profiles)
}

func TestLoadProfileListMissingFile(t *testing.T) {
	tel := &recorder{}
	scraper := newTestScraper(&fakeFetcher{}, tel, 1)

	_, err := scraper.LoadProfileList(filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, ErrProfileListNotFound)
	require.Equal(t, 1, tel.count("broken", "github_scraper: scraper.load-profile-list"))
}

func TestLoadProfileListEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.txt")
	require.NoError(t, os.WriteFile(path, []byte("\n# nothing\n"), 0644))

	profiles, err := LoadProfileList(path)
	require.NoError(t, err)
	require.NotNil(t, profiles)
	require.Empty(t, profiles)
}

func stargazersPage(users ...string) string {
	var sb strings.Builder
	sb.WriteString("<ol>")
	for _, user := range users {
		fmt.Fprintf(&sb, `<li><a data-hovercard-type="user" href="/%s">%s</a></li>`, user, user)
	}
	sb.WriteString("</ol>")
	return sb.String()
}

func TestDiscoverFromStargazers(t *testing.T) {
	fetcher := &fakeFetcher{pages: []string{
		stargazersPage("bob", "alice"),
		stargazersPage("carol"),
	}}
	scraper := newTestScraper(fetcher, &recorder{}, 1)

	profiles, err := scraper.DiscoverFromStargazers(context.Background(), "https://github.com/o/r", 0)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://github.com/alice",
		"https://github.com/bob",
		"https://github.com/carol",
	}, profiles)
}

func TestDiscoverFromStargazersStopsAtMax(t *testing.T) {
	fetcher := &fakeFetcher{pages: []string{
		stargazersPage("alice", "bob"),
		stargazersPage("carol", "dave"),
		stargazersPage("erin"),
	}}
	tel := &recorder{}
	scraper := newTestScraper(fetcher, tel, 1)

	profiles, err := scraper.DiscoverFromStargazers(context.Background(), "https://github.com/o/r", 3)
	require.NoError(t, err)
	require.Equal(t, []string{
		"https://github.com/alice",
		"https://github.com/bob",
		"https://github.com/carol",
	}, profiles)
	require.Equal(t, 1, tel.count("info", "github_scraper: reached max profiles limit"))
}

func TestDiscoverFromStargazersReportsFetchErrors(t *testing.T) {
	fetcher := &fakeFetcher{
		pages:   []string{stargazersPage("alice")},
		pageErr: errors.New("unexpected status 500"),
	}
	tel := &recorder{}
	scraper := newTestScraper(fetcher, tel, 1)

	profiles, err := scraper.DiscoverFromStargazers(context.Background(), "https://github.com/o/r", 0)
	require.Error(t, err)
	require.Equal(t, []string{"https://github.com/alice"}, profiles)
	require.Equal(t, 1, tel.count("broken", "github_scraper: scraper.discover"))
}

func TestScrapeProfilesSkipsFailures(t *testing.T) {
	fetcher := &fakeFetcher{profiles: map[string]string{
		"/alice": profileMarkup("Alice"),
		"/carol": profileMarkup("Carol"),
	}}
	tel := &recorder{}
	scraper := newTestScraper(fetcher, tel, 1)

	profiles, err := scraper.ScrapeProfiles(context.Background(), []string{"/alice", "/bob", "/carol"}, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Carol"}, names(profiles))
	require.Equal(t, "/alice", profiles[0].User)
	require.Equal(t, 1, tel.count("broken", "github_scraper: scraper.scrape-profile"))
	require.Equal(t, 1, tel.count("count", "github_scraper: scraper.profiles-scraped"))
}

func TestScrapeProfilesMaxCountsOnlySuccesses(t *testing.T) {
	fetcher := &fakeFetcher{profiles: map[string]string{
		"/alice": profileMarkup("Alice"),
		"/carol": profileMarkup("Carol"),
		"/dave":  profileMarkup("Dave"),
	}}
	scraper := newTestScraper(fetcher, &recorder{}, 1)

	profiles, err := scraper.ScrapeProfiles(context.Background(), []string{"/alice", "/bob", "/carol", "/dave"}, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"Alice", "Carol"}, names(profiles))
	require.Equal(t, []string{"/alice", "/bob", "/carol"}, fetcher.fetched)
}

func TestScrapeProfilesConcurrentKeepsInputOrder(t *testing.T) {
	urls := []string{}
	fetcher := &fakeFetcher{profiles: map[string]string{}}
	for i := 0; i < 20; i++ {
		link := fmt.Sprintf("/user%02d", i)
		urls = append(urls, link)
		if i%5 != 0 {
			fetcher.profiles[link] = profileMarkup(fmt.Sprintf("User %02d", i))
		}
	}
	scraper := newTestScraper(fetcher, &recorder{}, 4)

	profiles, err := scraper.ScrapeProfiles(context.Background(), urls, 0)
	require.NoError(t, err)
	require.Len(t, profiles, 16)
	for i := 1; i < len(profiles); i++ {
		require.Less(t, profiles[i-1].User, profiles[i].User)
	}
}

func TestScrapeProfilesConcurrentRespectsMax(t *testing.T) {
	urls := []string{}
	fetcher := &fakeFetcher{profiles: map[string]string{}}
	for i := 0; i < 10; i++ {
		link := fmt.Sprintf("/user%02d", i)
		urls = append(urls, link)
		fetcher.profiles[link] = profileMarkup(link)
	}
	scraper := newTestScraper(fetcher, &recorder{}, 3)

	profiles, err := scraper.ScrapeProfiles(context.Background(), urls, 4)
	require.NoError(t, err)
	require.Len(t, profiles, 4)
}

func TestScrapeProfilesEmptyInput(t *testing.T) {
	scraper := newTestScraper(&fakeFetcher{}, &recorder{}, 2)

	profiles, err := scraper.ScrapeProfiles(context.Background(), nil, 0)
	require.NoError(t, err)
	require.NotNil(t, profiles)
	require.Empty(t, profiles)
}

func TestScrapeProfilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{profiles: map[string]string{"/alice": profileMarkup("Alice")}}
	scraper := newTestScraper(fetcher, &recorder{}, 1)

	_, err := scraper.ScrapeProfiles(ctx, []string{"/alice"}, 0)
	require.ErrorIs(t, err, context.Canceled)
}
