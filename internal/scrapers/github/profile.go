package github

import (
	"io"
	"net/url"
	"slices"
	"strings"
	"unicode"

	"ghscraper/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

const DefaultBaseUrl = "https://github.com"

// Extractor maps profile and stargazers pages of one site to records. It holds
// no mutable state and is safe for concurrent use.
type Extractor struct {
	base *url.URL
}

// NewExtractor creates an extractor resolving relative links against baseUrl.
func NewExtractor(baseUrl string) (Extractor, error) {
	base, err := url.Parse(baseUrl)
	if err != nil {
		return Extractor{}, err
	}
	return Extractor{base: base}, nil
}

var defaultExtractor, _ = NewExtractor(DefaultBaseUrl)

// ParseProfile extracts a profile record from profile page markup using
// https://github.com as the site.
func ParseProfile(markup string, sourceUrl string) (Profile, error) {
	return defaultExtractor.ParseProfile(markup, sourceUrl)
}

func (e Extractor) ParseProfile(markup string, sourceUrl string) (Profile, error) {
	return e.ParseProfileReader(strings.NewReader(markup), sourceUrl)
}

// ParseProfileReader extracts a profile record from the markup read from r.
// Only a failure to read or decode r is an error, any field missing from the
// page is left empty.
func (e Extractor) ParseProfileReader(r io.Reader, sourceUrl string) (Profile, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Profile{}, err
	}
	return e.extractProfile(doc.Selection, sourceUrl), nil
}

func (e Extractor) extractProfile(root *goquery.Selection, sourceUrl string) Profile {
	followers, following := extractFollowCounts(root)
	x, linkedIn := extractSocialLinks(root)

	return finalize(Profile{
		User:                       sourceUrl,
		Name:                       htmlutil.NormalizedText(nameLocator.Locate(root)),
		Username:                   htmlutil.NormalizedText(usernameLocator.Locate(root)),
		Followers:                  followers,
		Following:                  following,
		Bio:                        htmlutil.NormalizedText(bioLocator.Locate(root)),
		Location:                   htmlutil.NormalizedText(locationLocator.Locate(root)),
		Emails:                     extractEmails(root),
		Organization:               htmlutil.NormalizedText(organizationLocator.Locate(root)),
		Websites:                   e.extractWebsites(root),
		Achievements:               extractAchievements(root),
		LastYearContributionNumber: extractContributionsLastYear(root),
		X:                          x,
		LinkedIn:                   linkedIn,
		Highlights:                 extractHighlights(root),
		OrganizationFollowed:       e.extractOrgsFollowed(root),
		FirstYearCommit:            extractFirstCommitYear(root),
		PinnedRepos:                e.extractPinnedRepos(root),
		Readme:                     extractReadme(root),
	})
}

// sortedSet deduplicates and sorts values, dropping empty strings.
func sortedSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func extractFollowCounts(root *goquery.Selection) (followers, following string) {
	root.Find("a[href$='?tab=followers'], a[href$='?tab=following']").Each(func(_ int, a *goquery.Selection) {
		label := strings.ToLower(htmlutil.NormalizedText(a))
		value := htmlutil.NormalizedText(a.Find(".Counter, span").First())
		switch {
		case strings.Contains(label, "follower"):
			followers = value
		case strings.Contains(label, "following"):
			following = value
		}
	})
	return followers, following
}

func extractEmails(root *goquery.Selection) []string {
	var emails []string
	root.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if !strings.HasPrefix(href, "mailto:") {
			return
		}
		emails = append(emails, strings.TrimSpace(strings.TrimPrefix(href, "mailto:")))
	})
	return sortedSet(emails)
}

func (e Extractor) host() string {
	return strings.ToLower(e.base.Hostname())
}

// hostContains reports whether domain occurs anywhere in host, so
// "fxtwitter.com" and "twitter.com.example.io" both count as "twitter.com".
func hostContains(host, domain string) bool {
	return domain != "" && strings.Contains(host, domain)
}

func linkHost(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

func (e Extractor) extractWebsites(root *goquery.Selection) []string {
	var sites []string
	root.Find("li[itemprop='url'] a[href]").Each(func(_ int, a *goquery.Selection) {
		sites = append(sites, e.resolve(a.AttrOr("href", "")))
	})

	siteHost := e.host()
	root.Find("a[href^='http']").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if hostContains(linkHost(href), siteHost) {
			return
		}
		sites = append(sites, href)
	})
	return sortedSet(sites)
}

const (
	socialX        = "X"
	socialLinkedIn = "LinkedIn"
)

var socialDomains = []struct {
	domain  string
	network string
}{
	{domain: "twitter.com", network: socialX},
	{domain: "x.com", network: socialX},
	{domain: "linkedin.com", network: socialLinkedIn},
}

func classifySocial(href string) string {
	host := linkHost(href)
	if host == "" {
		return ""
	}
	for _, s := range socialDomains {
		if hostContains(host, s.domain) {
			return s.network
		}
	}
	return ""
}

// extractSocialLinks keeps the last link found for each network.
func extractSocialLinks(root *goquery.Selection) (x, linkedIn string) {
	root.Find("a[href^='http']").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		switch classifySocial(href) {
		case socialX:
			x = href
		case socialLinkedIn:
			linkedIn = href
		}
	})
	return x, linkedIn
}

func extractAchievements(root *goquery.Selection) []string {
	var achievements []string
	root.Find("img[alt][data-view-component='true']").Each(func(_ int, img *goquery.Selection) {
		alt := strings.TrimSpace(img.AttrOr("alt", ""))
		lower := strings.ToLower(alt)
		if strings.Contains(lower, "badge") || strings.Contains(lower, "contributor") {
			achievements = append(achievements, alt)
		}
	})
	return sortedSet(achievements)
}

func extractHighlights(root *goquery.Selection) []string {
	var highlights []string
	root.Find("span.Label, span[title]").Each(func(_ int, span *goquery.Selection) {
		highlights = append(highlights, htmlutil.NormalizedText(span))
	})
	return sortedSet(highlights)
}

func (e Extractor) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	resolved, err := htmlutil.ResolveUrl(e.base, href)
	if err != nil {
		return ""
	}
	return resolved.String()
}

func (e Extractor) extractOrgsFollowed(root *goquery.Selection) []string {
	var orgs []string
	for _, link := range htmlutil.GetLinks(e.base, root.Find("a[data-hovercard-type='organization'][href]")) {
		orgs = append(orgs, link.String())
	}
	return sortedSet(orgs)
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// extractContributionsLastYear reads the count out of headings like
// "1,444 contributions in the last year".
func extractContributionsLastYear(root *goquery.Selection) string {
	result := ""
	root.Find("h2").EachWithBreak(func(_ int, h2 *goquery.Selection) bool {
		text := htmlutil.NormalizedText(h2)
		if !strings.Contains(strings.ToLower(text), "contributions in the last year") {
			return true
		}
		for _, token := range strings.Fields(text) {
			if containsDigit(token) {
				result = token
				return false
			}
		}
		return true
	})
	return result
}

func extractFirstCommitYear(root *goquery.Selection) string {
	first := ""
	root.Find("rect[data-date], td[data-date]").Each(func(_ int, el *goquery.Selection) {
		date := el.AttrOr("data-date", "")
		if len(date) < 4 {
			return
		}
		year := date[:4]
		if first == "" || year < first {
			first = year
		}
	})
	return first
}

func (e Extractor) extractPinnedRepos(root *goquery.Selection) []PinnedRepo {
	repos := []PinnedRepo{}
	root.Find("li.pinned-item-list-item, div.js-pinned-items-reorder-container div.mb-3").Each(func(_ int, item *goquery.Selection) {
		repos = append(repos, e.extractPinnedRepo(item))
	})
	return repos
}

func (e Extractor) extractPinnedRepo(item *goquery.Selection) PinnedRepo {
	languages := []string{}
	item.Find("span[itemprop='programmingLanguage']").Each(func(_ int, lang *goquery.Selection) {
		text := htmlutil.NormalizedText(lang)
		if text != "" {
			languages = append(languages, text)
		}
	})

	stars := ""
	forks := ""
	item.Find(pinnedMetricSelector).Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		switch {
		case strings.Contains(href, "stargazers"):
			stars = htmlutil.NormalizedText(a)
		case strings.Contains(href, "network"):
			forks = htmlutil.NormalizedText(a)
		}
	})

	name := htmlutil.NormalizedText(pinnedNameLocator.Locate(item))
	link := LocatorChain{pinnedLinkLocator, namedRepoLink{name: name}}.Locate(item)

	return PinnedRepo{
		Name:        name,
		Url:         e.resolve(link.AttrOr("href", "")),
		Description: htmlutil.NormalizedText(pinnedDescriptionLocator.Locate(item)),
		Languages:   languages,
		Stars:       stars,
		Forks:       forks,
	}
}

func extractReadme(root *goquery.Selection) []string {
	article := root.Find("article.markdown-body").First()
	if article.Length() == 0 {
		return []string{}
	}
	return htmlutil.Lines(article)
}
