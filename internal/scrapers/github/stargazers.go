package github

import (
	"io"
	"strings"

	"ghscraper/pkg/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseStargazers extracts the profile urls listed on a stargazers page using
// https://github.com as the site.
func ParseStargazers(markup string) ([]string, error) {
	return defaultExtractor.ParseStargazers(markup)
}

func (e Extractor) ParseStargazers(markup string) ([]string, error) {
	return e.ParseStargazersReader(strings.NewReader(markup))
}

// ParseStargazersReader returns the sorted, deduplicated absolute profile urls
// on the page read from r. A page without any users yields an empty slice.
func (e Extractor) ParseStargazersReader(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return e.extractStargazers(doc.Selection), nil
}

func (e Extractor) extractStargazers(root *goquery.Selection) []string {
	var profiles []string
	for _, link := range htmlutil.GetLinks(e.base, root.Find("a[data-hovercard-type='user'][href]")) {
		profiles = append(profiles, link.String())
	}
	if len(profiles) > 0 {
		return sortedSet(profiles)
	}

	// pages without hovercard annotations: bare "/username" links in the user list
	root.Find("ol li a[href^='/']").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.Count(href, "/") != 1 {
			return
		}
		profiles = append(profiles, e.resolve(href))
	})
	return sortedSet(profiles)
}
