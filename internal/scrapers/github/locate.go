package github

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Locator finds the element holding one field of a page. It returns an empty
// selection when the field is absent.
type Locator interface {
	Locate(root *goquery.Selection) *goquery.Selection
}

// Selector locates the first element matching a css selector.
type Selector string

func (s Selector) Locate(root *goquery.Selection) *goquery.Selection {
	return root.Find(string(s)).First()
}

// LocatorChain tries each locator in order, the first one that matches wins.
type LocatorChain []Locator

func (c LocatorChain) Locate(root *goquery.Selection) *goquery.Selection {
	for _, l := range c {
		match := l.Locate(root)
		if match != nil && match.Length() > 0 {
			return match
		}
	}
	return root.Slice(0, 0)
}

func selectors(list ...string) LocatorChain {
	chain := make(LocatorChain, len(list))
	for i, s := range list {
		chain[i] = Selector(s)
	}
	return chain
}

// microdata attributes come first, h-card class names are the fallback
var (
	nameLocator = selectors(
		"span[itemprop='name']",
		"span.p-name",
	)
	usernameLocator = selectors(
		"span[itemprop='additionalName']",
		"span[itemprop='nickname']",
		"span.p-nickname",
	)
	bioLocator = selectors(
		"div[data-bio-text]",
		"div.p-note",
		"div.user-profile-bio",
	)
	locationLocator = selectors(
		"li[itemprop='homeLocation']",
		"span[itemprop='homeLocation']",
	)
	organizationLocator = selectors(
		"li[itemprop='worksFor']",
		"span[itemprop='worksFor']",
	)
)

// closestAnchor locates the link a pinned repo's name lives in. Links
// enclosing root itself are not considered.
type closestAnchor struct {
	inner Locator
}

func (c closestAnchor) Locate(root *goquery.Selection) *goquery.Selection {
	anchor := c.inner.Locate(root).Closest("a[href]")
	if anchor.Length() == 0 || !root.Contains(anchor.Get(0)) {
		return root.Slice(0, 0)
	}
	return anchor
}

// namedRepoLink locates a "/<owner>/<repo>" link whose repo segment is the
// pinned repo's name.
type namedRepoLink struct {
	name string
}

func (n namedRepoLink) Locate(root *goquery.Selection) *goquery.Selection {
	repo := n.name
	if idx := strings.LastIndex(repo, "/"); idx >= 0 {
		repo = repo[idx+1:]
	}
	if repo == "" {
		return root.Slice(0, 0)
	}

	return root.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		parsed, err := url.Parse(href)
		if err != nil {
			return false
		}
		segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		return len(segments) == 2 && strings.EqualFold(segments[1], repo)
	}).First()
}

const pinnedMetricSelector = "a[href*='/stargazers'], a[href*='/network/members']"

var (
	pinnedNameLocator = selectors(
		"span.repo",
		"a[data-hovercard-type='repository']",
	)
	pinnedLinkLocator = LocatorChain{
		Selector("a[data-hovercard-type='repository'][href]"),
		closestAnchor{inner: Selector("span.repo")},
	}
	pinnedDescriptionLocator = selectors(
		"p.pinned-item-desc",
		"p.color-fg-muted",
	)
)
