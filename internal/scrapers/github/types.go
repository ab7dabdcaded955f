package github

// PinnedRepo is a repository the profile owner chose to feature on their
// profile.
type PinnedRepo struct {
	Name        string   `json:"name"`
	Url         string   `json:"url"`
	Description string   `json:"description"`
	Languages   []string `json:"languages"`
	Stars       string   `json:"stars"`
	Forks       string   `json:"forks"`
}

// Profile is one scraped profile page. Unfound values are empty strings or
// empty (never nil) slices so every record has the same shape once encoded.
//
// Emails, Websites, Achievements, Highlights and OrganizationFollowed are
// deduplicated and sorted. PinnedRepos and Readme keep document order.
type Profile struct {
	// User is the url the record was requested for, not a value parsed from the page.
	User      string `json:"user"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Followers string `json:"followers"`
	Following string `json:"following"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`

	Emails       []string `json:"emails"`
	Organization string   `json:"organization"`
	Websites     []string `json:"websites"`
	Achievements []string `json:"achievements"`
	// Sponsoring is reserved and always empty.
	Sponsoring []string `json:"sponsoring"`

	LastYearContributionNumber string `json:"last_year_contribution_number"`

	X        string `json:"X"`
	LinkedIn string `json:"LinkedIn"`

	Highlights           []string `json:"highlights"`
	OrganizationFollowed []string `json:"organization_followed"`
	FirstYearCommit      string   `json:"first_year_commit"`

	PinnedRepos []PinnedRepo `json:"pinned_repos"`
	Readme      []string     `json:"readme"`
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// finalize is the single place where unfound values are defaulted, every
// record leaves the extractor through it.
func finalize(p Profile) Profile {
	p.Emails = orEmpty(p.Emails)
	p.Websites = orEmpty(p.Websites)
	p.Achievements = orEmpty(p.Achievements)
	p.Sponsoring = orEmpty(p.Sponsoring)
	p.Highlights = orEmpty(p.Highlights)
	p.OrganizationFollowed = orEmpty(p.OrganizationFollowed)
	p.Readme = orEmpty(p.Readme)

	repos := make([]PinnedRepo, len(p.PinnedRepos))
	for i, r := range p.PinnedRepos {
		r.Languages = orEmpty(r.Languages)
		repos[i] = r
	}
	p.PinnedRepos = repos

	return p
}
