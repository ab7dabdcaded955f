package commands

import (
	"os"
	"strconv"

	"ghscraper/internal/scrapers/github"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func renderSummary(profiles []github.Profile) {
	t := newTable()
	t.AppendHeader(table.Row{"User", "Name", "Followers", "Contributions", "Since", "Pinned"})
	for _, p := range profiles {
		t.AppendRow(table.Row{
			p.User,
			p.Name,
			p.Followers,
			p.LastYearContributionNumber,
			p.FirstYearCommit,
			strconv.Itoa(len(p.PinnedRepos)),
		})
	}
	t.AppendFooter(table.Row{"Total", strconv.Itoa(len(profiles))})
	t.Render()
}
