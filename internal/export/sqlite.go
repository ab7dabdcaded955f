package export

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	"ghscraper/internal/scrapers/github"
	"ghscraper/pkg/migrations"
)

//go:embed schema.sql
var Schema string

// WriteSqlite replaces the database at path with one holding profiles. Set
// and sequence fields are stored as json arrays, pinned repos get their own
// table.
func WriteSqlite(ctx context.Context, path string, profiles []github.Profile) error {
	db, err := migrations.RecreateDB(Schema, path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, p := range profiles {
		err = insertProfile(ctx, tx, p)
		if err != nil {
			return fmt.Errorf("insert %s: %w", p.User, err)
		}
	}

	return tx.Commit()
}

func jsonArray(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	return cell(values)
}

func insertProfile(ctx context.Context, tx *sql.Tx, p github.Profile) error {
	sets := [][]string{p.Emails, p.Websites, p.Achievements, p.Sponsoring, p.Highlights, p.OrganizationFollowed, p.Readme}
	encoded := make([]string, len(sets))
	for i, set := range sets {
		var err error
		encoded[i], err = jsonArray(set)
		if err != nil {
			return err
		}
	}

	_, err := tx.ExecContext(
		ctx,
		`insert or replace into profiles(
			user, name, username, followers, following, bio, location,
			emails, organization, websites, achievements, sponsoring,
			last_year_contribution_number, x, linkedin, highlights,
			organization_followed, first_year_commit, readme
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.User, p.Name, p.Username, p.Followers, p.Following, p.Bio, p.Location,
		encoded[0], p.Organization, encoded[1], encoded[2], encoded[3],
		p.LastYearContributionNumber, p.X, p.LinkedIn, encoded[4],
		encoded[5], p.FirstYearCommit, encoded[6],
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, "delete from pinned_repos where profile_user = ?", p.User)
	if err != nil {
		return err
	}
	for i, repo := range p.PinnedRepos {
		languages, err := jsonArray(repo.Languages)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(
			ctx,
			`insert into pinned_repos(
				profile_user, position, name, url, description, languages, stars, forks
			) values (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.User, i, repo.Name, repo.Url, repo.Description, languages, repo.Stars, repo.Forks,
		)
		if err != nil {
			return err
		}
	}

	return nil
}
