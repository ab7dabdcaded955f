package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"ghscraper/internal/scrapers/github"
)

type column struct {
	name  string
	value func(p github.Profile) any
}

// only scalar fields are flattened, sets, pinned repos and readme are left out
var csvColumns = []column{
	{"user", func(p github.Profile) any { return p.User }},
	{"name", func(p github.Profile) any { return p.Name }},
	{"username", func(p github.Profile) any { return p.Username }},
	{"followers", func(p github.Profile) any { return p.Followers }},
	{"following", func(p github.Profile) any { return p.Following }},
	{"bio", func(p github.Profile) any { return p.Bio }},
	{"location", func(p github.Profile) any { return p.Location }},
	{"organization", func(p github.Profile) any { return p.Organization }},
	{"last_year_contribution_number", func(p github.Profile) any { return p.LastYearContributionNumber }},
	{"X", func(p github.Profile) any { return p.X }},
	{"LinkedIn", func(p github.Profile) any { return p.LinkedIn }},
	{"first_year_commit", func(p github.Profile) any { return p.FirstYearCommit }},
}

// cell renders a value for a csv cell, sequences and structs become compact
// json.
func cell(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(value)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// WriteCsv writes a header row followed by one row per profile. Rows end in
// \r\n.
func WriteCsv(w io.Writer, profiles []github.Profile) error {
	writer := csv.NewWriter(w)
	writer.UseCRLF = true

	header := make([]string, len(csvColumns))
	for i, col := range csvColumns {
		header[i] = col.name
	}
	err := writer.Write(header)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		row := make([]string, len(csvColumns))
		for i, col := range csvColumns {
			row[i], err = cell(col.value(p))
			if err != nil {
				return fmt.Errorf("column %s of %s: %w", col.name, p.User, err)
			}
		}
		err = writer.Write(row)
		if err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
