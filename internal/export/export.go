// Package export writes scraped profiles to json, csv or sqlite files.
package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ghscraper/internal/scrapers/github"
)

type Format string

const (
	FormatJson   Format = "json"
	FormatCsv    Format = "csv"
	FormatSqlite Format = "sqlite"
)

var Formats = []Format{FormatJson, FormatCsv, FormatSqlite}

func ParseFormat(name string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range Formats {
		if f == format {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected json, csv or sqlite)", name)
}

func orEmpty(profiles []github.Profile) []github.Profile {
	if profiles == nil {
		return []github.Profile{}
	}
	return profiles
}

// ToFile writes profiles to path in the given format, creating the parent
// directory if needed. An existing file is replaced.
func ToFile(ctx context.Context, path string, format Format, profiles []github.Profile) error {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	switch format {
	case FormatJson:
		return writeFile(path, profiles, WriteJson)
	case FormatCsv:
		return writeFile(path, profiles, WriteCsv)
	case FormatSqlite:
		return WriteSqlite(ctx, path, profiles)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeFile(path string, profiles []github.Profile, write func(io.Writer, []github.Profile) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	buffered := bufio.NewWriter(f)
	err = write(buffered, profiles)
	if err == nil {
		err = buffered.Flush()
	}
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return closeErr
}
