package export

import (
	"encoding/json"
	"io"

	"ghscraper/internal/scrapers/github"
)

// WriteJson writes profiles as an indented json array. Non-ascii and html
// characters are written as is.
func WriteJson(w io.Writer, profiles []github.Profile) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(orEmpty(profiles))
}
