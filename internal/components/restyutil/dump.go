package restyutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// dumpName turns a request url into a file name, "/owner/repo/stargazers?page=2"
// becomes "owner_repo_stargazers_page-2".
func dumpName(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return "request"
	}

	name := strings.Trim(parsed.Path, "/")
	if parsed.RawQuery != "" {
		name += "_" + strings.ReplaceAll(parsed.RawQuery, "=", "-")
	}
	name = strings.Trim(unsafeNameChars.ReplaceAllString(name, "_"), "_")
	if name == "" {
		return "index"
	}
	return name
}

// DumpResponses writes the body of every response of client to
// "<n>-<name>.html" and its headers to "<n>-<name>.http" in output.
func DumpResponses(client *resty.Client, output Output) {
	if output == nil {
		return
	}

	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&idcounter, 1)
		prefix := fmt.Sprintf("%04d-%s", id, dumpName(res.Request.URL))

		output.Write(prefix+".html", res.String())
		output.Write(prefix+".http", formatHttpMessage(res))
		return nil
	})
}
