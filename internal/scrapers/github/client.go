package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ghscraper/internal/components/assert"
	"ghscraper/internal/components/restyutil"
	"ghscraper/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("ghscraper/scrapers/github")

const (
	report_client_request          = "client.request"
	report_client_fetch_stargazers = "client.fetch-stargazers"
)

var ErrNotGithubUrl = errors.New("not a valid github url")

const DefaultUserAgent = "Mozilla/5.0 (compatible; GitHubProfileScraper/1.0)"

type ClientOptions struct {
	// BaseUrl defaults to https://github.com.
	BaseUrl   string
	UserAgent string
	// Timeout applies to a single request attempt.
	Timeout time.Duration
	// MaxRetries is the number of attempts made for one page.
	MaxRetries int
	// Backoff is the base wait between attempts, attempt n waits n*Backoff
	// (2*n*Backoff after a 429).
	Backoff time.Duration
	// RequestsPerSecond paces all requests of the client, 0 disables pacing.
	RequestsPerSecond float64
	// CloudflareBypass wraps the transport with browser-like TLS and headers.
	CloudflareBypass bool
	// Dump receives every fetched page when set.
	Dump restyutil.Output
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.BaseUrl == "" {
		o.BaseUrl = DefaultBaseUrl
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.Backoff < 0 {
		o.Backoff = 0
	}
	return o
}

// Client fetches raw profile and stargazers pages.
type Client struct {
	base       *url.URL
	http       *resty.Client
	maxRetries int
	backoff    time.Duration
	tel        telemetry.API

	// sleep waits between attempts, replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	opts = opts.withDefaults()
	tel = telemetry.NewScopedAPI("github_client", tel)

	base, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetHeader("user-agent", opts.UserAgent)
	httpClient.SetTimeout(opts.Timeout)
	if opts.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	if opts.RequestsPerSecond > 0 {
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel)
	restyutil.DumpResponses(httpClient, opts.Dump)

	return &Client{
		base:       base,
		http:       httpClient,
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		tel:        tel,
		sleep:      sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// request fetches link, retrying with a linear backoff. The error of the last
// attempt is returned once all attempts failed.
func (c *Client) request(ctx context.Context, link string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:request")
	defer span.End()
	span.SetAttributes(attribute.String("url", link))

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		c.tel.ReportDebug("requesting", link, attempt)

		wait := c.backoff * time.Duration(attempt)

		res, err := c.http.R().
			SetContext(ctx).
			Get(link)
		switch {
		case err != nil:
			lastErr = err
		case res.StatusCode() == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited: %s", res.Status())
			wait = c.backoff * 2 * time.Duration(attempt)
		case !res.IsSuccess():
			lastErr = fmt.Errorf("unexpected status %d", res.StatusCode())
		default:
			span.SetAttributes(attribute.Int("attempts", attempt))
			return res.String(), nil
		}

		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}

		c.tel.ReportWarning(
			report_client_request,
			fmt.Errorf("attempt %d/%d: %w", attempt, c.maxRetries, lastErr),
			link,
			wait.String(),
		)
		if attempt == c.maxRetries {
			break
		}
		err = c.sleep(ctx, wait)
		if err != nil {
			lastErr = err
			break
		}
	}

	c.tel.ReportBroken(report_client_request, fmt.Errorf("all attempts failed: %w", lastErr), link)
	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "all attempts failed")
	return "", fmt.Errorf("fetch %s: %w", link, lastErr)
}

// ProfileUrl turns a profile url or a bare "/username" path into an absolute
// url on the client's site.
func (c *Client) ProfileUrl(profileUrl string) string {
	profileUrl = strings.TrimSpace(profileUrl)
	if strings.HasPrefix(profileUrl, "http://") || strings.HasPrefix(profileUrl, "https://") {
		return profileUrl
	}
	rel := &url.URL{Path: strings.TrimLeft(profileUrl, "/")}
	return c.base.ResolveReference(rel).String()
}

// FetchProfile returns the raw markup of a profile page.
func (c *Client) FetchProfile(ctx context.Context, profileUrl string) (string, error) {
	link := c.ProfileUrl(profileUrl)
	c.tel.ReportDebug("fetching profile", link)
	return c.request(ctx, link)
}

// NormalizeStargazersUrl makes sure a repository url points at its
// stargazers listing, "/owner/repo" becomes "/owner/repo/stargazers".
func (c *Client) NormalizeStargazersUrl(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if parsed.Host == "" || !strings.Contains(parsed.Host, c.base.Hostname()) {
		return "", fmt.Errorf("%w: %s", ErrNotGithubUrl, raw)
	}

	parts := strings.Split(strings.TrimRight(parsed.Path, "/"), "/")
	if len(parts) >= 3 && parts[len(parts)-1] != "stargazers" {
		parts = append(parts, "stargazers")
	}
	parsed.Path = strings.Join(parts, "/")
	parsed.RawPath = ""

	return parsed.String(), nil
}

func hasNextPage(markup string) bool {
	return strings.Contains(markup, `rel="next"`) || strings.Contains(markup, "Next")
}

// FetchStargazerPages calls yield with the markup of every stargazers page,
// starting at page 1, until a page has no next link or yield returns false.
func (c *Client) FetchStargazerPages(ctx context.Context, stargazersUrl string, yield func(markup string) bool) error {
	normalized, err := c.NormalizeStargazersUrl(stargazersUrl)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_stargazers, err)
		return err
	}
	pageUrl, err := url.Parse(normalized)
	if err != nil {
		return err
	}

	for page := 1; ; page++ {
		query := pageUrl.Query()
		query.Set("page", strconv.Itoa(page))
		pageUrl.RawQuery = query.Encode()

		c.tel.ReportDebug("fetching stargazers page", page, pageUrl.String())

		markup, err := c.request(ctx, pageUrl.String())
		if err != nil {
			return err
		}
		if !yield(markup) {
			return nil
		}
		if !hasNextPage(markup) {
			return nil
		}
	}
}
