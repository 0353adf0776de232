package legacy

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/platform/logging"
	"github.com/yychockey/standings-sync/internal/usecase"
)

const (
	defaultBaseURL = "https://www.hockeycalgary.ca"
	sourceName     = "legacy"
)

// ageTokenRegex narrows the directory crawl to the age groups the
// dashboard tracks. Other links on the standings page (adult rec, news)
// are noise.
var ageTokenRegex = regexp.MustCompile(`(?i)\bU(9|11|13|15)\b`)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	// CurrentSeason is the fallback season label used when a league page
	// carries no season dropdown, and gates the regular/seeding swap.
	CurrentSeason string
	Logger        *logging.Logger
}

// Client scrapes the governing body's legacy website, the only carrier
// for historical seasons and for age groups not yet migrated to an API.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	currentSeason string
	logger        *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient:    httpClient,
		baseURL:       baseURL,
		currentSeason: strings.TrimSpace(cfg.CurrentSeason),
		logger:        logger,
	}
}

func (c *Client) Source() string {
	return sourceName
}

// ListLeagues crawls the standings directory for league links. The link
// path embeds both identity parts:
// /standings/index/stream/{stream}/league/{slug}.
func (c *Client) ListLeagues(ctx context.Context) ([]usecase.ExternalLeague, error) {
	doc, err := c.fetchDocument(ctx, c.baseURL+"/standings")
	if err != nil {
		return nil, crerr.Wrap(err, "fetch standings directory")
	}

	seen := make(map[string]struct{}, 32)
	out := make([]usecase.ExternalLeague, 0, 32)
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if !strings.Contains(href, "/standings/index/stream/") || !strings.Contains(href, "/league/") {
			return
		}
		name := strings.TrimSpace(link.Text())
		if !ageTokenRegex.MatchString(name) {
			return
		}

		stream := pathSegmentAfter(href, "stream")
		slug := pathSegmentAfter(href, "league")
		if stream == "" || slug == "" {
			return
		}
		key := stream + "/" + slug
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		out = append(out, usecase.ExternalLeague{
			Name:   name,
			Slug:   slug,
			Stream: stream,
			URL:    c.resolveURL(href),
		})
	})

	return out, nil
}

// phaseSlugs are the standings variants a season page can link to. The
// regular table lives at the bare season URL; the rest hang off /type/.
var phaseSlugs = map[string]string{
	"regular":    "Regular",
	"seeding":    "Seeding",
	"playoff":    "Playoff",
	"playoffs":   "Playoff",
	"tournament": "Tournament",
}

// FetchLeagueStandings walks every season the league page offers and every
// phase each season page links to. Failures scoped to one season or phase
// are logged and skipped so the rest of the league still lands.
func (c *Client) FetchLeagueStandings(ctx context.Context, ref usecase.ExternalLeague) ([]usecase.ExternalStandingSet, error) {
	doc, err := c.fetchDocument(ctx, ref.URL)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch league page %s", ref.Slug)
	}

	seasons := c.collectSeasons(doc)
	if len(seasons) == 0 {
		// No dropdown: the landing page is the only table this league has.
		rows := ParseStandingsTable(doc)
		if len(rows) == 0 {
			return nil, nil
		}
		return []usecase.ExternalStandingSet{{
			SeasonName:   c.currentSeason,
			LeagueName:   ref.Name,
			LeagueSlug:   ref.Slug,
			LeagueStream: ref.Stream,
			LeagueType:   league.TypeRegular,
			SourceURL:    ref.URL,
			Rows:         rows,
		}}, nil
	}

	out := make([]usecase.ExternalStandingSet, 0, len(seasons))
	for _, sn := range seasons {
		sets := c.fetchSeasonStandings(ctx, ref, sn)
		out = append(out, sets...)
	}
	return out, nil
}

type seasonOption struct {
	name string
	url  string
}

func (c *Client) collectSeasons(doc *goquery.Document) []seasonOption {
	out := make([]seasonOption, 0, 8)
	seen := make(map[string]struct{}, 8)
	doc.Find("option").Each(func(_ int, opt *goquery.Selection) {
		value, _ := opt.Attr("value")
		if !strings.Contains(value, "/season/") {
			return
		}
		name := strings.TrimSpace(opt.Text())
		if name == "" {
			return
		}
		if _, dup := seen[value]; dup {
			return
		}
		seen[value] = struct{}{}
		out = append(out, seasonOption{name: name, url: c.resolveURL(value)})
	})
	return out
}

func (c *Client) fetchSeasonStandings(ctx context.Context, ref usecase.ExternalLeague, sn seasonOption) []usecase.ExternalStandingSet {
	doc, err := c.fetchDocument(ctx, sn.url)
	if err != nil {
		c.logger.WarnContext(ctx, "season page fetch failed",
			"league", ref.Slug, "season", sn.name, "error", err)
		return nil
	}

	activePhase := c.activePhase(doc)
	available := c.availablePhases(doc)
	isCurrent := c.currentSeason != "" && canonicalSeason(sn.name) == canonicalSeason(c.currentSeason)

	out := make([]usecase.ExternalStandingSet, 0, 2)
	for _, phase := range []string{"regular", "seeding", "playoff", "tournament"} {
		// The site shows the seeding table at the bare URL early in the
		// year; fetching "regular" then would re-ingest seeding rows
		// under the wrong label.
		if phase == "regular" && isCurrent && activePhase == "seeding" {
			continue
		}
		if phase != "regular" && phase != activePhase {
			if _, ok := available[phase]; !ok {
				continue
			}
		}

		pageURL := sn.url
		pageDoc := doc
		if phase != activePhase {
			pageURL = sn.url + "/type/" + phase
			pageDoc, err = c.fetchDocument(ctx, pageURL)
			if err != nil {
				c.logger.WarnContext(ctx, "phase page fetch failed",
					"league", ref.Slug, "season", sn.name, "phase", phase, "error", err)
				continue
			}
		}

		rows := ParseStandingsTable(pageDoc)
		if len(rows) == 0 {
			continue
		}
		out = append(out, usecase.ExternalStandingSet{
			SeasonName:   sn.name,
			LeagueName:   ref.Name,
			LeagueSlug:   ref.Slug,
			LeagueStream: ref.Stream,
			LeagueType:   phaseType(phase),
			SourceURL:    pageURL,
			Rows:         rows,
		})
	}
	return out
}

// activePhase reads the phase selector's highlighted entry; the bare
// season URL serves whichever phase is active. Defaults to regular.
func (c *Client) activePhase(doc *goquery.Document) string {
	phase := "regular"
	doc.Find("a.active[href*='/type/']").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if p := pathSegmentAfter(href, "type"); p != "" {
			if _, ok := phaseSlugs[p]; ok {
				phase = p
			}
		}
		return false
	})
	return phase
}

func (c *Client) availablePhases(doc *goquery.Document) map[string]struct{} {
	out := make(map[string]struct{}, 4)
	doc.Find("a[href*='/type/']").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if p := pathSegmentAfter(href, "type"); p != "" {
			if _, ok := phaseSlugs[p]; ok {
				out[p] = struct{}{}
			}
		}
	})
	return out
}

// FetchDocument retrieves a page and parses it. Exported for the
// tournament crawler, which shares this site.
func (c *Client) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	return c.fetchDocument(ctx, pageURL)
}

func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, crerr.Wrapf(err, "build request %s", pageURL)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch %s", pageURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, crerr.Newf("fetch %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse %s", pageURL)
	}
	return doc, nil
}

// BaseURL exposes the configured site root for sibling crawlers.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return c.baseURL
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return c.baseURL
	}
	if parsed.IsAbs() {
		return parsed.String()
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return href
	}
	return base.ResolveReference(parsed).String()
}

func phaseType(phase string) league.Type {
	if mapped, ok := phaseSlugs[phase]; ok {
		return league.Type(mapped)
	}
	return league.TypeRegular
}

func canonicalSeason(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "/", "-")
}

// pathSegmentAfter returns the path segment following the named one, e.g.
// pathSegmentAfter("/standings/index/stream/a/league/b", "league") == "b".
func pathSegmentAfter(href, marker string) string {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i, segment := range segments {
		if segment == marker && i+1 < len(segments) {
			return segments[i+1]
		}
	}
	return ""
}
