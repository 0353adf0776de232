package ramp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/platform/logging"
	"github.com/yychockey/standings-sync/internal/usecase"
)

const (
	defaultBaseURL = "http://hockeycalgary.msa4.rampinteractive.com"
	sourceName     = "RAMP"
)

var (
	divisionIDRegex = regexp.MustCompile(`(?i)/division/(\d+)`)
	categoryIDRegex = regexp.MustCompile(`(?i)/category/(\d+)`)
	// The association id only appears inside an inline script on the
	// division page, never in a structured attribute.
	assnIDRegex = regexp.MustCompile(`(?i)\bassn(?:id|_id)?\D{0,8}(\d+)`)
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	// CurrentSeason labels the fallback pass taken when a division page
	// has no season selector yet.
	CurrentSeason string
	Logger        *logging.Logger
}

// Client reads the association's RAMP portal: division pages are HTML with
// season and game-type selectors, standings come from a JSON endpoint.
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

// ListLeagues finds "Standings" links on the portal landing page. Division
// names do not live on the links themselves, so each link walks up a few
// ancestors looking for the nearest preceding heading.
func (c *Client) ListLeagues(ctx context.Context) ([]usecase.ExternalLeague, error) {
	doc, err := c.fetchDocument(ctx, c.baseURL+"/")
	if err != nil {
		return nil, crerr.Wrap(err, "fetch portal landing page")
	}

	seen := make(map[string]struct{}, 16)
	out := make([]usecase.ExternalLeague, 0, 16)
	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		if !strings.Contains(strings.ToLower(link.Text()), "standings") {
			return
		}
		href, _ := link.Attr("href")
		m := divisionIDRegex.FindStringSubmatch(href)
		if m == nil {
			return
		}
		divisionID := m[1]
		if _, dup := seen[divisionID]; dup {
			return
		}
		seen[divisionID] = struct{}{}

		name := divisionHeading(link)
		if name == "" {
			name = "Division " + divisionID
		}

		out = append(out, usecase.ExternalLeague{
			Name:   name,
			Slug:   slugify(name),
			Stream: sourceName,
			URL:    c.absoluteURL(href),
		})
	})

	return out, nil
}

// divisionHeading walks up to five ancestor levels from a standings link,
// taking the first preceding heading it can find at any level.
func divisionHeading(link *goquery.Selection) string {
	node := link
	for i := 0; i < 5; i++ {
		node = node.Parent()
		if node.Length() == 0 {
			break
		}
		heading := node.PrevAllFiltered("h1, h2, h3, h4, h5, strong").First()
		if text := strings.TrimSpace(heading.Text()); text != "" {
			return text
		}
	}
	return strings.TrimSpace(link.AttrOr("title", ""))
}

type selectOption struct {
	id   string
	name string
}

// FetchLeagueStandings reads one division. Every (season, game type) pair
// the page offers becomes its own standings set; the game type is folded
// into the league identity so seeding and regular rounds stay separate.
func (c *Client) FetchLeagueStandings(ctx context.Context, ref usecase.ExternalLeague) ([]usecase.ExternalStandingSet, error) {
	doc, err := c.fetchDocument(ctx, ref.URL)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch division page %s", ref.Slug)
	}

	html, err := doc.Html()
	if err != nil {
		return nil, crerr.Wrapf(err, "serialize division page %s", ref.Slug)
	}
	assnMatch := assnIDRegex.FindStringSubmatch(html)
	if assnMatch == nil {
		return nil, crerr.Newf("division page %s carries no association id", ref.Slug)
	}
	assnID := assnMatch[1]

	divisionID := "0"
	if m := divisionIDRegex.FindStringSubmatch(ref.URL); m != nil {
		divisionID = m[1]
	}
	categoryID := "0"
	if m := categoryIDRegex.FindStringSubmatch(ref.URL); m != nil {
		categoryID = m[1]
	}

	seasons := collectOptions(doc, "select#ddlSeason")
	if len(seasons) == 0 {
		// Pages early in the year ship without the selector; the API
		// still answers for season id 0.
		seasons = []selectOption{{id: "0", name: c.currentSeason}}
	}
	gameTypes := collectOptions(doc, "select#ddlGameType")
	if len(gameTypes) == 0 {
		gameTypes = []selectOption{{id: "0", name: "Regular"}}
	}

	out := make([]usecase.ExternalStandingSet, 0, len(seasons)*len(gameTypes))
	for _, sn := range seasons {
		for _, gt := range gameTypes {
			apiURL := fmt.Sprintf("%s/api/leaguestandings/%s/%s/%s/%s/%s",
				c.baseURL, assnID, sn.id, gt.id, categoryID, divisionID)
			rows, err := c.fetchStandingRows(ctx, apiURL)
			if err != nil {
				c.logger.WarnContext(ctx, "standings api call failed",
					"division", ref.Slug, "season", sn.name, "game_type", gt.name, "error", err)
				continue
			}
			if len(rows) == 0 {
				continue
			}

			out = append(out, usecase.ExternalStandingSet{
				SeasonName:   sn.name,
				LeagueName:   ref.Name + " - " + gt.name,
				LeagueSlug:   ref.Slug + "-" + slugify(gt.name),
				LeagueStream: sourceName,
				LeagueType:   gameTypeToLeagueType(gt.name),
				SourceURL:    apiURL,
				Rows:         rows,
			})
		}
	}

	return out, nil
}

// collectOptions reads a dropdown, skipping the "0" aggregate entry
// ("All Game Types") and blank values.
func collectOptions(doc *goquery.Document, selector string) []selectOption {
	out := make([]selectOption, 0, 8)
	doc.Find(selector + " option").Each(func(_ int, opt *goquery.Selection) {
		value := strings.TrimSpace(opt.AttrOr("value", ""))
		if value == "" || value == "0" {
			return
		}
		name := strings.TrimSpace(opt.Text())
		if name == "" {
			return
		}
		out = append(out, selectOption{id: value, name: name})
	})
	return out
}

func gameTypeToLeagueType(name string) league.Type {
	if strings.Contains(strings.ToLower(name), "seeding") {
		return league.TypeSeeding
	}
	return league.TypeRegular
}

// fetchStandingRows calls the JSON endpoint and coerces its rows. The
// payload interleaves pool subheaders with team rows; subheaders carry a
// zero SID and are dropped.
func (c *Client) fetchStandingRows(ctx context.Context, apiURL string) ([]usecase.ExternalStandingRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, crerr.Wrapf(err, "build request %s", apiURL)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch %s", apiURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, crerr.Newf("fetch %s: unexpected status %d", apiURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, crerr.Wrapf(err, "read %s", apiURL)
	}

	var raw []map[string]any
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return nil, crerr.Wrapf(err, "parse %s", apiURL)
	}

	out := make([]usecase.ExternalStandingRow, 0, len(raw))
	for _, item := range raw {
		if intAny(item, "SID", "sid", "Sid") == 0 {
			continue
		}
		name := stringAny(item, "TeamName", "Team", "team_name", "Name")
		if name == "" {
			continue
		}
		row := usecase.ExternalStandingRow{
			TeamName:     name,
			GamesPlayed:  intAny(item, "GP", "gp", "GamesPlayed"),
			Wins:         intAny(item, "W", "w", "Wins"),
			Losses:       intAny(item, "L", "l", "Losses"),
			Ties:         intAny(item, "T", "t", "Ties"),
			Points:       intAny(item, "PTS", "Pts", "pts", "Points"),
			GoalsFor:     intAny(item, "GF", "gf", "GoalsFor"),
			GoalsAgainst: intAny(item, "GA", "ga", "GoalsAgainst"),
		}
		row.GoalDiff = intAny(item, "DIFF", "Diff", "diff")
		if row.GoalDiff == 0 {
			row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		}
		out = append(out, row)
	}

	return out, nil
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

func (c *Client) absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.baseURL + href
}

var slugCleanRegex = regexp.MustCompile(`[^a-z0-9-]+`)

func slugify(name string) string {
	out := strings.ToLower(strings.TrimSpace(name))
	out = strings.ReplaceAll(out, " ", "-")
	out = slugCleanRegex.ReplaceAllString(out, "")
	out = strings.Trim(out, "-")
	if out == "" {
		return "division"
	}
	return out
}

// intAny reads the first present key as an integer, tolerating the float,
// string and integer spellings the endpoint has shipped over time.
func intAny(item map[string]any, keys ...string) int {
	for _, key := range keys {
		value, ok := item[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case float64:
			return int(v)
		case int:
			return v
		case int64:
			return int(v)
		case string:
			parsed, err := strconv.Atoi(strings.TrimSpace(v))
			if err == nil {
				return parsed
			}
		}
	}
	return 0
}

func stringAny(item map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := item[key]; ok {
			if s, ok := value.(string); ok {
				if trimmed := strings.TrimSpace(s); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}
