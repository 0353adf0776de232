package teamlinkt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
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
	defaultBaseURL = "https://leagues.teamlinkt.com"
	defaultOrgPath = "/hockeycalgary"
	sourceName     = "TeamLinkt"
)

var (
	associationIDRegex = regexp.MustCompile(`(?i)association_id\D{0,8}(\d+)`)
	yearRangeRegex     = regexp.MustCompile(`(\d{4})\s*[-/]\s*(\d{4})`)
	singleYearRegex    = regexp.MustCompile(`\b(\d{4})\b`)
	htmlTagRegex       = regexp.MustCompile(`<[^>]*>`)
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	OrgPath    string
	Timeout    time.Duration
	// ExcludeCategories lists age groups this source must skip because
	// another source owns them, e.g. U11 standings living on RAMP.
	ExcludeCategories []string
	Logger            *logging.Logger
}

// Client reads the TeamLinkt league portal. Divisions come from the
// hierarchy filter on the standings page; rows come from a JSON endpoint
// whose payload is sometimes JSON-encoded twice.
type Client struct {
	httpClient *http.Client
	baseURL    string
	orgPath    string
	exclude    []string
	logger     *logging.Logger
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
	orgPath := strings.TrimSpace(cfg.OrgPath)
	if orgPath == "" {
		orgPath = defaultOrgPath
	}
	if !strings.HasPrefix(orgPath, "/") {
		orgPath = "/" + orgPath
	}

	exclude := make([]string, 0, len(cfg.ExcludeCategories))
	for _, item := range cfg.ExcludeCategories {
		if trimmed := strings.ToUpper(strings.TrimSpace(item)); trimmed != "" {
			exclude = append(exclude, trimmed)
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		orgPath:    orgPath,
		exclude:    exclude,
		logger:     logger,
	}
}

func (c *Client) Source() string {
	return sourceName
}

func (c *Client) standingsURL() string {
	return c.baseURL + c.orgPath + "/Standings"
}

// ListLeagues reads the hierarchy filter on the standings page. Each
// option value packs the division and tier-group ids as "div-tier"; the
// pair rides along in the ref URL so the fetch step can unpack it.
func (c *Client) ListLeagues(ctx context.Context) ([]usecase.ExternalLeague, error) {
	doc, err := c.fetchDocument(ctx, c.standingsURL())
	if err != nil {
		return nil, crerr.Wrap(err, "fetch standings page")
	}

	out := make([]usecase.ExternalLeague, 0, 16)
	doc.Find("select#hierarchy_filter option").Each(func(_ int, opt *goquery.Selection) {
		value := strings.TrimSpace(opt.AttrOr("value", ""))
		if value == "" || value == "0" {
			return
		}
		name := strings.TrimSpace(opt.Text())
		if name == "" || c.isExcluded(name) {
			return
		}

		out = append(out, usecase.ExternalLeague{
			Name:   name,
			Slug:   slugify(name),
			Stream: sourceName,
			URL:    c.standingsURL() + "?hierarchy=" + url.QueryEscape(value),
		})
	})

	return out, nil
}

func (c *Client) isExcluded(name string) bool {
	upper := strings.ToUpper(name)
	for _, token := range c.exclude {
		if strings.Contains(upper, token) {
			return true
		}
	}
	return false
}

type seasonOption struct {
	id     string
	name   string
	kind   league.Type
	rawTag string
}

// FetchLeagueStandings pulls every listed season for one division. The
// season dropdown mixes phase rounds into its labels ("2024-2025 Seeding
// Round"), which decide the league type of each set.
func (c *Client) FetchLeagueStandings(ctx context.Context, ref usecase.ExternalLeague) ([]usecase.ExternalStandingSet, error) {
	parsed, err := url.Parse(ref.URL)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse ref url for %s", ref.Slug)
	}
	divisionID, tierGroupID := splitHierarchy(parsed.Query().Get("hierarchy"))
	if divisionID == "" {
		return nil, crerr.Newf("ref %s carries no hierarchy value", ref.Slug)
	}

	doc, err := c.fetchDocument(ctx, c.standingsURL())
	if err != nil {
		return nil, crerr.Wrap(err, "fetch standings page")
	}

	html, err := doc.Html()
	if err != nil {
		return nil, crerr.Wrap(err, "serialize standings page")
	}
	assnMatch := associationIDRegex.FindStringSubmatch(html)
	if assnMatch == nil {
		return nil, crerr.New("standings page carries no association id")
	}
	assnID := assnMatch[1]

	seasons := collectSeasons(doc)
	if len(seasons) == 0 {
		return nil, nil
	}

	out := make([]usecase.ExternalStandingSet, 0, len(seasons))
	for _, sn := range seasons {
		rows, apiURL, err := c.fetchStandingRows(ctx, assnID, sn.id, divisionID, tierGroupID)
		if err != nil {
			c.logger.WarnContext(ctx, "standings api call failed",
				"division", ref.Slug, "season", sn.rawTag, "error", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		out = append(out, usecase.ExternalStandingSet{
			SeasonName:   sn.name,
			LeagueName:   ref.Name,
			LeagueSlug:   ref.Slug,
			LeagueStream: sourceName,
			LeagueType:   sn.kind,
			SourceURL:    apiURL,
			Rows:         rows,
		})
	}

	return out, nil
}

func collectSeasons(doc *goquery.Document) []seasonOption {
	out := make([]seasonOption, 0, 8)
	doc.Find("select#season_id option").Each(func(_ int, opt *goquery.Selection) {
		id := strings.TrimSpace(opt.AttrOr("value", ""))
		label := strings.TrimSpace(opt.Text())
		if id == "" || id == "0" || label == "" {
			return
		}
		name := seasonNameFromLabel(label)
		if name == "" {
			return
		}
		out = append(out, seasonOption{
			id:     id,
			name:   name,
			kind:   phaseFromLabel(label),
			rawTag: label,
		})
	})
	return out
}

// seasonNameFromLabel extracts the year span from a dropdown label. Labels
// with one year get the registration-year convention (Sep-Aug), so "2025
// Fall" reads as "2025-2026".
func seasonNameFromLabel(label string) string {
	if m := yearRangeRegex.FindStringSubmatch(label); m != nil {
		return m[1] + "-" + m[2]
	}
	if m := singleYearRegex.FindStringSubmatch(label); m != nil {
		year, err := strconv.Atoi(m[1])
		if err == nil {
			return fmt.Sprintf("%d-%d", year, year+1)
		}
	}
	return ""
}

func phaseFromLabel(label string) league.Type {
	upper := strings.ToUpper(label)
	switch {
	case strings.Contains(upper, "SEEDING"):
		return league.TypeSeeding
	case strings.Contains(upper, "PLAYOFF"):
		return league.TypePlayoff
	case strings.Contains(upper, "TOURNAMENT"):
		return league.TypeTournament
	default:
		return league.TypeRegular
	}
}

func splitHierarchy(value string) (divisionID, tierGroupID string) {
	parts := strings.SplitN(strings.TrimSpace(value), "-", 2)
	divisionID = strings.TrimSpace(parts[0])
	tierGroupID = "0"
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		tierGroupID = strings.TrimSpace(parts[1])
	}
	return divisionID, tierGroupID
}

type standingsRequest struct {
	AssociationID string `json:"association_id"`
	SeasonID      string `json:"season_id"`
	DivisionID    string `json:"division_id"`
	TierGroupID   string `json:"tier_group_id"`
}

func (c *Client) fetchStandingRows(ctx context.Context, assnID, seasonID, divisionID, tierGroupID string) ([]usecase.ExternalStandingRow, string, error) {
	apiURL := c.baseURL + "/api/standings/getStandings"

	payload, err := sonic.Marshal(standingsRequest{
		AssociationID: assnID,
		SeasonID:      seasonID,
		DivisionID:    divisionID,
		TierGroupID:   tierGroupID,
	})
	if err != nil {
		return nil, apiURL, crerr.Wrap(err, "marshal standings request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, apiURL, crerr.Wrapf(err, "build request %s", apiURL)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apiURL, crerr.Wrapf(err, "fetch %s", apiURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiURL, crerr.Newf("fetch %s: unexpected status %d", apiURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apiURL, crerr.Wrapf(err, "read %s", apiURL)
	}

	items, err := decodeStandingsPayload(body)
	if err != nil {
		return nil, apiURL, err
	}

	out := make([]usecase.ExternalStandingRow, 0, len(items))
	for _, item := range items {
		name := stripHTML(stringAny(item, "team_name", "TeamName", "team", "name"))
		if name == "" {
			continue
		}
		row := usecase.ExternalStandingRow{
			TeamName:     name,
			GamesPlayed:  intAny(item, "games_played", "gp", "GP"),
			Wins:         intAny(item, "wins", "w", "W"),
			Losses:       intAny(item, "losses", "l", "L"),
			Ties:         intAny(item, "ties", "t", "T"),
			Points:       intAny(item, "points", "pts", "PTS"),
			GoalsFor:     intAny(item, "goals_for", "gf", "GF"),
			GoalsAgainst: intAny(item, "goals_against", "ga", "GA"),
		}
		row.GoalDiff = intAny(item, "diff", "goal_diff", "DIFF")
		if row.GoalDiff == 0 {
			row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		}
		out = append(out, row)
	}

	return out, apiURL, nil
}

// decodeStandingsPayload unwraps the endpoint's envelope. The data field
// has shipped both as a JSON array and as a string holding a JSON array;
// the second form needs a second unmarshal pass.
func decodeStandingsPayload(body []byte) ([]map[string]any, error) {
	var envelope struct {
		Data any `json:"data"`
	}
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return nil, crerr.Wrap(err, "parse standings envelope")
	}

	switch data := envelope.Data.(type) {
	case nil:
		return nil, nil
	case string:
		var items []map[string]any
		if err := sonic.Unmarshal([]byte(data), &items); err != nil {
			return nil, crerr.Wrap(err, "parse double-encoded standings data")
		}
		return items, nil
	case []any:
		items := make([]map[string]any, 0, len(data))
		for _, entry := range data {
			if m, ok := entry.(map[string]any); ok {
				items = append(items, m)
			}
		}
		return items, nil
	default:
		return nil, crerr.Newf("unexpected standings data shape %T", envelope.Data)
	}
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

// stripHTML flattens anchor-wrapped team cells to plain text.
func stripHTML(value string) string {
	return strings.TrimSpace(htmlTagRegex.ReplaceAllString(value, ""))
}

var slugCleanRegex = regexp.MustCompile(`[^a-z0-9-]+`)

func slugify(name string) string {
	out := strings.ToLower(strings.TrimSpace(name))
	out = strings.ReplaceAll(out, " ", "-")
	out = slugCleanRegex.ReplaceAllString(out, "")
	return strings.Trim(out, "-")
}

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
