package tournament

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/yychockey/standings-sync/external/legacy"
	"github.com/yychockey/standings-sync/internal/domain/league"
	"github.com/yychockey/standings-sync/internal/domain/season"
	"github.com/yychockey/standings-sync/internal/platform/logging"
	"github.com/yychockey/standings-sync/internal/usecase"
)

const sourceName = "tournament"

// Event is one recurring tournament hosted on the legacy site.
type Event struct {
	Slug string
	Name string
	Type league.Type
}

// DefaultEvents lists the tournaments the association runs every year.
// City championships crown the season, so they count as playoffs; minor
// hockey week is an in-season showcase.
func DefaultEvents() []Event {
	return []Event{
		{Slug: "city-championships", Name: "City Championships", Type: league.TypePlayoff},
		{Slug: "esso-minor-hockey-week", Name: "Esso Minor Hockey Week", Type: league.TypeTournament},
	}
}

type ClientConfig struct {
	Site   *legacy.Client
	Events []Event
	Logger *logging.Logger
}

// Client crawls tournament microsites hosted on the legacy platform. Each
// event publishes per-category pages that carry either a standings table
// or a playoff bracket.
type Client struct {
	site   *legacy.Client
	events []Event
	logger *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	events := cfg.Events
	if len(events) == 0 {
		events = DefaultEvents()
	}
	return &Client{
		site:   cfg.Site,
		events: events,
		logger: logger,
	}
}

func (c *Client) Source() string {
	return sourceName
}

// FetchSeason probes every known event for one season. Events that did not
// run that year 404 on their content page; those are skipped quietly.
func (c *Client) FetchSeason(ctx context.Context, seasonName string) ([]usecase.ExternalTournamentSet, error) {
	if c.site == nil {
		return nil, crerr.New("tournament client has no site client")
	}

	slug := season.CanonicalName(seasonName)
	if slug == "" {
		return nil, crerr.New("season name is required")
	}

	out := make([]usecase.ExternalTournamentSet, 0, 8)
	for _, event := range c.events {
		sets := c.fetchEvent(ctx, slug, seasonName, event)
		out = append(out, sets...)
	}
	return out, nil
}

type categoryRef struct {
	category string
	league   string
}

func (c *Client) fetchEvent(ctx context.Context, seasonSlug, seasonName string, event Event) []usecase.ExternalTournamentSet {
	contentURL := fmt.Sprintf("%s/tournament/content/season/%s/tournament/%s/page/home",
		c.site.BaseURL(), seasonSlug, event.Slug)

	doc, err := c.site.FetchDocument(ctx, contentURL)
	if err != nil {
		c.logger.DebugContext(ctx, "tournament content page unavailable",
			"event", event.Slug, "season", seasonSlug, "error", err)
		return nil
	}

	refs := collectCategoryRefs(doc)
	out := make([]usecase.ExternalTournamentSet, 0, len(refs))
	for _, ref := range refs {
		bracketURL := fmt.Sprintf("%s/tournament/brackets/season/%s/tournament/%s/page/home/category/%s/league/%s",
			c.site.BaseURL(), seasonSlug, event.Slug, ref.category, ref.league)

		bdoc, err := c.site.FetchDocument(ctx, bracketURL)
		if err != nil {
			c.logger.WarnContext(ctx, "bracket page fetch failed",
				"event", event.Slug, "category", ref.category, "league", ref.league, "error", err)
			continue
		}

		// Round-robin categories publish a plain standings table; knockout
		// categories only have the bracket to reconstruct records from.
		rows := legacy.ParseStandingsTable(bdoc)
		if len(rows) == 0 {
			rows = ParseBracket(bdoc)
		}
		if len(rows) == 0 {
			continue
		}

		out = append(out, usecase.ExternalTournamentSet{
			SeasonName:   seasonName,
			LeagueName:   event.Name + " " + strings.ToUpper(displayToken(ref.league)),
			LeagueSlug:   event.Slug + "-" + ref.league,
			LeagueStream: sourceName,
			LeagueType:   event.Type,
			SourceURL:    bracketURL,
			Rows:         rows,
		})
	}
	return out
}

// collectCategoryRefs pulls the per-category league links off an event's
// home page.
func collectCategoryRefs(doc *goquery.Document) []categoryRef {
	seen := make(map[string]struct{}, 16)
	out := make([]categoryRef, 0, 16)
	doc.Find("a[href*='/league/']").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		category := pathSegmentAfter(href, "category")
		leagueSlug := pathSegmentAfter(href, "league")
		if leagueSlug == "" {
			return
		}
		if category == "" {
			category = leagueSlug
		}
		key := category + "/" + leagueSlug
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, categoryRef{category: category, league: leagueSlug})
	})
	return out
}

func displayToken(slug string) string {
	return strings.ReplaceAll(slug, "-", " ")
}

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
