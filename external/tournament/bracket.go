package tournament

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yychockey/standings-sync/internal/usecase"
)

// placeholderRegex matches the feeder slots of games whose participants
// are not decided yet ("Winner of Game 3").
var placeholderRegex = regexp.MustCompile(`(?i)^(winner|loser)\s+of\s+game\b`)

type bracketSide struct {
	name     string
	score    int
	hasScore bool
}

// ParseBracket reconstructs win/loss records from a playoff bracket. Each
// completed game contributes one row per side: two points for a win, one
// for a tie. Games with a placeholder participant or a missing score have
// not been played and are ignored.
func ParseBracket(doc *goquery.Document) []usecase.ExternalStandingRow {
	type agg struct {
		usecase.ExternalStandingRow
	}
	teams := make(map[string]*agg, 16)

	record := func(side, opponent bracketSide) {
		row, ok := teams[side.name]
		if !ok {
			row = &agg{ExternalStandingRow: usecase.ExternalStandingRow{TeamName: side.name}}
			teams[side.name] = row
		}
		row.GamesPlayed++
		row.GoalsFor += side.score
		row.GoalsAgainst += opponent.score
		switch {
		case side.score > opponent.score:
			row.Wins++
			row.Points += 2
		case side.score < opponent.score:
			row.Losses++
		default:
			row.Ties++
			row.Points++
		}
	}

	doc.Find("div.bracket_game, td.bracket_game, div.game").Each(func(_ int, block *goquery.Selection) {
		home := parseSide(block, ".home_team, .home")
		visitor := parseSide(block, ".visitor_team, .visitor")
		if !playableGame(home, visitor) {
			return
		}
		record(home, visitor)
		record(visitor, home)
	})

	out := make([]usecase.ExternalStandingRow, 0, len(teams))
	for _, row := range teams {
		row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		out = append(out, row.ExternalStandingRow)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].TeamName < out[j].TeamName
	})
	return out
}

func parseSide(block *goquery.Selection, selector string) bracketSide {
	node := block.Find(selector).First()
	if node.Length() == 0 {
		return bracketSide{}
	}

	name := strings.TrimSpace(node.Find(".team_name, .name").First().Text())
	scoreText := strings.TrimSpace(node.Find(".team_score, .score").First().Text())
	if name == "" && scoreText == "" {
		// Flat markup: "Team Name 4" in a single cell.
		name, scoreText = splitNameScore(node.Text())
	}

	side := bracketSide{name: name}
	if score, err := strconv.Atoi(scoreText); err == nil {
		side.score = score
		side.hasScore = true
	}
	return side
}

func playableGame(home, visitor bracketSide) bool {
	if home.name == "" || visitor.name == "" {
		return false
	}
	if placeholderRegex.MatchString(home.name) || placeholderRegex.MatchString(visitor.name) {
		return false
	}
	return home.hasScore && visitor.hasScore
}

// splitNameScore peels a trailing integer score off a combined cell.
func splitNameScore(text string) (name, score string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) < 2 {
		return strings.TrimSpace(text), ""
	}
	last := fields[len(fields)-1]
	if _, err := strconv.Atoi(last); err != nil {
		return strings.TrimSpace(text), ""
	}
	return strings.Join(fields[:len(fields)-1], " "), last
}
