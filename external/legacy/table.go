package legacy

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yychockey/standings-sync/internal/usecase"
)

// headerSynonyms maps the header spellings seen across site revisions to
// canonical stat fields. Matching is case-insensitive on trimmed text.
var headerSynonyms = map[string]string{
	"team":              "team",
	"gp":                "gp",
	"games played":      "gp",
	"w":                 "w",
	"wins":              "w",
	"l":                 "l",
	"losses":            "l",
	"t":                 "t",
	"ties":              "t",
	"pts":               "pts",
	"points":            "pts",
	"gf":                "gf",
	"goals for":         "gf",
	"ga":                "ga",
	"goals against":     "ga",
	"diff":              "diff",
	"goal differential": "diff",
}

const noStandingsSentinel = "no standings available"

// ParseStandingsTable scans a page for the first table that looks like a
// standings grid and parses its rows. A table qualifies when its headers
// include both a games-played and a points column; pages without one yield
// an empty slice, not an error.
func ParseStandingsTable(doc *goquery.Document) []usecase.ExternalStandingRow {
	var rows []usecase.ExternalStandingRow
	doc.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		cols := headerColumns(tbl)
		if cols == nil {
			return true
		}
		rows = parseTableRows(tbl, cols)
		return false
	})
	return rows
}

// headerColumns resolves a table's header row into a field-to-index map,
// or nil when the table is not a standings grid.
func headerColumns(tbl *goquery.Selection) map[string]int {
	header := tbl.Find("tr").First().Find("th")
	if header.Length() == 0 {
		header = tbl.Find("tr").First().Find("td")
	}
	if header.Length() == 0 {
		return nil
	}

	cols := make(map[string]int, header.Length())
	header.Each(func(idx int, cell *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(cell.Text()))
		field, ok := headerSynonyms[label]
		if !ok {
			return
		}
		if _, taken := cols[field]; !taken {
			cols[field] = idx
		}
	})

	if _, ok := cols["gp"]; !ok {
		return nil
	}
	if _, ok := cols["pts"]; !ok {
		return nil
	}
	return cols
}

func parseTableRows(tbl *goquery.Selection, cols map[string]int) []usecase.ExternalStandingRow {
	out := make([]usecase.ExternalStandingRow, 0, 12)
	tbl.Find("tr").Each(func(idx int, tr *goquery.Selection) {
		if idx == 0 {
			return
		}
		cells := tr.Find("td")
		if cells.Length() < 3 {
			return
		}
		if strings.Contains(strings.ToLower(tr.Text()), noStandingsSentinel) {
			return
		}

		teamIdx, ok := cols["team"]
		if !ok {
			teamIdx = 0
		}
		teamName := strings.TrimSpace(cells.Eq(teamIdx).Text())
		if teamName == "" {
			return
		}

		row := usecase.ExternalStandingRow{
			TeamName:     teamName,
			GamesPlayed:  cellInt(cells, cols, "gp"),
			Wins:         cellInt(cells, cols, "w"),
			Losses:       cellInt(cells, cols, "l"),
			Ties:         cellInt(cells, cols, "t"),
			Points:       cellInt(cells, cols, "pts"),
			GoalsFor:     cellInt(cells, cols, "gf"),
			GoalsAgainst: cellInt(cells, cols, "ga"),
		}
		if _, ok := cols["diff"]; ok {
			row.GoalDiff = cellInt(cells, cols, "diff")
		} else {
			row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		}
		out = append(out, row)
	})
	return out
}

// cellInt reads a numeric cell, tolerating missing columns, short rows and
// junk text, all of which read as zero.
func cellInt(cells *goquery.Selection, cols map[string]int, field string) int {
	idx, ok := cols[field]
	if !ok || idx >= cells.Length() {
		return 0
	}
	text := strings.TrimSpace(cells.Eq(idx).Text())
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0
	}
	return value
}
