package tournament

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestParseBracket_AccumulatesRecords(t *testing.T) {
	doc := mustDoc(t, `
<div class="bracket_game">
  <div class="home_team"><span class="team_name">Springbank 2</span><span class="team_score">4</span></div>
  <div class="visitor_team"><span class="team_name">Bow Valley 1</span><span class="team_score">2</span></div>
</div>
<div class="bracket_game">
  <div class="home_team"><span class="team_name">Springbank 2</span><span class="team_score">3</span></div>
  <div class="visitor_team"><span class="team_name">Bow Valley 1</span><span class="team_score">3</span></div>
</div>`)

	rows := ParseBracket(doc)
	if len(rows) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(rows))
	}

	a := rows[0]
	if a.TeamName != "Springbank 2" {
		t.Fatalf("expected winner sorted first, got %q", a.TeamName)
	}
	if a.GamesPlayed != 2 || a.Wins != 1 || a.Losses != 0 || a.Ties != 1 {
		t.Fatalf("unexpected record for %s: %+v", a.TeamName, a)
	}
	if a.Points != 3 || a.GoalsFor != 7 || a.GoalsAgainst != 5 || a.GoalDiff != 2 {
		t.Fatalf("unexpected stats for %s: %+v", a.TeamName, a)
	}

	b := rows[1]
	if b.TeamName != "Bow Valley 1" {
		t.Fatalf("unexpected second team %q", b.TeamName)
	}
	if b.GamesPlayed != 2 || b.Wins != 0 || b.Losses != 1 || b.Ties != 1 {
		t.Fatalf("unexpected record for %s: %+v", b.TeamName, b)
	}
	if b.Points != 1 || b.GoalsFor != 5 || b.GoalsAgainst != 7 || b.GoalDiff != -2 {
		t.Fatalf("unexpected stats for %s: %+v", b.TeamName, b)
	}
}

func TestParseBracket_SkipsUnplayedGames(t *testing.T) {
	doc := mustDoc(t, `
<div class="bracket_game">
  <div class="home_team"><span class="team_name">Winner of Game 3</span><span class="team_score"></span></div>
  <div class="visitor_team"><span class="team_name">Glenlake 4</span><span class="team_score"></span></div>
</div>
<div class="bracket_game">
  <div class="home_team"><span class="team_name">Knights 1</span><span class="team_score">5</span></div>
  <div class="visitor_team"><span class="team_name">Raiders 2</span></div>
</div>`)

	if rows := ParseBracket(doc); len(rows) != 0 {
		t.Fatalf("expected no rows from unplayed games, got %d", len(rows))
	}
}

func TestParseBracket_FlatMarkup(t *testing.T) {
	doc := mustDoc(t, `
<div class="game">
  <div class="home">McKnight White 6</div>
  <div class="visitor">Trails West 3 1</div>
</div>`)

	rows := ParseBracket(doc)
	if len(rows) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(rows))
	}
	if rows[0].TeamName != "McKnight White" || rows[0].GoalsFor != 6 || rows[0].Wins != 1 {
		t.Fatalf("unexpected winner row: %+v", rows[0])
	}
	if rows[1].TeamName != "Trails West 3" || rows[1].GoalsFor != 1 || rows[1].Losses != 1 {
		t.Fatalf("unexpected loser row: %+v", rows[1])
	}
}

func TestCollectCategoryRefs(t *testing.T) {
	doc := mustDoc(t, `
<a href="/tournament/brackets/season/2025-2026/tournament/city-championships/page/home/category/u13/league/u13-tier-2">U13 Tier 2</a>
<a href="/tournament/brackets/season/2025-2026/tournament/city-championships/page/home/category/u13/league/u13-tier-2">U13 Tier 2 (dup)</a>
<a href="/tournament/brackets/season/2025-2026/tournament/city-championships/page/home/category/u15/league/u15-tier-1">U15 Tier 1</a>
<a href="/some/other/page">Elsewhere</a>`)

	refs := collectCategoryRefs(doc)
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d: %+v", len(refs), refs)
	}
	if refs[0].category != "u13" || refs[0].league != "u13-tier-2" {
		t.Fatalf("unexpected first ref: %+v", refs[0])
	}
	if refs[1].category != "u15" || refs[1].league != "u15-tier-1" {
		t.Fatalf("unexpected second ref: %+v", refs[1])
	}
}
