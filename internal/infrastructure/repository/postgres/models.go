package postgres

type seasonTableModel struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type seasonInsertModel struct {
	Name string `db:"name"`
}

type leagueTableModel struct {
	ID     int64  `db:"id"`
	Name   string `db:"name"`
	Slug   string `db:"slug"`
	Stream string `db:"stream"`
	Type   string `db:"type"`
}

type leagueInsertModel struct {
	Name   string `db:"name"`
	Slug   string `db:"slug"`
	Stream string `db:"stream"`
	Type   string `db:"type"`
}

type communityTableModel struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type communityInsertModel struct {
	Name string `db:"name"`
}

type teamTableModel struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	CommunityID int64  `db:"community_id"`
}

type teamInsertModel struct {
	Name        string `db:"name"`
	CommunityID int64  `db:"community_id"`
}

type standingTableModel struct {
	ID           int64  `db:"id"`
	SeasonID     int64  `db:"season_id"`
	LeagueID     int64  `db:"league_id"`
	TeamID       int64  `db:"team_id"`
	GamesPlayed  int    `db:"gp"`
	Wins         int    `db:"w"`
	Losses       int    `db:"l"`
	Ties         int    `db:"t"`
	Points       int    `db:"pts"`
	GoalsFor     int    `db:"gf"`
	GoalsAgainst int    `db:"ga"`
	GoalDiff     int    `db:"diff"`
	SourceURL    string `db:"source_url"`
}

type standingInsertModel struct {
	SeasonID     int64  `db:"season_id"`
	LeagueID     int64  `db:"league_id"`
	TeamID       int64  `db:"team_id"`
	GamesPlayed  int    `db:"gp"`
	Wins         int    `db:"w"`
	Losses       int    `db:"l"`
	Ties         int    `db:"t"`
	Points       int    `db:"pts"`
	GoalsFor     int    `db:"gf"`
	GoalsAgainst int    `db:"ga"`
	GoalDiff     int    `db:"diff"`
	SourceURL    string `db:"source_url"`
}

type joinedStandingModel struct {
	Season       string `db:"season"`
	League       string `db:"league"`
	Stream       string `db:"stream"`
	LeagueType   string `db:"league_type"`
	Community    string `db:"community"`
	Team         string `db:"team"`
	GamesPlayed  int    `db:"gp"`
	Wins         int    `db:"w"`
	Losses       int    `db:"l"`
	Ties         int    `db:"t"`
	Points       int    `db:"pts"`
	GoalsFor     int    `db:"gf"`
	GoalsAgainst int    `db:"ga"`
	GoalDiff     int    `db:"diff"`
	SourceURL    string `db:"source_url"`
}
