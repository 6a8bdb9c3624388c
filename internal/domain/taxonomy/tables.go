package taxonomy

import "github.com/riskibarqy/propline/internal/domain/prop"

const DefaultSport = "NBA"

var defaultPropCategories = map[string]prop.Type{
	"Points":                         prop.TypePoints,
	"Pts":                            prop.TypePoints,
	"player_points":                  prop.TypePoints,
	"Rebounds":                       prop.TypeRebounds,
	"Rebs":                           prop.TypeRebounds,
	"Total Rebounds":                 prop.TypeRebounds,
	"player_rebounds":                prop.TypeRebounds,
	"Assists":                        prop.TypeAssists,
	"Asts":                           prop.TypeAssists,
	"player_assists":                 prop.TypeAssists,
	"Steals":                         prop.TypeSteals,
	"Stls":                           prop.TypeSteals,
	"player_steals":                  prop.TypeSteals,
	"Blocks":                         prop.TypeBlocks,
	"Blocked Shots":                  prop.TypeBlocks,
	"Blks":                           prop.TypeBlocks,
	"player_blocks":                  prop.TypeBlocks,
	"Turnovers":                      prop.TypeTurnovers,
	"player_turnovers":               prop.TypeTurnovers,
	"3-PT Made":                      prop.TypeThreePointersMade,
	"3-Pointers Made":                prop.TypeThreePointersMade,
	"Three Pointers Made":            prop.TypeThreePointersMade,
	"3PM":                            prop.TypeThreePointersMade,
	"Threes":                         prop.TypeThreePointersMade,
	"Made Threes":                    prop.TypeThreePointersMade,
	"player_threes":                  prop.TypeThreePointersMade,
	"Field Goals Made":               prop.TypeFieldGoalsMade,
	"FG Made":                        prop.TypeFieldGoalsMade,
	"FGM":                            prop.TypeFieldGoalsMade,
	"player_field_goals":             prop.TypeFieldGoalsMade,
	"Free Throws Made":               prop.TypeFreeThrowsMade,
	"FT Made":                        prop.TypeFreeThrowsMade,
	"FTM":                            prop.TypeFreeThrowsMade,
	"player_frees_made":              prop.TypeFreeThrowsMade,
	"Pts+Rebs":                       prop.TypePointsRebounds,
	"Points + Rebounds":              prop.TypePointsRebounds,
	"player_points_rebounds":         prop.TypePointsRebounds,
	"Pts+Asts":                       prop.TypePointsAssists,
	"Points + Assists":               prop.TypePointsAssists,
	"player_points_assists":          prop.TypePointsAssists,
	"Rebs+Asts":                      prop.TypeReboundsAssists,
	"Rebounds + Assists":             prop.TypeReboundsAssists,
	"player_rebounds_assists":        prop.TypeReboundsAssists,
	"Pts+Rebs+Asts":                  prop.TypePointsReboundsAssists,
	"PRA":                            prop.TypePointsReboundsAssists,
	"Points + Rebounds + Assists":    prop.TypePointsReboundsAssists,
	"player_points_rebounds_assists": prop.TypePointsReboundsAssists,
	"Blks+Stls":                      prop.TypeStealsBlocks,
	"Stocks":                         prop.TypeStealsBlocks,
	"Steals + Blocks":                prop.TypeStealsBlocks,
	"player_blocks_steals":           prop.TypeStealsBlocks,
	"Double Double":                  prop.TypeDoubleDouble,
	"Double-Double":                  prop.TypeDoubleDouble,
	"player_double_double":           prop.TypeDoubleDouble,
	"Triple Double":                  prop.TypeTripleDouble,
	"Triple-Double":                  prop.TypeTripleDouble,
	"player_triple_double":           prop.TypeTripleDouble,
	"Fantasy Score":                  prop.TypeFantasyScore,
	"Fantasy Points":                 prop.TypeFantasyScore,
	"Minutes":                        prop.TypeMinutes,
	"Minutes Played":                 prop.TypeMinutes,
	"player_minutes":                 prop.TypeMinutes,
}

// nbaTeams lists abbreviation, full name and nickname per franchise.
var nbaTeams = [][3]string{
	{"ATL", "Atlanta Hawks", "Hawks"},
	{"BOS", "Boston Celtics", "Celtics"},
	{"BKN", "Brooklyn Nets", "Nets"},
	{"CHA", "Charlotte Hornets", "Hornets"},
	{"CHI", "Chicago Bulls", "Bulls"},
	{"CLE", "Cleveland Cavaliers", "Cavaliers"},
	{"DAL", "Dallas Mavericks", "Mavericks"},
	{"DEN", "Denver Nuggets", "Nuggets"},
	{"DET", "Detroit Pistons", "Pistons"},
	{"GSW", "Golden State Warriors", "Warriors"},
	{"HOU", "Houston Rockets", "Rockets"},
	{"IND", "Indiana Pacers", "Pacers"},
	{"LAC", "Los Angeles Clippers", "Clippers"},
	{"LAL", "Los Angeles Lakers", "Lakers"},
	{"MEM", "Memphis Grizzlies", "Grizzlies"},
	{"MIA", "Miami Heat", "Heat"},
	{"MIL", "Milwaukee Bucks", "Bucks"},
	{"MIN", "Minnesota Timberwolves", "Timberwolves"},
	{"NOP", "New Orleans Pelicans", "Pelicans"},
	{"NYK", "New York Knicks", "Knicks"},
	{"OKC", "Oklahoma City Thunder", "Thunder"},
	{"ORL", "Orlando Magic", "Magic"},
	{"PHI", "Philadelphia 76ers", "76ers"},
	{"PHX", "Phoenix Suns", "Suns"},
	{"POR", "Portland Trail Blazers", "Trail Blazers"},
	{"SAC", "Sacramento Kings", "Kings"},
	{"SAS", "San Antonio Spurs", "Spurs"},
	{"TOR", "Toronto Raptors", "Raptors"},
	{"UTA", "Utah Jazz", "Jazz"},
	{"WAS", "Washington Wizards", "Wizards"},
}

func defaultTeamTable() map[string]string {
	out := make(map[string]string, len(nbaTeams)*3)
	for _, team := range nbaTeams {
		for _, ident := range team {
			out[ident] = team[0]
		}
	}
	return out
}
