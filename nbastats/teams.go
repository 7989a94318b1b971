package nbastats

import "fmt"

// Team is one franchise from the static directory.
type Team struct {
	ID           int
	FullName     string
	Abbreviation string
}

// nbaTeams is the static 30-franchise directory. Franchise ids are stable
// across seasons, so this is shipped with the binary rather than fetched.
var nbaTeams = []Team{
	{1610612737, "Atlanta Hawks", "ATL"},
	{1610612738, "Boston Celtics", "BOS"},
	{1610612739, "Cleveland Cavaliers", "CLE"},
	{1610612740, "New Orleans Pelicans", "NOP"},
	{1610612741, "Chicago Bulls", "CHI"},
	{1610612742, "Dallas Mavericks", "DAL"},
	{1610612743, "Denver Nuggets", "DEN"},
	{1610612744, "Golden State Warriors", "GSW"},
	{1610612745, "Houston Rockets", "HOU"},
	{1610612746, "Los Angeles Clippers", "LAC"},
	{1610612747, "Los Angeles Lakers", "LAL"},
	{1610612748, "Miami Heat", "MIA"},
	{1610612749, "Milwaukee Bucks", "MIL"},
	{1610612750, "Minnesota Timberwolves", "MIN"},
	{1610612751, "Brooklyn Nets", "BKN"},
	{1610612752, "New York Knicks", "NYK"},
	{1610612753, "Orlando Magic", "ORL"},
	{1610612754, "Indiana Pacers", "IND"},
	{1610612755, "Philadelphia 76ers", "PHI"},
	{1610612756, "Phoenix Suns", "PHX"},
	{1610612757, "Portland Trail Blazers", "POR"},
	{1610612758, "Sacramento Kings", "SAC"},
	{1610612759, "San Antonio Spurs", "SAS"},
	{1610612760, "Oklahoma City Thunder", "OKC"},
	{1610612761, "Toronto Raptors", "TOR"},
	{1610612762, "Utah Jazz", "UTA"},
	{1610612763, "Memphis Grizzlies", "MEM"},
	{1610612764, "Washington Wizards", "WAS"},
	{1610612765, "Detroit Pistons", "DET"},
	{1610612766, "Charlotte Hornets", "CHA"},
}

var teamsByID = func() map[int]Team {
	m := make(map[int]Team, len(nbaTeams))
	for _, t := range nbaTeams {
		m[t.ID] = t
	}
	return m
}()

// Teams returns the static franchise directory.
func Teams() []Team {
	return append([]Team(nil), nbaTeams...)
}

// TeamByID looks a franchise up by its stats.nba.com id.
func TeamByID(id int) (Team, error) {
	t, ok := teamsByID[id]
	if !ok {
		return Team{}, fmt.Errorf("nbastats: unknown team id %d", id)
	}
	return t, nil
}
