package match

// Player is a roster entry used to map team/jersey pairs in the
// tracking feed to player names.
type Player struct {
	TeamID int64  `json:"team_id"`
	Jersey int64  `json:"jersey_no"`
	Name   string `json:"name"`
}

// Metadata describes the fixture the two datasets belong to. Pitch
// dimensions feed the coordinate converter; the roster feeds the
// jersey-mapping ingestion transform.
type Metadata struct {
	MatchID     string   `json:"match_id"`
	Competition string   `json:"competition,omitempty"`
	KickoffUTC  string   `json:"kickoff_utc,omitempty"`
	HomeTeamID  int64    `json:"home_team_id"`
	AwayTeamID  int64    `json:"away_team_id"`
	PitchLength float64  `json:"pitch_length_m"`
	PitchWidth  float64  `json:"pitch_width_m"`
	Players     []Player `json:"players,omitempty"`
}

// PlayerName resolves a team/jersey pair against the roster. Returns
// the empty string when no entry matches.
func (m *Metadata) PlayerName(teamID, jersey int64) string {
	for _, p := range m.Players {
		if p.TeamID == teamID && p.Jersey == jersey {
			return p.Name
		}
	}
	return ""
}
