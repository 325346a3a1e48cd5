package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Game:
//   game_date: string (identity, one game per date)
//   home_team: string
//   away_team: string
type Game struct {
	Date     string `json:"game_date"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// Label is the picker text for a game.
func (g Game) Label() string {
	return fmt.Sprintf("%s: %s vs. %s", g.Date, g.HomeTeam, g.AwayTeam)
}

// Sequence:
//   id: string
//   team: string
//   game_date: string
//   events: string[] (event labels present in the sequence)
//   start_clock: string
//   start_time: number (seconds from the start of the game)
//   period: 1 | 2 | 3
type Sequence struct {
	ID         string    `json:"id"`
	Team       string    `json:"team"`
	GameDate   string    `json:"game_date"`
	Events     EventList `json:"events"`
	StartClock string    `json:"start_clock"`
	StartTime  int       `json:"start_time"`
	Period     int       `json:"period"`
}

// Play is one timestamped event. X2/Y2 are only meaningful for pass-like events.
type Play struct {
	X               float64 `json:"x_coord"`
	Y               float64 `json:"y_coord"`
	GameDate        string  `json:"game_date"`
	HomeTeam        string  `json:"home_team"`
	HomeTeamGoals   int     `json:"home_team_goals"`
	HomeTeamSkaters int     `json:"home_team_skaters"`
	AwayTeam        string  `json:"away_team"`
	AwayTeamGoals   int     `json:"away_team_goals"`
	AwayTeamSkaters int     `json:"away_team_skaters"`
	Team            string  `json:"team"`
	Clock           string  `json:"clock"`
	Period          int     `json:"period"`
	Event           string  `json:"event"`
	Player          string  `json:"player"`
	Detail1         string  `json:"detail_1"`
	Detail2         string  `json:"detail_2"`
	Detail3         string  `json:"detail_3"`
	Detail4         string  `json:"detail_4"`
	Player2         string  `json:"player_2"`
	X2              float64 `json:"x_coord_2"`
	Y2              float64 `json:"y_coord_2"`
	SecondsElapsed  float64 `json:"seconds_elapsed"`
}

// EventList is the set of event labels present in a sequence. It decodes
// from a JSON array, and also from the older single-string form
// ("Shot,Faceoff Win" or "{Shot,\"Faceoff Win\"}"). It always encodes as an array.
type EventList []string

func (l EventList) Has(label string) bool {
	return slices.Contains(l, label)
}

func (l EventList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func (l *EventList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = parseEventString(s)
		return nil
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	*l = labels
	return nil
}

func parseEventString(s string) EventList {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	if s == "" {
		return EventList{}
	}
	parts := strings.Split(s, ",")
	out := make(EventList, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
