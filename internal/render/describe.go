package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/DoyleJ11/rink-sequences/internal/graph"
	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

// Describe returns the one-sentence narration shown on the play card, or ""
// for events without one.
func Describe(p types.Play) string {
	switch p.Event {
	case graph.EventPlay:
		return fmt.Sprintf("%s pass from %s to %s.", p.Detail1, p.Player, p.Player2)
	case graph.EventDumpInOut:
		return fmt.Sprintf("%s by %s. %s.", p.Event, p.Player, p.Detail1)
	case graph.EventPuckRecovery, graph.EventTakeaway:
		return fmt.Sprintf("%s by %s.", p.Event, p.Player)
	case graph.EventZoneEntry, graph.EventFaceoffWin:
		return fmt.Sprintf("%s by %s.", p.Detail1, p.Player)
	case graph.EventIncompletePlay:
		return fmt.Sprintf("Incomplete %s pass from %s to %s.", strings.ToLower(p.Detail1), p.Player, p.Player2)
	case graph.EventShot:
		parts := []string{p.Detail1}
		if p.Detail4 == "t" {
			parts = append(parts, "one timer")
		}
		parts = append(parts, strings.ToLower(p.Detail2))
		if p.Detail3 == "t" {
			parts = append(parts, "with traffic")
		}
		parts = append(parts, "from "+p.Player+".")
		return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	default:
		return ""
	}
}

// Card is the play detail panel.
type Card struct {
	AwayTeam    string
	AwaySkaters string
	HomeTeam    string
	HomeSkaters string
	Score       string
	PeriodClock string
	Heading     string
	Description string
}

func CardFor(p types.Play) Card {
	return Card{
		AwayTeam:    p.AwayTeam,
		AwaySkaters: fmt.Sprintf("%d skaters", p.AwayTeamSkaters),
		HomeTeam:    p.HomeTeam,
		HomeSkaters: fmt.Sprintf("%d skaters", p.HomeTeamSkaters),
		Score:       fmt.Sprintf("%d : %d", p.AwayTeamGoals, p.HomeTeamGoals),
		PeriodClock: fmt.Sprintf("%d - %s", p.Period, p.Clock),
		Heading:     fmt.Sprintf("%s - %s", p.Event, p.Team),
		Description: Describe(p),
	}
}

func attr(s string) string {
	return html.EscapeString(s)
}
