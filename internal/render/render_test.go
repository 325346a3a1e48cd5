package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/rink-sequences/internal/engine"
	"github.com/DoyleJ11/rink-sequences/internal/graph"
	"github.com/DoyleJ11/rink-sequences/internal/scale"
	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

func samplePlays() []types.Play {
	return []types.Play{
		{Event: "Faceoff Win", X: 100, Y: 42.5, Detail1: "Faceoff", Player: "A"},
		{Event: "Play", X: 100, Y: 20, X2: 150, Y2: 20, Detail1: "Indirect", Player: "A", Player2: "B"},
		{Event: "Takeaway", X: 160, Y: 30, Player: "C"},
	}
}

func render(t *testing.T, plays []types.Play, sc scale.Scale, selected int) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RinkSVG(&buf, graph.Build(plays, sc), sc, selected))
	return buf.String()
}

func TestRinkSVG_DrawsGraph(t *testing.T) {
	out := render(t, samplePlays(), scale.Scale{X: 2, Y: 2}, 0)

	assert.Contains(t, out, `width="400.00" height="170.00"`)
	assert.Equal(t, 4, strings.Count(out, `class="node"`))
	assert.Equal(t, 3, strings.Count(out, `<line class="link`))
	assert.Contains(t, out, `stroke-dasharray="8,4"`)
	// takeaway has no mapped colour
	assert.Contains(t, out, `fill="grey"`)
	assert.Contains(t, out, `class="annotation"`)
	// annotation circle sits at (200,85)+(20,20)
	assert.Contains(t, out, `cx="220.00" cy="105.00" r="10"`)
}

func TestRinkSVG_VerticalLinkHasNoArrow(t *testing.T) {
	out := render(t, samplePlays(), scale.Scale{X: 1, Y: 1}, 0)

	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, `class="link chronological"`) || !strings.Contains(line, `x1="100.00"`) {
			continue
		}
		// faceoff (100,42.5) -> pass origin (100,20)
		assert.NotContains(t, line, "marker-end")
		return
	}
	t.Fatalf("vertical link not found in\n%s", out)
}

func TestRinkSVG_NoSelectionNoGraph(t *testing.T) {
	out := render(t, samplePlays(), scale.Scale{X: 1, Y: 1}, -1)
	assert.NotContains(t, out, `class="node"`)
	assert.NotContains(t, out, `class="annotation"`)
	assert.Contains(t, out, `class="rink"`)
}

func TestRinkSVG_ZeroScale(t *testing.T) {
	out := render(t, samplePlays(), scale.Fit(0, 300), 0)
	assert.Contains(t, out, `width="0.00" height="0.00"`)
	assert.NotContains(t, out, `class="rink"`)
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		name string
		play types.Play
		want string
	}{
		{"pass", types.Play{Event: "Play", Detail1: "Direct", Player: "A", Player2: "B"}, "Direct pass from A to B."},
		{"dump", types.Play{Event: "Dump In/Out", Detail1: "Retained", Player: "A"}, "Dump In/Out by A. Retained."},
		{"recovery", types.Play{Event: "Puck Recovery", Player: "A"}, "Puck Recovery by A."},
		{"takeaway", types.Play{Event: "Takeaway", Player: "A"}, "Takeaway by A."},
		{"zone entry", types.Play{Event: "Zone Entry", Detail1: "Carried", Player: "A"}, "Carried by A."},
		{"faceoff", types.Play{Event: "Faceoff Win", Detail1: "Backhand", Player: "A"}, "Backhand by A."},
		{"incomplete", types.Play{Event: "Incomplete Play", Detail1: "Indirect", Player: "A", Player2: "B"}, "Incomplete indirect pass from A to B."},
		{"shot", types.Play{Event: "Shot", Detail1: "Snapshot", Detail2: "On Net", Player: "A"}, "Snapshot on net from A."},
		{"shot one timer traffic", types.Play{Event: "Shot", Detail1: "Slapshot", Detail2: "Missed", Detail3: "t", Detail4: "t", Player: "A"}, "Slapshot one timer missed with traffic from A."},
		{"goal", types.Play{Event: "Goal", Player: "A"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Describe(tc.play))
		})
	}
}

func TestCardFor(t *testing.T) {
	c := CardFor(types.Play{
		Event: "Shot", Team: "BOS", AwayTeam: "TOR", HomeTeam: "BOS",
		AwayTeamGoals: 1, HomeTeamGoals: 2, AwayTeamSkaters: 5, HomeTeamSkaters: 4,
		Period: 2, Clock: "12:01",
	})
	assert.Equal(t, "1 : 2", c.Score)
	assert.Equal(t, "2 - 12:01", c.PeriodClock)
	assert.Equal(t, "Shot - BOS", c.Heading)
	assert.Equal(t, "4 skaters", c.HomeSkaters)
}

func TestPage(t *testing.T) {
	s := engine.NewState(engine.Rules{Viewport: engine.Viewport{Width: 400, Height: 170}})
	s.Games = []types.Game{{Date: "2023-01-10", HomeTeam: "BOS", AwayTeam: "TOR"}}
	s.SelectedGame = "2023-01-10"
	s.SelectedSequence = "s1"
	s.Plays = samplePlays()
	s.SelectedPlay = 1
	s.Errors.Sequences = "boom"

	var buf bytes.Buffer
	require.NoError(t, Page(&buf, "abc", engine.Derive(s)))
	out := buf.String()

	assert.Contains(t, out, `data-session="abc"`)
	assert.Contains(t, out, "2023-01-10: BOS vs. TOR")
	assert.Contains(t, out, "Could not load sequences: boom")
	assert.Contains(t, out, "Indirect pass from A to B.")
	assert.Contains(t, out, `class="annotation"`)
	assert.NotContains(t, out, `id="prev" disabled`)
}

func TestPage_NoSequencesShowsBareRink(t *testing.T) {
	s := engine.NewState(engine.Rules{Viewport: engine.Viewport{Width: 400, Height: 170}})
	s.Games = []types.Game{{Date: "2023-01-10", HomeTeam: "BOS", AwayTeam: "TOR"}}
	s.SelectedGame = "2023-01-10"

	var buf bytes.Buffer
	require.NoError(t, Page(&buf, "abc", engine.Derive(s)))
	out := buf.String()

	assert.Contains(t, out, `class="rink"`)
	assert.NotContains(t, out, `class="node"`)
	assert.Contains(t, out, "No play selected.")
}
