package engine

import (
	"slices"

	"github.com/DoyleJ11/rink-sequences/internal/graph"
	"github.com/DoyleJ11/rink-sequences/internal/scale"
	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

type Mark struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

type Slider struct {
	Min   int `json:"min"`
	Max   int `json:"max"`
	Value int `json:"value"`
}

// View is everything a renderer needs, derived from State.
type View struct {
	Games            []types.Game     `json:"games"`
	SelectedGame     *types.Game      `json:"selected_game"`
	EventOptions     []string         `json:"event_options"`
	Events           []string         `json:"events"`
	Period           int              `json:"period"`
	Sequences        []types.Sequence `json:"sequences"`
	SelectedSequence string           `json:"selected_sequence,omitempty"`
	Marks            []Mark           `json:"marks"`
	Slider           Slider           `json:"slider"`
	Plays            []types.Play     `json:"plays"`
	SelectedPlay     *int             `json:"selected_play"`
	Play             *types.Play      `json:"play,omitempty"`
	CanPrev          bool             `json:"can_prev"`
	CanNext          bool             `json:"can_next"`
	Scale            scale.Scale      `json:"scale"`
	Graph            graph.Graph      `json:"graph"`
	Annotation       *graph.Node      `json:"annotation"`
	Diagram          bool             `json:"diagram"`
	Loading          Loading          `json:"loading"`
	Errors           LoadErrors       `json:"errors"`
}

func Derive(s State) View {
	v := View{
		Games:            s.Games,
		EventOptions:     EventOptions,
		Events:           s.Events,
		Period:           s.Period,
		Sequences:        s.Filtered,
		SelectedSequence: s.SelectedSequence,
		Marks:            Marks(s.Filtered),
		Slider:           sliderFor(s),
		Plays:            s.Plays,
		CanPrev:          CanPrev(s),
		CanNext:          CanNext(s),
		Scale:            scale.Fit(s.Viewport.Width, s.Viewport.Height),
		Loading:          s.Loading,
		Errors:           s.Errors,
	}

	if s.SelectedGame != "" {
		if i := slices.IndexFunc(s.Games, func(g types.Game) bool { return g.Date == s.SelectedGame }); i >= 0 {
			g := s.Games[i]
			v.SelectedGame = &g
		}
	}

	v.Graph = graph.Build(s.Plays, v.Scale)

	if s.SelectedPlay >= 0 && s.SelectedPlay < len(s.Plays) {
		idx := s.SelectedPlay
		p := s.Plays[idx]
		v.SelectedPlay = &idx
		v.Play = &p
		if n, ok := v.Graph.AnnotationNode(idx); ok {
			v.Annotation = &n
		}
	}
	v.Diagram = !v.Graph.Empty() && v.Annotation != nil

	return v
}

// Marks are the selectable slider points, one per filtered sequence.
func Marks(filtered []types.Sequence) []Mark {
	marks := make([]Mark, 0, len(filtered))
	for _, q := range filtered {
		marks = append(marks, Mark{Value: q.StartTime, Label: q.StartClock})
	}
	return marks
}

// MarkLabel is the start clock of the sequence starting at value, or "".
func MarkLabel(filtered []types.Sequence, value int) string {
	for _, q := range filtered {
		if q.StartTime == value {
			return q.StartClock
		}
	}
	return ""
}

func sliderFor(s State) Slider {
	lo, hi := SliderDomain(s.Period)
	value := lo
	if s.Mark != nil && *s.Mark != 0 {
		value = *s.Mark
	}
	return Slider{Min: lo, Max: hi, Value: value}
}
