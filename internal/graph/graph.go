package graph

import (
	"github.com/DoyleJ11/rink-sequences/internal/scale"
	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

const (
	EventPlay           = "Play"
	EventIncompletePlay = "Incomplete Play"
	EventPuckRecovery   = "Puck Recovery"
	EventZoneEntry      = "Zone Entry"
	EventShot           = "Shot"
	EventGoal           = "Goal"
	EventFaceoffWin     = "Faceoff Win"
	EventTakeaway       = "Takeaway"
	EventDumpInOut      = "Dump In/Out"
)

// ChronologicalColor is the stroke of links between consecutive plays.
const ChronologicalColor = "grey"

// IndirectPass is the detail_1 value marking a pass off the boards.
const IndirectPass = "Indirect"

var EventColors = map[string]string{
	EventPlay:           "#27ae60",
	EventIncompletePlay: "#c0392b",
	EventPuckRecovery:   "#2980b9",
	EventZoneEntry:      "#95a5a6",
	EventShot:           "#3498db",
	EventGoal:           "#f39c12",
}

// ColorFor returns "" for events without a mapped colour.
func ColorFor(event string) string {
	return EventColors[event]
}

// IsPassLike reports whether the event carries a receiver coordinate.
func IsPassLike(event string) bool {
	return event == EventPlay || event == EventIncompletePlay
}

type LinkKind string

const (
	LinkChronological LinkKind = "chronological"
	LinkPass          LinkKind = "pass"
)

// Node IDs are emission order. PlayIndex points back into the play list the
// graph was built from.
type Node struct {
	ID        int     `json:"id"`
	PlayIndex int     `json:"play_index"`
	Secondary bool    `json:"secondary"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Color     string  `json:"color,omitempty"`
}

type Link struct {
	Source int      `json:"source"`
	Target int      `json:"target"`
	Kind   LinkKind `json:"kind"`
	Dashed bool     `json:"dashed"`
	Color  string   `json:"color"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Build turns a time-ordered play list into a node/link diagram in one pass.
// Each play gets a primary node; pass-like plays also get a receiver node
// joined by a pass link. Consecutive plays are joined by a chronological link
// from the last node emitted for the previous play.
func Build(plays []types.Play, s scale.Scale) Graph {
	g := Graph{
		Nodes: []Node{},
		Links: []Link{},
	}

	for i, play := range plays {
		color := ColorFor(play.Event)

		primary := Node{
			ID:        len(g.Nodes),
			PlayIndex: i,
			X:         play.X * s.X,
			Y:         play.Y * s.Y,
			Color:     color,
		}

		if i > 0 {
			prev := g.Nodes[len(g.Nodes)-1]
			g.Links = append(g.Links, Link{
				Source: prev.ID,
				Target: primary.ID,
				Kind:   LinkChronological,
				Color:  ChronologicalColor,
			})
		}
		g.Nodes = append(g.Nodes, primary)

		if IsPassLike(play.Event) {
			receiver := Node{
				ID:        len(g.Nodes),
				PlayIndex: i,
				Secondary: true,
				X:         play.X2 * s.X,
				Y:         play.Y2 * s.Y,
				Color:     color,
			}
			g.Nodes = append(g.Nodes, receiver)
			g.Links = append(g.Links, Link{
				Source: primary.ID,
				Target: receiver.ID,
				Kind:   LinkPass,
				Dashed: play.Detail1 == IndirectPass,
				Color:  color,
			})
		}
	}

	return g
}

func (g Graph) Empty() bool {
	return len(g.Nodes) == 0
}

// Node looks a node up by ID.
func (g Graph) Node(id int) (Node, bool) {
	if id < 0 || id >= len(g.Nodes) {
		return Node{}, false
	}
	return g.Nodes[id], true
}

// AnnotationNode returns the primary node of the play at playIndex.
func (g Graph) AnnotationNode(playIndex int) (Node, bool) {
	for _, n := range g.Nodes {
		if n.PlayIndex == playIndex && !n.Secondary {
			return n, true
		}
	}
	return Node{}, false
}
