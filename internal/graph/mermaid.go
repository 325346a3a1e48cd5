package graph

import (
	"fmt"
	"strings"

	"github.com/DoyleJ11/rink-sequences/pkg/types"
)

// Mermaid renders the graph as a left-to-right flowchart. Receiver nodes are
// labelled with the pass target; indirect passes use a dotted edge.
func Mermaid(g Graph, plays []types.Play) string {
	var sb strings.Builder
	sb.WriteString("flowchart LR\n")

	for _, n := range g.Nodes {
		label := "?"
		if n.PlayIndex >= 0 && n.PlayIndex < len(plays) {
			p := plays[n.PlayIndex]
			if n.Secondary {
				label = p.Player2
			} else {
				label = fmt.Sprintf("%s: %s", p.Event, p.Player)
			}
		}
		shape := `["%s"]`
		if n.Secondary {
			shape = `(["%s"])`
		}
		sb.WriteString(fmt.Sprintf("    n%d"+shape+"\n", n.ID, escapeMermaid(label)))
	}

	for _, l := range g.Links {
		arrow := "-->"
		if l.Dashed {
			arrow = "-.->"
		}
		if l.Kind == LinkPass {
			arrow += "|pass|"
		}
		sb.WriteString(fmt.Sprintf("    n%d %s n%d\n", l.Source, arrow, l.Target))
	}

	for _, n := range g.Nodes {
		if n.Color != "" {
			sb.WriteString(fmt.Sprintf("    style n%d fill:%s\n", n.ID, n.Color))
		}
	}

	return sb.String()
}

func escapeMermaid(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "#quot;")
	s = strings.ReplaceAll(s, "<", "#lt;")
	s = strings.ReplaceAll(s, ">", "#gt;")
	return s
}
