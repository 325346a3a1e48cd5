package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/DoyleJ11/rink-sequences/internal/graph"
	"github.com/DoyleJ11/rink-sequences/internal/scale"
)

// Drawing constants, in SVG user units.
const (
	NodeRadius        = 8
	LinkWidth         = 4
	LinkOpacity       = 0.6
	DashPattern       = "8,4"
	AnnotationOffset  = 20
	AnnotationRadius  = 10
	DefaultNodeColor  = "grey"
	arrowMarkerID     = "arrow"
	markingColor      = "#c8d6e5"
	centerLineColor   = "#e74c3c"
	blueLineColor     = "#2e86de"
	faceoffRadiusFeet = 15.0
)

// Rink markings in feet, on the 200x85 surface.
var (
	goalLinesFeet   = []float64{11, 189}
	blueLinesFeet   = []float64{75, 125}
	faceoffSpotFeet = [][2]float64{{31, 20.5}, {31, 64.5}, {169, 20.5}, {169, 64.5}, {100, 42.5}}
)

// RinkSVG writes the rink with the sequence graph drawn over it. The graph
// and annotation are drawn only when the graph is non-empty and the selected
// play has a node. A zero scale yields a 0x0 document.
func RinkSVG(w io.Writer, g graph.Graph, sc scale.Scale, selected int) error {
	bw := bufio.NewWriter(w)
	width, height := sc.Size()

	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" overflow="visible">`+"\n", num(width), num(height))
	writeMarkings(bw, sc)

	annotation, ok := g.AnnotationNode(selected)
	if !g.Empty() && ok {
		fmt.Fprintf(bw, `<defs><marker id="%s" viewBox="0 -5 10 10" refX="15" refY="0" orient="auto" fill="grey"><path d="M0,-5L10,0L0,5"/></marker></defs>`+"\n", arrowMarkerID)

		bw.WriteString(`<g class="links">` + "\n")
		for _, l := range g.Links {
			writeLink(bw, g, l)
		}
		bw.WriteString("</g>\n")

		bw.WriteString(`<g class="nodes">` + "\n")
		for _, n := range g.Nodes {
			color := n.Color
			if color == "" {
				color = DefaultNodeColor
			}
			fmt.Fprintf(bw, `<circle class="node" data-play="%d" cx="%s" cy="%s" r="%d" fill="%s"/>`+"\n",
				n.PlayIndex, num(n.X), num(n.Y), NodeRadius, attr(color))
		}
		bw.WriteString("</g>\n")

		cx, cy := annotation.X+AnnotationOffset, annotation.Y+AnnotationOffset
		fmt.Fprintf(bw, `<g class="annotation"><line x1="%s" y1="%s" x2="%s" y2="%s" stroke="black"/><circle cx="%s" cy="%s" r="%d" fill="none" stroke="black" stroke-width="2"/></g>`+"\n",
			num(annotation.X), num(annotation.Y), num(cx), num(cy), num(cx), num(cy), AnnotationRadius)
	}

	bw.WriteString("</svg>\n")
	return bw.Flush()
}

func writeLink(w *bufio.Writer, g graph.Graph, l graph.Link) {
	src, ok1 := g.Node(l.Source)
	dst, ok2 := g.Node(l.Target)
	if !ok1 || !ok2 {
		return
	}

	color := l.Color
	if color == "" {
		color = DefaultNodeColor
	}
	fmt.Fprintf(w, `<line class="link %s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%d" stroke-opacity="%s"`,
		l.Kind, num(src.X), num(src.Y), num(dst.X), num(dst.Y), attr(color), LinkWidth, num(LinkOpacity))
	if l.Dashed {
		fmt.Fprintf(w, ` stroke-dasharray="%s"`, DashPattern)
	}
	// vertical links get no arrowhead
	if src.X != dst.X {
		fmt.Fprintf(w, ` marker-end="url(#%s)"`, arrowMarkerID)
	}
	w.WriteString("/>\n")
}

func writeMarkings(w *bufio.Writer, sc scale.Scale) {
	if sc.IsZero() {
		return
	}
	width, height := sc.Size()
	fmt.Fprintf(w, `<g class="rink" fill="none" stroke="%s" stroke-width="2">`+"\n", markingColor)
	fmt.Fprintf(w, `<rect x="0" y="0" width="%s" height="%s" rx="%s" fill="#ffffff"/>`+"\n",
		num(width), num(height), num(28*sc.X))

	fmt.Fprintf(w, `<line x1="%s" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="3"/>`+"\n",
		num(100*sc.X), num(100*sc.X), num(height), centerLineColor)
	for _, x := range blueLinesFeet {
		fmt.Fprintf(w, `<line x1="%s" y1="0" x2="%s" y2="%s" stroke="%s" stroke-width="3"/>`+"\n",
			num(x*sc.X), num(x*sc.X), num(height), blueLineColor)
	}
	for _, x := range goalLinesFeet {
		fmt.Fprintf(w, `<line x1="%s" y1="0" x2="%s" y2="%s" stroke="%s"/>`+"\n",
			num(x*sc.X), num(x*sc.X), num(height), centerLineColor)
	}
	for _, p := range faceoffSpotFeet {
		fmt.Fprintf(w, `<circle cx="%s" cy="%s" r="%s"/>`+"\n",
			num(p[0]*sc.X), num(p[1]*sc.Y), num(faceoffRadiusFeet*sc.X))
	}
	w.WriteString("</g>\n")
}

func num(f float64) string {
	return fmt.Sprintf("%.2f", f)
}
