package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DoyleJ11/rink-sequences/internal/graph"
	"github.com/DoyleJ11/rink-sequences/internal/render"
	"github.com/DoyleJ11/rink-sequences/internal/scale"
)

var (
	renderWidth  float64
	renderHeight float64
	renderOut    string
	renderPlay   int
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a sequence over the rink as SVG",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFetcher()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		plays, err := f.GetPlays(ctx, sequenceID)
		if err != nil {
			return err
		}
		if renderPlay < 0 || (len(plays) > 0 && renderPlay >= len(plays)) {
			return fmt.Errorf("--play %d out of range (sequence has %d plays)", renderPlay, len(plays))
		}

		sc := scale.Fit(renderWidth, renderHeight)
		g := graph.Build(plays, sc)

		var w io.Writer = cmd.OutOrStdout()
		if renderOut != "" && renderOut != "-" {
			file, err := os.Create(renderOut)
			if err != nil {
				return err
			}
			defer file.Close()
			w = file
		}
		return render.RinkSVG(w, g, sc, renderPlay)
	},
}

var mermaidCmd = &cobra.Command{
	Use:   "mermaid",
	Short: "Print a sequence as a Mermaid flowchart",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := newFetcher()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		plays, err := f.GetPlays(ctx, sequenceID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), graph.Mermaid(graph.Build(plays, scale.Scale{X: 1, Y: 1}), plays))
		return err
	},
}

func init() {
	rootCmd.AddCommand(renderCmd, mermaidCmd)

	for _, c := range []*cobra.Command{renderCmd, mermaidCmd} {
		c.Flags().StringVar(&sequenceID, "sequence", "", "Sequence id")
		c.MarkFlagRequired("sequence")
	}

	renderCmd.Flags().Float64VarP(&renderWidth, "width", "W", 800, "Viewport width")
	renderCmd.Flags().Float64VarP(&renderHeight, "height", "H", 340, "Viewport height")
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "Output file (default stdout)")
	renderCmd.Flags().IntVar(&renderPlay, "play", 0, "Index of the annotated play")
}
