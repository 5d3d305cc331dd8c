package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/journeykit/journeymap/pkg/canvas"
	apperrors "github.com/journeykit/journeymap/pkg/errors"
	"github.com/journeykit/journeymap/pkg/journey"
	"github.com/journeykit/journeymap/pkg/layout"
	"github.com/journeykit/journeymap/pkg/store"
)

// Output formats for the render command.
const (
	formatSVG = "svg"
	formatDOT = "dot"
)

// newRenderCmd creates the render command.
func newRenderCmd() *cobra.Command {
	var (
		output   string
		format   string
		snapshot string
	)

	cmd := &cobra.Command{
		Use:   "render <journey-id>",
		Short: "Render a journey canvas to a file",
		Long: `Render builds the canvas for a journey, lays it out, and writes the
result as SVG or Graphviz DOT. With --graph the positioned node/edge
snapshot is also written as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg := configFromContext(ctx)
			journeyID := args[0]

			format = strings.ToLower(format)
			if format != formatSVG && format != formatDOT {
				return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown format %q (svg or dot)", format)
			}
			if output == "" {
				output = journeyID + "." + format
			}

			st, closeStore, err := newStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			p := newProgress(logger)
			current, err := st.GetJourney(ctx, journeyID, true)
			if err != nil {
				return err
			}

			var parent *journey.Journey
			if resolver, ok := st.(store.ParentResolver); ok && current.IsSubjourney {
				if parent, err = resolver.FindParent(ctx, current.ParentStepID); err != nil {
					logger.Debug("parent journey unresolved", "err", err)
					parent = nil
				}
			}

			g := canvas.Build(current, parent)
			g.Nodes = layout.Arrange(g.Nodes, g.Edges)
			p.done(fmt.Sprintf("Built canvas for %q", current.Name))

			dot := layout.ToDOT(g)
			switch format {
			case formatDOT:
				err = os.WriteFile(output, []byte(dot), 0644)
			case formatSVG:
				var svg []byte
				if svg, err = layout.RenderSVG(ctx, dot); err == nil {
					err = os.WriteFile(output, svg, 0644)
				}
			}
			if err != nil {
				return err
			}

			if snapshot != "" {
				if err := canvas.WriteGraphFile(g, snapshot); err != nil {
					return err
				}
				printFile(snapshot)
			}

			printSuccess("Rendered %s", current.Name)
			printStats(len(g.Nodes), len(g.Edges))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to <journey-id>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg or dot")
	cmd.Flags().StringVar(&snapshot, "graph", "", "also write the positioned graph snapshot as JSON")
	return cmd
}
