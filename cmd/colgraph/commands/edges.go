package commands

import (
	"errors"
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/colgraph/pkg/cli"
	"github.com/haivivi/colgraph/pkg/colmap"
	"github.com/haivivi/colgraph/pkg/graph"
)

var edgesLabels []string

// edgeView is an edge with both endpoints resolved.
type edgeView struct {
	Label  string        `json:"label" yaml:"label"`
	Source *graph.Vertex `json:"source" yaml:"source"`
	Target *graph.Vertex `json:"target" yaml:"target"`
}

var edgesCmd = &cobra.Command{
	Use:   "edges <concept> <key>",
	Short: "Show the relationships of one entity",
	Long: `Show every relationship of the entity identified by its concept and
natural key (the value of its id column).

Examples:
  colgraph edges person alice
  colgraph edges company acme --label WORKS_FOR -o json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := getContext()
		if err != nil {
			return err
		}
		g, closeGraph, err := openGraph(c)
		if err != nil {
			return err
		}
		defer closeGraph()

		id := colmap.VertexID(args[0], args[1])
		if _, err := g.GetVertex(ctx, id); err != nil {
			if errors.Is(err, graph.ErrNotFound) {
				return fmt.Errorf("no %s %q in the graph", args[0], args[1])
			}
			return err
		}
		edges, err := g.Edges(ctx, id)
		if err != nil {
			return err
		}

		views := []edgeView{}
		vertices := map[string]*graph.Vertex{}
		resolve := func(id string) (*graph.Vertex, error) {
			if v, ok := vertices[id]; ok {
				return v, nil
			}
			v, err := g.GetVertex(ctx, id)
			if errors.Is(err, graph.ErrNotFound) {
				v, err = &graph.Vertex{ID: id}, nil
			}
			if err != nil {
				return nil, err
			}
			vertices[id] = v
			return v, nil
		}
		for _, e := range edges {
			if len(edgesLabels) > 0 && !slices.Contains(edgesLabels, e.Label) {
				continue
			}
			src, err := resolve(e.Source)
			if err != nil {
				return err
			}
			tgt, err := resolve(e.Target)
			if err != nil {
				return err
			}
			views = append(views, edgeView{Label: e.Label, Source: src, Target: tgt})
		}

		f, err := format()
		if err != nil {
			return err
		}
		if f != cli.FormatText {
			return cli.Output(views, cli.OutputOptions{Format: f, Writer: cmd.OutOrStdout()})
		}
		if len(views) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No relationships for %s %q.\n", args[0], args[1])
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SOURCE\tLABEL\tTARGET")
		for _, v := range views {
			fmt.Fprintf(w, "%s\t%s\t%s\n", displayName(v.Source), v.Label, displayName(v.Target))
		}
		return w.Flush()
	},
}

func init() {
	edgesCmd.Flags().StringArrayVarP(&edgesLabels, "label", "l", nil, "only show these labels (repeatable)")
}

func displayName(v *graph.Vertex) string {
	if key := v.Prop(colmap.IDProperty); key != "" {
		return v.Concept + "/" + key
	}
	return v.ID
}

