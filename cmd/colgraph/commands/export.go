package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/colgraph/pkg/cli"
	"github.com/haivivi/colgraph/pkg/export"
)

var exportCmd = &cobra.Command{
	Use:   "export <out.db>",
	Short: "Write the graph into a SQLite database",
	Long: `Write every vertex and edge of the context's graph into a SQLite
database with two tables:

  vertices (id, concept, props)   props is a JSON object
  edges    (source, label, target)

Existing tables in the file are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := getContext()
		if err != nil {
			return err
		}
		g, closeGraph, err := openGraph(c)
		if err != nil {
			return err
		}
		defer closeGraph()

		n, err := export.SQLite(cmd.Context(), g, args[0])
		if err != nil {
			return err
		}
		fields := []cli.Field{
			{Key: "vertices", Value: cli.FormatCount(n.Vertices)},
			{Key: "edges", Value: cli.FormatCount(n.Edges)},
		}
		if info, err := os.Stat(args[0]); err == nil {
			fields = append(fields, cli.Field{Key: "size", Value: cli.FormatCount(info.Size()) + " bytes"})
		}
		return output(cmd.OutOrStdout(), n, newSummary("exported "+args[0], fields...))
	},
}
