package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/haivivi/colgraph/pkg/cli"
	"github.com/haivivi/colgraph/pkg/colmap"
	"github.com/haivivi/colgraph/pkg/ingest"
	"github.com/haivivi/colgraph/pkg/storage"
)

var validateInput string

// validateResult is printed for yaml and json output.
type validateResult struct {
	Document *colmap.Document `json:"document" yaml:"document"`
	DryRun   *ingest.Stats    `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate <mapping.yaml>",
	Short: "Check a mapping document",
	Long: `Parse and compile a mapping document without touching the graph.

With --input the CSV file is run through the mapping in dry-run mode:
its header is checked against the columns the mapping reads and the
number of vertices and edges it would produce is reported.

With -o yaml or -o json the normalized document is printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c, err := getContext()
		if err != nil {
			return err
		}
		m, err := loadMapping(ctx, c, args[0])
		if err != nil {
			return err
		}

		res := validateResult{Document: m.Document()}
		if validateInput != "" {
			fs, path, err := storage.Open(validateInput, c.S3Config())
			if err != nil {
				return err
			}
			in, err := fs.Read(ctx, path)
			if err != nil {
				return fmt.Errorf("open %s: %w", validateInput, err)
			}
			defer in.Close()
			res.DryRun, err = ingest.New(m, nil, ingest.WithDryRun(), ingest.WithWorkers(c.Workers)).Run(ctx, in)
			if err != nil {
				return err
			}
		}

		name := m.Name()
		if name == "" {
			name = args[0]
		}
		var keys []string
		for _, em := range m.EntityMappings() {
			keys = append(keys, em.Key())
		}
		fields := []cli.Field{
			{Key: "entities", Value: strings.Join(keys, ", ")},
			{Key: "relationships", Value: fmt.Sprint(len(m.RelationshipMappings()))},
			{Key: "columns", Value: columnsMode(m)},
		}
		if res.DryRun != nil {
			fields = append(fields,
				cli.Field{Key: "rows", Value: cli.FormatCount(res.DryRun.Rows)},
				cli.Field{Key: "edges", Value: cli.FormatCount(res.DryRun.Edges)},
				cli.Field{Key: "skipped", Value: cli.FormatCount(res.DryRun.Skipped), Warn: res.DryRun.Skipped > 0},
			)
		}
		return output(cmd.OutOrStdout(), res, newSummary("✓ "+name, fields...))
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "CSV file to dry-run through the mapping")
}

func columnsMode(m *colmap.Mapping) string {
	switch {
	case m.HasHeader():
		return "from header"
	case len(m.Columns()) > 0:
		return strings.Join(m.Columns(), ", ")
	}
	return "by index"
}
