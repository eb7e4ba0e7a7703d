package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/haivivi/colgraph/pkg/cli"
	"github.com/haivivi/colgraph/pkg/graph"
	"github.com/haivivi/colgraph/pkg/ingest"
	"github.com/haivivi/colgraph/pkg/storage"
)

var (
	importMapping string
	importWorkers int
	importDryRun  bool
	importReport  string
)

// importReportDoc is written to --report.
type importReportDoc struct {
	Mapping  string        `json:"mapping" yaml:"mapping"`
	Input    string        `json:"input" yaml:"input"`
	Context  string        `json:"context" yaml:"context"`
	Started  time.Time     `json:"started" yaml:"started"`
	Duration string        `json:"duration" yaml:"duration"`
	Stats    *ingest.Stats `json:"stats" yaml:"stats"`
}

var importCmd = &cobra.Command{
	Use:   "import <input.csv>",
	Short: "Import a CSV file through a mapping document",
	Long: `Import a CSV file into the graph of the current context.

Every row is mapped to entities (vertices) and relationships (edges).
Rows that yield no relationship are counted as skipped and never stop the
import. Inputs and the mapping document may be local paths or s3:// URLs.

Examples:
  colgraph import -m employees.yaml employees.csv
  colgraph import -m employees.yaml employees.csv --dry-run -o json
  colgraph import -m s3://maps/e.yaml s3://data/e.csv --report s3://reports/e.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importMapping, "mapping", "m", "", "mapping document (path or s3:// URL)")
	importCmd.Flags().IntVarP(&importWorkers, "workers", "w", 0, "rows processed concurrently (default: context setting, then GOMAXPROCS)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "evaluate the mapping without writing to the graph")
	importCmd.Flags().StringVar(&importReport, "report", "", "write a YAML report to this path or s3:// URL")
	importCmd.MarkFlagRequired("mapping")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	c, err := getContext()
	if err != nil {
		return err
	}
	m, err := loadMapping(ctx, c, importMapping)
	if err != nil {
		return err
	}

	fs, path, err := storage.Open(args[0], c.S3Config())
	if err != nil {
		return err
	}
	in, err := fs.Read(ctx, path)
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer in.Close()

	workers := importWorkers
	if workers == 0 {
		workers = c.Workers
	}
	opts := []ingest.Option{
		ingest.WithWorkers(workers),
		ingest.WithLogger(slog.Default().With("input", args[0])),
	}

	var g graph.Graph
	if importDryRun {
		opts = append(opts, ingest.WithDryRun())
	} else {
		var closeGraph func() error
		g, closeGraph, err = openGraph(c)
		if err != nil {
			return err
		}
		defer closeGraph()
	}

	started := time.Now()
	stats, err := ingest.New(m, g, opts...).Run(ctx, in)
	if err != nil {
		return err
	}
	elapsed := time.Since(started)

	if importReport != "" {
		rep := importReportDoc{
			Mapping:  importMapping,
			Input:    args[0],
			Context:  c.Name,
			Started:  started.UTC(),
			Duration: elapsed.String(),
			Stats:    stats,
		}
		if err := writeReport(cmd, c, importReport, rep); err != nil {
			return err
		}
	}

	title := "imported " + args[0]
	if stats.DryRun {
		title = "dry run " + args[0]
	}
	return output(cmd.OutOrStdout(), stats, newSummary(title,
		cli.Field{Key: "rows", Value: cli.FormatCount(stats.Rows)},
		cli.Field{Key: "vertices", Value: cli.FormatCount(stats.Vertices)},
		cli.Field{Key: "edges", Value: cli.FormatCount(stats.Edges)},
		cli.Field{Key: "skipped", Value: cli.FormatCount(stats.Skipped), Warn: stats.Skipped > 0},
		cli.Field{Key: "elapsed", Value: cli.FormatDuration(elapsed)},
	))
}

func writeReport(cmd *cobra.Command, c *cli.Context, uri string, rep importReportDoc) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fs, path, err := storage.Open(uri, c.S3Config())
	if err != nil {
		return err
	}
	if ok, err := fs.Exists(cmd.Context(), path); err == nil && ok {
		slog.Info("replacing report", "report", uri)
	}
	if err := storage.WriteFile(cmd.Context(), fs, path, data); err != nil {
		return fmt.Errorf("write report %s: %w", uri, err)
	}
	return nil
}
