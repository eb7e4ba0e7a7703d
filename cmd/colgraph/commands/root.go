package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/colgraph/pkg/cli"
	"github.com/haivivi/colgraph/pkg/colmap"
	"github.com/haivivi/colgraph/pkg/graph"
	"github.com/haivivi/colgraph/pkg/kv"
	"github.com/haivivi/colgraph/pkg/storage"
)

var (
	// Global flags
	cfgFile      string
	contextName  string
	graphDir     string
	outputFormat string
	verbose      bool

	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "colgraph",
	Short: "Map tabular data into a property graph",
	Long: `colgraph - import CSV data into a property graph.

A mapping document names the entities each row yields and the
relationships between them. Relationship labels are constants, read from
a column, or computed with a jq expression.

Configuration is stored in ~/.colgraph/config.yaml ($COLGRAPH_CONFIG
overrides it) and supports multiple contexts, similar to kubectl. A
context selects the graph directory, the worker count and S3 settings
for s3:// locations.

Examples:
  # Check a mapping document against a CSV header
  colgraph validate employees.yaml --input employees.csv

  # Import, then look at one entity
  colgraph import -m employees.yaml employees.csv
  colgraph edges person alice

  # Import from S3 with a dedicated context
  colgraph config set-context prod --s3-region eu-west-1
  colgraph -c prod import -m s3://maps/employees.yaml s3://data/employees.csv

  # Snapshot the graph into SQLite
  colgraph export graph.db`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.colgraph/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVar(&graphDir, "graph", "", "graph directory (overrides the context)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, yaml or json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(importCmd, validateCmd, schemaCmd, edgesCmd, exportCmd, configCmd, versionCmd)
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// getConfig loads the configuration on first use.
func getConfig() (*cli.Config, error) {
	if globalConfig != nil && (cfgFile == "" || globalConfig.Path() == cfgFile) {
		return globalConfig, nil
	}
	cfg, err := cli.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

// getContext returns the selected context. Without -c and without a current
// context, an unsaved "default" context is used.
func getContext() (*cli.Context, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, err
	}
	if contextName == "" && cfg.CurrentContext == "" {
		return &cli.Context{Name: "default"}, nil
	}
	return cfg.Resolve(contextName)
}

func format() (cli.OutputFormat, error) {
	return cli.ParseFormat(outputFormat)
}

// output prints result in the selected format; text prints the summary
// when one is given.
func output(w io.Writer, result any, summary *cli.Summary) error {
	f, err := format()
	if err != nil {
		return err
	}
	if f == cli.FormatText && summary != nil {
		_, err := fmt.Fprintln(w, summary.Render())
		return err
	}
	return cli.Output(result, cli.OutputOptions{Format: f, Writer: w})
}

func newSummary(title string, fields ...cli.Field) *cli.Summary {
	return &cli.Summary{Styles: cli.NewStyles(cli.DefaultTheme), Title: title, Fields: fields}
}

// openGraph opens the Badger-backed graph of the context.
func openGraph(c *cli.Context) (graph.Graph, func() error, error) {
	dir := graphDir
	if dir == "" {
		dir = c.GraphDir
	}
	if dir == "" {
		paths, err := cli.NewPaths()
		if err != nil {
			return nil, nil, err
		}
		dir = paths.GraphDir(c.Name)
	}
	store, err := kv.NewBadger(kv.BadgerOptions{Dir: dir, Logger: slog.Default()})
	if err != nil {
		return nil, nil, fmt.Errorf("open graph %s: %w", dir, err)
	}
	slog.Debug("graph opened", "dir", dir)
	return graph.NewKVGraph(store, kv.Key{"graph"}), store.Close, nil
}

// readLocation reads a local file or s3:// object.
func readLocation(ctx context.Context, c *cli.Context, uri string) ([]byte, error) {
	fs, path, err := storage.Open(uri, c.S3Config())
	if err != nil {
		return nil, err
	}
	data, err := storage.ReadFile(ctx, fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	return data, nil
}

// loadMapping reads and compiles a mapping document.
func loadMapping(ctx context.Context, c *cli.Context, uri string) (*colmap.Mapping, error) {
	data, err := readLocation(ctx, c, uri)
	if err != nil {
		return nil, err
	}
	m, err := colmap.Load(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	return m, nil
}
