// Package cli provides the configuration, paths and output helpers of the
// colgraph command.
//
// Configuration lives in ~/.colgraph/config.yaml (or $COLGRAPH_CONFIG) and
// holds named contexts, similar to kubectl. A context selects the graph
// database directory, the worker count and the S3 settings used for
// s3:// locations.
//
//	cfg, err := cli.LoadConfig("")
//	ctx, err := cfg.Resolve("")     // current context
//	err = cli.Output(stats, cli.OutputOptions{Format: cli.FormatJSON, Writer: os.Stdout})
package cli
