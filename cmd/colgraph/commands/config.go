package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/colgraph/pkg/cli"
	"github.com/haivivi/colgraph/pkg/storage"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage contexts",
	Long: `Manage colgraph contexts.

A context holds the graph directory, the import worker count and the S3
settings used for s3:// locations. S3 credentials not set in the context
are taken from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.

Examples:
  colgraph config set-context dev --graph-dir ./graph
  colgraph config set-context prod --workers 16 --s3-region eu-west-1
  colgraph config use-context prod
  colgraph config list
  colgraph config view prod`,
}

var setContextFlags struct {
	graphDir  string
	workers   int
	region    string
	endpoint  string
	pathStyle bool
	keyID     string
	secret    string
}

var configSetContextCmd = &cobra.Command{
	Use:   "set-context <name>",
	Short: "Create or update a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := args[0]
		c, ok := cfg.Contexts[name]
		if !ok {
			c = &cli.Context{}
		}

		flags := cmd.Flags()
		if flags.Changed("graph-dir") {
			c.GraphDir = setContextFlags.graphDir
		}
		if flags.Changed("workers") {
			if setContextFlags.workers < 0 {
				return fmt.Errorf("workers must not be negative")
			}
			c.Workers = setContextFlags.workers
		}
		if flags.Changed("s3-region") || flags.Changed("s3-endpoint") || flags.Changed("s3-path-style") ||
			flags.Changed("s3-access-key-id") || flags.Changed("s3-secret-access-key") {
			s3 := c.S3Config()
			if flags.Changed("s3-region") {
				s3.Region = setContextFlags.region
			}
			if flags.Changed("s3-endpoint") {
				s3.Endpoint = setContextFlags.endpoint
			}
			if flags.Changed("s3-path-style") {
				s3.PathStyle = setContextFlags.pathStyle
			}
			if flags.Changed("s3-access-key-id") {
				s3.AccessKeyID = setContextFlags.keyID
			}
			if flags.Changed("s3-secret-access-key") {
				s3.SecretAccessKey = setContextFlags.secret
			}
			if s3 == (storage.S3Config{}) {
				c.S3 = nil
			} else {
				c.S3 = &s3
			}
		}

		if err := cfg.SetContext(name, c); err != nil {
			return err
		}
		verb := "updated"
		if !ok {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Context %q %s.\n", name, verb)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.UseContext(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Switched to context %q.\n", args[0])
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context (the graph directory is kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		if err := cfg.DeleteContext(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Context %q deleted.\n", args[0])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List contexts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		names := cfg.Names()
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No contexts configured.")
			fmt.Fprintln(cmd.OutOrStdout(), "Create one with: colgraph config set-context <name>")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tGRAPH\tS3")
		for _, name := range names {
			c := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			dir := c.GraphDir
			if dir == "" {
				dir = "(default)"
			}
			s3 := "-"
			if c.S3 != nil {
				s3 = c.S3.Region
				if c.S3.Endpoint != "" {
					s3 = c.S3.Endpoint
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, dir, s3)
		}
		return w.Flush()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view [name]",
	Short: "Show a context (default: current); secrets are masked",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return err
		}
		name := contextName
		if len(args) == 1 {
			name = args[0]
		}
		c, err := cfg.Resolve(name)
		if err != nil {
			return err
		}
		f, err := format()
		if err != nil {
			return err
		}
		return cli.Output(c.Redacted(), cli.OutputOptions{Format: f, Writer: cmd.OutOrStdout()})
	},
}

func init() {
	f := configSetContextCmd.Flags()
	f.StringVar(&setContextFlags.graphDir, "graph-dir", "", "graph directory")
	f.IntVar(&setContextFlags.workers, "workers", 0, "rows imported concurrently")
	f.StringVar(&setContextFlags.region, "s3-region", "", "S3 region")
	f.StringVar(&setContextFlags.endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	f.BoolVar(&setContextFlags.pathStyle, "s3-path-style", false, "use path-style S3 addressing")
	f.StringVar(&setContextFlags.keyID, "s3-access-key-id", "", "S3 access key id")
	f.StringVar(&setContextFlags.secret, "s3-secret-access-key", "", "S3 secret access key")

	configCmd.AddCommand(configSetContextCmd, configUseContextCmd, configDeleteContextCmd, configListCmd, configViewCmd)
}
