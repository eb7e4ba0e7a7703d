package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/colgraph/cmd/colgraph/internal/build"
	"github.com/haivivi/colgraph/pkg/cli"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		if f != cli.FormatText {
			return cli.Output(build.Get(), cli.OutputOptions{Format: f, Writer: cmd.OutOrStdout()})
		}
		fmt.Fprintln(cmd.OutOrStdout(), build.String())
		if verbose {
			info := build.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s\n", info.Go)
			if path, err := cli.ConfigPath(); err == nil {
				if cfgFile != "" {
					path = cfgFile
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  config: %s\n", path)
			}
		}
		return nil
	},
}
