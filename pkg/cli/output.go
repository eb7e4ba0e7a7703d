package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// OutputFormat selects how results are printed.
type OutputFormat string

const (
	FormatYAML OutputFormat = "yaml"
	FormatJSON OutputFormat = "json"
	// FormatText prints a styled summary where the command has one and
	// falls back to YAML otherwise.
	FormatText OutputFormat = "text"
)

// ParseFormat validates a --output flag value. Empty selects text.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case "":
		return FormatText, nil
	case FormatYAML, FormatJSON, FormatText:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want yaml, json or text)", s)
}

// OutputOptions configures Output.
type OutputOptions struct {
	Format OutputFormat

	// Indent is the JSON indentation. Default two spaces.
	Indent string

	// Writer defaults to os.Stdout.
	Writer io.Writer
}

// Output writes result as YAML or JSON. FormatText prints YAML.
func Output(result any, opts OutputOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		indent := opts.Indent
		if indent == "" {
			indent = "  "
		}
		enc.SetIndent("", indent)
		return enc.Encode(result)
	case FormatYAML, FormatText, "":
		data, err := yaml.Marshal(result)
		if err != nil {
			return fmt.Errorf("cli: format output: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unsupported output format %q", opts.Format)
}
