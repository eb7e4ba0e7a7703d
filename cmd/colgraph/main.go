// Command colgraph imports tabular data into a property graph using
// column mapping documents.
//
// Usage:
//
//	colgraph [flags] <command> [args]
//
// Commands:
//
//	import     - Import a CSV file through a mapping document
//	validate   - Check a mapping document (and optionally a CSV header)
//	schema     - Print the JSON Schema of mapping documents
//	edges      - Show the relationships of one entity
//	export     - Write the graph into a SQLite database
//	config     - Manage contexts
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/colgraph/cmd/colgraph/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
