package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/haivivi/colgraph/pkg/cli"
)

// setupTestEnv points the config at a fresh file and returns a graph
// directory for --graph.
func setupTestEnv(t *testing.T) (graphPath string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(cli.ConfigEnv, filepath.Join(dir, "config.yaml"))
	t.Setenv("HOME", dir)
	globalConfig = nil
	t.Cleanup(func() { globalConfig = nil })
	return filepath.Join(dir, "graph")
}

func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout, os.Stderr = wOut, wErr

	var outBuf, errBuf bytes.Buffer
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); outBuf.ReadFrom(rOut) }()
	go func() { defer wg.Done(); errBuf.ReadFrom(rErr) }()

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	wg.Wait()
	os.Stdout, os.Stderr = oldStdout, oldStderr

	stdout, stderr = outBuf.String(), errBuf.String()
	if err != nil {
		exitCode = 1
		stderr += err.Error()
	}
	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Changed = false
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
			return
		}
		f.Value.Set(f.DefValue)
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const testMapping = `
name: employees
header: true
entities:
  person: {concept: person, id: name, properties: [{name: title}]}
  company: {concept: company, id: employer}
  manager: {concept: person, id: manager}
relationships:
  - {source: person, target: company, label: WORKS_FOR}
  - source: person
    target: manager
    label: {kind: column, column: relation, values: {direct: REPORTS_TO}}
`

const testCSV = `name,title,employer,manager,relation
alice,CEO,acme,,
bob,engineer,acme,alice,direct
carol,engineer,acme,alice,dotted
`
