package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestValidate(t *testing.T) {
	setupTestEnv(t)
	mapping := writeTestFile(t, "employees.yaml", testMapping)

	stdout, stderr, code := runCmd(t, "validate", mapping)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	for _, want := range []string{"employees", "company, manager, person", "from header"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("summary missing %q:\n%s", want, stdout)
		}
	}
}

func TestValidate_WithInput(t *testing.T) {
	setupTestEnv(t)
	mapping := writeTestFile(t, "employees.yaml", testMapping)
	input := writeTestFile(t, "employees.csv", testCSV)

	stdout, stderr, code := runCmd(t, "validate", mapping, "-i", input, "-o", "json")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr)
	}
	var res struct {
		Document struct {
			Name          string `json:"name"`
			Relationships []struct {
				Label json.RawMessage `json:"label"`
			} `json:"relationships"`
		} `json:"document"`
		DryRun struct {
			Edges   int64 `json:"edges"`
			Skipped int64 `json:"skipped"`
		} `json:"dryRun"`
	}
	if err := json.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if res.Document.Name != "employees" || len(res.Document.Relationships) != 2 {
		t.Fatalf("document = %+v", res.Document)
	}
	if string(res.Document.Relationships[0].Label) != `"WORKS_FOR"` {
		t.Fatalf("label = %s", res.Document.Relationships[0].Label)
	}
	if res.DryRun.Edges != 4 || res.DryRun.Skipped != 2 {
		t.Fatalf("dry run = %+v", res.DryRun)
	}
}

func TestValidate_YAMLRoundTrip(t *testing.T) {
	setupTestEnv(t)
	mapping := writeTestFile(t, "employees.yaml", testMapping)

	stdout, _, code := runCmd(t, "validate", mapping, "-o", "yaml")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	var res struct {
		Document map[string]any `yaml:"document"`
	}
	if err := yaml.Unmarshal([]byte(stdout), &res); err != nil {
		t.Fatalf("invalid YAML %q: %v", stdout, err)
	}
	doc, err := yaml.Marshal(res.Document)
	if err != nil {
		t.Fatal(err)
	}
	normalized := writeTestFile(t, "normalized.yaml", string(doc))
	if _, stderr, code := runCmd(t, "validate", normalized); code != 0 {
		t.Fatalf("normalized document rejected: %s\n%s", stderr, doc)
	}
}

func TestValidate_Invalid(t *testing.T) {
	setupTestEnv(t)
	mapping := writeTestFile(t, "bad.yaml", `
entities:
  person: {concept: person, id: name}
relationships:
  - {source: person, target: company, label: WORKS_FOR}
`)
	_, stderr, code := runCmd(t, "validate", mapping)
	if code == 0 || !strings.Contains(stderr, `undefined entity "company"`) {
		t.Fatalf("exit %d: %s", code, stderr)
	}
}

func TestSchema(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "schema")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	var s map[string]any
	if err := json.Unmarshal([]byte(stdout), &s); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := s["properties"].(map[string]any)["entities"]; !ok {
		t.Fatalf("schema has no entities property: %v", s)
	}

	stdout, _, code = runCmd(t, "schema", "-o", "yaml")
	if code != 0 || !strings.Contains(stdout, "entities:") {
		t.Fatalf("yaml schema: exit %d:\n%s", code, stdout)
	}
}
