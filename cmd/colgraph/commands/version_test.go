package commands

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/haivivi/colgraph/cmd/colgraph/internal/build"
)

func TestVersion(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "version")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.HasPrefix(stdout, "colgraph dev") {
		t.Fatalf("stdout = %q", stdout)
	}

	stdout, _, code = runCmd(t, "version", "-v")
	if code != 0 || !strings.Contains(stdout, "config:") {
		t.Fatalf("verbose: exit %d: %s", code, stdout)
	}
}

func TestVersionJSON(t *testing.T) {
	setupTestEnv(t)

	stdout, _, code := runCmd(t, "version", "-o", "json")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	var info build.Info
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if info.Version != build.Version || info.Go == "" {
		t.Fatalf("info = %+v", info)
	}
}
