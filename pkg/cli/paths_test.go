package cli

import (
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	home := t.TempDir()
	p := &Paths{HomeDir: home}

	if got, want := p.BaseDir(), filepath.Join(home, ".colgraph"); got != want {
		t.Errorf("BaseDir() = %q, want %q", got, want)
	}
	if got, want := p.ConfigFile(), filepath.Join(home, ".colgraph", "config.yaml"); got != want {
		t.Errorf("ConfigFile() = %q, want %q", got, want)
	}
	if got, want := p.GraphDir("prod"), filepath.Join(home, ".colgraph", "graphs", "prod"); got != want {
		t.Errorf("GraphDir(prod) = %q, want %q", got, want)
	}
	if got, want := p.GraphDir(""), filepath.Join(home, ".colgraph", "graphs", "default"); got != want {
		t.Errorf("GraphDir(\"\") = %q, want %q", got, want)
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(ConfigEnv, "/tmp/override.yaml")
	p, err := ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/override.yaml" {
		t.Fatalf("ConfigPath() = %q", p)
	}

	t.Setenv(ConfigEnv, "")
	t.Setenv("HOME", "/home/someone")
	p, err = ConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if p != filepath.Join("/home/someone", ".colgraph", "config.yaml") {
		t.Fatalf("ConfigPath() = %q", p)
	}
}
