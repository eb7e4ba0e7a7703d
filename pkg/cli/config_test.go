package cli

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/haivivi/colgraph/pkg/storage"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "colgraph", "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	return cfg
}

func TestLoadConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Contexts) != 0 || cfg.CurrentContext != "" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadConfig wrote a file: %v", err)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.yaml")
	t.Setenv(ConfigEnv, path)
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Path() != path {
		t.Fatalf("Path() = %q, want %q", cfg.Path(), path)
	}
}

func TestConfig_RoundTrip(t *testing.T) {
	cfg := testConfig(t)
	err := cfg.SetContext("prod", &Context{
		GraphDir: "/var/lib/colgraph",
		Workers:  8,
		S3: &storage.S3Config{
			Region:          "eu-west-1",
			Endpoint:        "http://minio:9000",
			PathStyle:       true,
			AccessKeyID:     "AKID",
			SecretAccessKey: "supersecretvalue",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetContext("dev", &Context{}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(cfg.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	again, err := LoadConfig(cfg.Path())
	if err != nil {
		t.Fatal(err)
	}
	if again.CurrentContext != "prod" {
		t.Fatalf("current = %q, want prod (first added)", again.CurrentContext)
	}
	if !slices.Equal(again.Names(), []string{"dev", "prod"}) {
		t.Fatalf("names = %v", again.Names())
	}
	prod, err := again.Resolve("")
	if err != nil {
		t.Fatal(err)
	}
	if prod.Name != "prod" || prod.Workers != 8 || prod.GraphDir != "/var/lib/colgraph" {
		t.Fatalf("prod = %+v", prod)
	}
	s3 := prod.S3Config()
	if s3.Region != "eu-west-1" || !s3.PathStyle || s3.SecretAccessKey != "supersecretvalue" {
		t.Fatalf("s3 = %+v", s3)
	}
	dev, _ := again.Context("dev")
	if dev.S3Config() != (storage.S3Config{}) {
		t.Fatalf("dev s3 = %+v", dev.S3Config())
	}
}

func TestConfig_UseAndDelete(t *testing.T) {
	cfg := testConfig(t)
	cfg.SetContext("a", &Context{})
	cfg.SetContext("b", &Context{})

	if err := cfg.UseContext("b"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.UseContext("zzz"); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("UseContext(zzz) = %v", err)
	}
	if err := cfg.DeleteContext("b"); err != nil {
		t.Fatal(err)
	}
	if cfg.CurrentContext != "" {
		t.Fatalf("current = %q after deleting it", cfg.CurrentContext)
	}
	if _, err := cfg.Resolve(""); !errors.Is(err, ErrNoContext) {
		t.Fatalf("Resolve = %v", err)
	}
	if err := cfg.DeleteContext("b"); !errors.Is(err, ErrContextNotFound) {
		t.Fatalf("second delete = %v", err)
	}
	if _, err := cfg.Resolve("a"); err != nil {
		t.Fatal(err)
	}
}

func TestConfig_SetContextEmptyName(t *testing.T) {
	if err := testConfig(t).SetContext(" ", &Context{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("contexts: [1, 2"), 0o600)
	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("err = %v", err)
	}
}

func TestContext_Redacted(t *testing.T) {
	ctx := &Context{Name: "x", S3: &storage.S3Config{SecretAccessKey: "abcdefghij"}}
	r := ctx.Redacted()
	if r.S3.SecretAccessKey != "abcd**ghij" {
		t.Fatalf("redacted = %q", r.S3.SecretAccessKey)
	}
	if ctx.S3.SecretAccessKey != "abcdefghij" {
		t.Fatal("Redacted modified the original")
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"1234", "****"},
		{"12345678", "********"},
		{"123456789", "1234*6789"},
		{"sk-1234567890abcdef", "sk-1***********cdef"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.in); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
