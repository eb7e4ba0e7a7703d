package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/colgraph/pkg/storage"
)

// Sentinel errors.
var (
	ErrContextNotFound = errors.New("cli: context not found")
	ErrNoContext       = errors.New("cli: no current context set")
)

// Config is the colgraph configuration file.
type Config struct {
	// CurrentContext is the name of the active context.
	CurrentContext string `yaml:"current_context,omitempty"`

	Contexts map[string]*Context `yaml:"contexts,omitempty"`

	path string
}

// Context is one named set of settings.
type Context struct {
	Name string `yaml:"name"`

	// GraphDir is the Badger directory holding the graph. Empty selects
	// ~/.colgraph/graphs/<name>.
	GraphDir string `yaml:"graph_dir,omitempty"`

	// Workers is the number of rows imported concurrently. Zero selects
	// GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`

	S3 *storage.S3Config `yaml:"s3,omitempty"`
}

// LoadConfig reads the configuration at path. An empty path selects
// ConfigPath(). A missing file yields an empty configuration; nothing is
// written until Save.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("cli: locate config: %w", err)
		}
		path = p
	}
	cfg := &Config{Contexts: make(map[string]*Context), path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cli: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cli: parse config %s: %w", path, err)
	}
	if cfg.Contexts == nil {
		cfg.Contexts = make(map[string]*Context)
	}
	for name, c := range cfg.Contexts {
		if c == nil {
			c = &Context{}
			cfg.Contexts[name] = c
		}
		c.Name = name
	}
	cfg.path = path
	return cfg, nil
}

// Save writes the configuration, creating its directory.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("cli: marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("cli: create config directory: %w", err)
	}
	// the file may hold S3 secrets
	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("cli: write config: %w", err)
	}
	return nil
}

// Path returns the config file path.
func (c *Config) Path() string { return c.path }

// SetContext adds or replaces a context and saves. The first context
// added becomes the current one.
func (c *Config) SetContext(name string, ctx *Context) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("cli: context name must not be empty")
	}
	ctx.Name = name
	c.Contexts[name] = ctx
	if c.CurrentContext == "" {
		c.CurrentContext = name
	}
	return c.Save()
}

// DeleteContext removes a context and saves.
func (c *Config) DeleteContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("%w: %q", ErrContextNotFound, name)
	}
	delete(c.Contexts, name)
	if c.CurrentContext == name {
		c.CurrentContext = ""
	}
	return c.Save()
}

// UseContext switches the current context and saves.
func (c *Config) UseContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("%w: %q", ErrContextNotFound, name)
	}
	c.CurrentContext = name
	return c.Save()
}

// Context returns the named context.
func (c *Config) Context(name string) (*Context, error) {
	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrContextNotFound, name)
	}
	return ctx, nil
}

// Resolve returns the named context, or the current one when name is
// empty.
func (c *Config) Resolve(name string) (*Context, error) {
	if name == "" {
		if c.CurrentContext == "" {
			return nil, ErrNoContext
		}
		name = c.CurrentContext
	}
	return c.Context(name)
}

// Names returns the context names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// S3Config returns the context's S3 settings, or the zero config.
func (ctx *Context) S3Config() storage.S3Config {
	if ctx == nil || ctx.S3 == nil {
		return storage.S3Config{}
	}
	return *ctx.S3
}

// Redacted returns a copy safe for display.
func (ctx *Context) Redacted() *Context {
	cp := *ctx
	if ctx.S3 != nil {
		s3 := *ctx.S3
		s3.SecretAccessKey = MaskSecret(s3.SecretAccessKey)
		cp.S3 = &s3
	}
	return &cp
}

// MaskSecret masks all but the first and last four characters.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}
