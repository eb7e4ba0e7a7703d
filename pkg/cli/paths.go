package cli

import (
	"os"
	"path/filepath"
)

const (
	// DefaultBaseDir is the directory below $HOME holding colgraph state.
	DefaultBaseDir = ".colgraph"
	// DefaultConfigFile is the configuration filename.
	DefaultConfigFile = "config.yaml"
	// ConfigEnv overrides the configuration file path.
	ConfigEnv = "COLGRAPH_CONFIG"
)

// Paths locates colgraph's files below a home directory.
type Paths struct {
	HomeDir string
}

// NewPaths creates Paths for the current user.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns ~/.colgraph.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns ~/.colgraph/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// GraphDir returns the default graph database directory of a context,
// ~/.colgraph/graphs/<context>.
func (p *Paths) GraphDir(context string) string {
	if context == "" {
		context = "default"
	}
	return filepath.Join(p.BaseDir(), "graphs", context)
}

// ConfigPath returns $COLGRAPH_CONFIG when set, else the default config
// file.
func ConfigPath() (string, error) {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p, nil
	}
	paths, err := NewPaths()
	if err != nil {
		return "", err
	}
	return paths.ConfigFile(), nil
}
