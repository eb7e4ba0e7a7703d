// Package build holds version information injected via ldflags:
//
//	go build -ldflags "-X github.com/haivivi/colgraph/cmd/colgraph/internal/build.Version=v1.0.0 \
//	  -X github.com/haivivi/colgraph/cmd/colgraph/internal/build.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/haivivi/colgraph/cmd/colgraph/internal/build.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package build

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the structured form of the version.
type Info struct {
	Version  string `json:"version" yaml:"version"`
	Commit   string `json:"commit" yaml:"commit"`
	Date     string `json:"date" yaml:"date"`
	Go       string `json:"go" yaml:"go"`
	Platform string `json:"platform" yaml:"platform"`
}

// Get returns the version information.
func Get() Info {
	return Info{
		Version:  Version,
		Commit:   Commit,
		Date:     Date,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a one-line version string.
func String() string {
	return fmt.Sprintf("colgraph %s (%s) built %s %s/%s",
		Version, Commit, Date, runtime.GOOS, runtime.GOARCH)
}
