// SPDX-License-Identifier: MIT
//
// Package build exposes the metadata embedded at link time with -ldflags:
// binary name, build timestamp, Git commit and semantic version.
//
//	go build -ldflags "-X spectrum/pkg/build.buildName=spectrum \
//	  -X spectrum/pkg/build.buildVersion=v0.1.0 ..."
package build

import "fmt"

// Description is the one-line summary shown by the CLI.
const Description = "Spectral analysis of PCM audio files"

// Info holds the build metadata.
type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// String renders the version line printed by --version.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Time)
}

// Package-level variables for build information. These are populated by -ldflags
// during compilation. Default values of "unknown" are used during development.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &Info{
		Name:    "spectrum",
		Time:    "unknown",
		Commit:  "unknown",
		Version: "dev",
	}
)

// Initialize validates and copies build information from ldflags variables.
// It returns an error naming the first missing flag and leaves the development
// defaults in place, so callers may treat the error as a warning.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildFlags.Name = buildName
	buildFlags.Time = buildTime
	buildFlags.Commit = buildCommit
	buildFlags.Version = buildVersion

	return nil
}

// GetBuildFlags returns the current build information.
func GetBuildFlags() *Info {
	return buildFlags
}
