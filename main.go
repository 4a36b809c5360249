// SPDX-License-Identifier: MIT
package main

import (
	"spectrum/cmd"
	applog "spectrum/internal/log"
	"spectrum/pkg/build"
)

// main wires build information into the CLI and reports the first error.
// Analysis output is written to stdout; logs and summaries go to stderr.
func main() {
	// Development builds run without ldflags and keep the defaults.
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build: %v, using development build info", err)
	}

	if err := cmd.Execute(); err != nil {
		applog.Fatalf("%v", err)
	}
}
