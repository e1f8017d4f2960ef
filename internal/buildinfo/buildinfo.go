// Package buildinfo exposes version metadata injected at link time.
package buildinfo

import (
	"fmt"
	"io"
)

// Set via -ldflags "-X github.com/socialride/identity/internal/buildinfo.Version=..."
var (
	Version   = "N/A"
	BuildDate = "N/A"
	Commit    = "N/A"
)

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// PrintBuildData writes the build metadata to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", orNA(Version))
	fmt.Fprintf(w, "Build date: %s\n", orNA(BuildDate))
	fmt.Fprintf(w, "Build commit: %s\n", orNA(Commit))
}
