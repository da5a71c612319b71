// Package version carries build metadata injected with ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set via ldflags at build time:
//
//	go build -ldflags "-X github.com/soyeahso/adlad/internal/version.Version=1.0.0
//	  -X github.com/soyeahso/adlad/internal/version.Commit=abc123
//	  -X github.com/soyeahso/adlad/internal/version.Date=2026-01-01"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is the machine readable form of Info.
type BuildInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Platform string `json:"platform"`
}

// Build returns the current build metadata.
func Build() BuildInfo {
	return BuildInfo{
		Version:  Version,
		Commit:   short(Commit),
		Date:     Date,
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Info returns a formatted version string.
func Info() string {
	b := Build()
	return fmt.Sprintf("adlad %s (commit: %s, built: %s, %s)", b.Version, b.Commit, b.Date, b.Platform)
}

func short(s string) string {
	if len(s) > 7 {
		return s[:7]
	}
	return s
}
