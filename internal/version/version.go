// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

// Package version reports which build of the records binary is running.
// The values show up in `records version`, the API index and the
// User-Agent sent to the remote platform.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

// Set with -ldflags "-X github.com/dacolabs/records/internal/version.Version=…".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	Go      string `json:"go" yaml:"go"`
}

var (
	once    sync.Once
	current Build
)

// Get returns the build, filling unset ldflags values from the module
// build info (go install) and the VCS stamp.
func Get() Build {
	once.Do(func() {
		current = fromBuildInfo(Build{Version: Version, Commit: Commit, Date: Date, Go: runtime.Version()})
	})
	return current
}

func fromBuildInfo(b Build) Build {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "none" && len(s.Value) >= 7 {
				b.Commit = s.Value[:7]
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		}
	}
	return b
}

// Info returns the one-line description printed by `records version`.
func Info() string {
	b := Get()
	return fmt.Sprintf("records version %s (commit: %s, built: %s, go: %s)", b.Version, b.Commit, b.Date, b.Go)
}

// Short returns just the version string.
func Short() string {
	return Get().Version
}

// UserAgent identifies this binary to the remote platform.
func UserAgent() string {
	return "records/" + Short()
}
