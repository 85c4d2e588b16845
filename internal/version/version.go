// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build identity of ntd-scan.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at build time with -ldflags "-X ntd-scan/internal/version.version=..."
var (
	version = ""
	commit  = ""
	date    = ""
)

const unknown = "unknown"

// Build describes the running binary
type Build struct {
	Version  string
	Commit   string
	Date     string
	Go       string
	Platform string
	// Modified is true when the binary was built from a dirty checkout
	Modified bool
}

// Get returns the build identity. Linker flags win; otherwise the module and
// VCS stamps embedded by the go command are used.
func Get() Build {
	b := Build{
		Version:  version,
		Commit:   commit,
		Date:     date,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if b.Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			b.Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if b.Commit == "" {
					b.Commit = s.Value
				}
			case "vcs.time":
				if b.Date == "" {
					b.Date = s.Value
				}
			case "vcs.modified":
				b.Modified = s.Value == "true"
			}
		}
	}

	if b.Version == "" {
		b.Version = "devel"
	}
	if b.Commit == "" {
		b.Commit = unknown
	}
	if b.Date == "" {
		b.Date = unknown
	}
	return b
}

// ShortCommit trims the commit hash to twelve characters
func (b Build) ShortCommit() string {
	if len(b.Commit) > 12 {
		return b.Commit[:12]
	}
	return b.Commit
}

// String renders the report printed by `ntd-scan version --full`
func (b Build) String() string {
	commit := b.ShortCommit()
	if b.Modified {
		commit += "-dirty"
	}
	return fmt.Sprintf("ntd-scan %s\n  commit:   %s\n  built:    %s\n  go:       %s\n  platform: %s",
		b.Version, commit, b.Date, b.Go, b.Platform)
}
