package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version returns the module version when installed with go install, and
// devel-<VERSION>[+<revision>] for builds from a checkout.
func Version() string {
	base := strings.TrimSpace(embeddedVersion)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return base
	}
	return version(base, info)
}

func version(base string, info *debug.BuildInfo) string {
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			rev := "+" + s.Value[:7]
			for _, m := range info.Settings {
				if m.Key == "vcs.modified" && m.Value == "true" {
					rev += "-dirty"
				}
			}
			return "devel-" + base + rev
		}
	}
	return "devel-" + base
}
