package app

import (
	"runtime/debug"
	"strings"
)

// Version and Commit are stamped at build time:
//
//	go build -ldflags "-X github.com/heartmarshall/solarsite/internal/app.Version=1.4.0 -X github.com/heartmarshall/solarsite/internal/app.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = ""
)

// BuildVersion is the version reported by /health and the startup log.
// Without an ldflags commit it falls back to the VCS revision the Go
// toolchain embeds.
func BuildVersion() string {
	commit := Commit
	if commit == "" {
		commit = vcsRevision()
	}
	if commit == "" {
		return Version
	}
	return Version + "+" + commit
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 7 {
		rev = rev[:7]
	}
	if rev != "" && dirty {
		rev += "-dirty"
	}
	return strings.TrimSpace(rev)
}
