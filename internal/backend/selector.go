// Package backend decides once, at startup, whether the remote service is
// configured. Every other component receives the resulting Selector instead
// of consulting the environment itself.
package backend

import "github.com/heartmarshall/solarsite/internal/config"

// Mode names the selected backend.
type Mode string

const (
	ModeMemory Mode = "memory"
	ModeRemote Mode = "remote"
)

// Selector is the immutable backend decision.
type Selector struct {
	mode Mode
	url  string
	key  string
}

// Select builds the Selector. Remote mode requires both URL and key; a
// partial configuration falls back to memory mode.
func Select(cfg config.RemoteConfig) Selector {
	if !cfg.Enabled() {
		return Selector{mode: ModeMemory}
	}
	return Selector{mode: ModeRemote, url: cfg.URL, key: cfg.Key}
}

// Remote reports whether the remote service is configured.
func (s Selector) Remote() bool { return s.mode == ModeRemote }

// Mode returns the selected backend name.
func (s Selector) Mode() Mode {
	if s.mode == "" {
		return ModeMemory
	}
	return s.mode
}

// URL returns the remote service URL, empty in memory mode.
func (s Selector) URL() string { return s.url }

// Key returns the remote service key, empty in memory mode.
func (s Selector) Key() string { return s.key }
