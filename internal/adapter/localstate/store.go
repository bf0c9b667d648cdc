// Package localstate persists the small amount of client-side state the
// session layer needs between runs: the demo session flag and the remote
// session token.
package localstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// State is the persisted document.
type State struct {
	DemoSession  bool   `json:"demo_session"`
	SessionToken string `json:"session_token,omitempty"`
}

// Store reads and writes State as a JSON file. Writes go through a temp file
// and rename so a crash never leaves a truncated document.
type Store struct {
	path string
	mu   sync.Mutex
}

// New creates a Store backed by the file at path. The file is created on
// first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load returns the persisted state; a missing file yields the zero State.
func (s *Store) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update applies fn to the current state and persists the result.
func (s *Store) Update(fn func(*State)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	fn(&st)
	return s.save(st)
}

// DemoSession reports whether a standing demo session exists.
func (s *Store) DemoSession() (bool, error) {
	st, err := s.Load()
	return st.DemoSession, err
}

// SetDemoSession persists the demo session flag.
func (s *Store) SetDemoSession(on bool) error {
	return s.Update(func(st *State) { st.DemoSession = on })
}

// SessionToken returns the persisted remote session token, if any.
func (s *Store) SessionToken() (string, error) {
	st, err := s.Load()
	return st.SessionToken, err
}

// SetSessionToken persists the remote session token. An empty token clears it.
func (s *Store) SetSessionToken(token string) error {
	return s.Update(func(st *State) { st.SessionToken = token })
}

func (s *Store) load() (State, error) {
	var st State
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("localstate: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("localstate: decode %s: %w", s.path, err)
	}
	return st, nil
}

func (s *Store) save(st State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("localstate: mkdir %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("localstate: encode: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("localstate: create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("localstate: write temp: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("localstate: chmod temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("localstate: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("localstate: rename: %w", err)
	}
	return nil
}
