// Package appstate keeps small per-installation state in a JSON file:
// the UI theme, the active demo identity, and per-user favorite sets.
//
// The data is tiny and rarely written, so a single file rewritten
// atomically on every change beats dragging these keys into the database.
package appstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sakif/memeforge/internal/model"
)

const (
	// DefaultTheme matches the editor's initial appearance.
	DefaultTheme = "dark"

	favoritesPrefix = "memeFavorites_"
)

type state struct {
	Theme        string              `json:"theme,omitempty"`
	DemoIdentity *model.Identity     `json:"demoIdentity,omitempty"`
	Favorites    map[string][]string `json:"favorites,omitempty"`
}

// Store reads and writes the state file. Safe for concurrent use.
type Store struct {
	path string

	mu    sync.Mutex
	state state
}

// Open loads the state file, creating an empty store if it does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read app state: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("parse app state: %w", err)
	}
	return s, nil
}

// Close flushes the current state to disk. Writes already flush on every
// mutation, so this matters only for a file that never saw one.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flush()
}

// Theme returns the stored theme, or the default when none was set.
func (s *Store) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Theme == "" {
		return DefaultTheme
	}
	return s.state.Theme
}

func (s *Store) SetTheme(theme string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = theme
	return s.flush()
}

// DemoIdentity returns the active demo identity, or nil if demo mode is off.
func (s *Store) DemoIdentity() *model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.DemoIdentity == nil {
		return nil
	}
	id := *s.state.DemoIdentity
	return &id
}

func (s *Store) SetDemoIdentity(id model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DemoIdentity = &id
	return s.flush()
}

// ClearDemoIdentity turns demo mode off. Called on real sign-in so the two
// identity kinds never coexist.
func (s *Store) ClearDemoIdentity() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DemoIdentity = nil
	return s.flush()
}

// Favorites returns the favorite template ids for a user, sorted.
func (s *Store) Favorites(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.state.Favorites[favoritesPrefix+userID]
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return out
}

// AddFavorite records a template id for a user. Adding a duplicate is a
// no-op.
func (s *Store) AddFavorite(userID, templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := favoritesPrefix + userID
	for _, id := range s.state.Favorites[key] {
		if id == templateID {
			return nil
		}
	}
	if s.state.Favorites == nil {
		s.state.Favorites = make(map[string][]string)
	}
	s.state.Favorites[key] = append(s.state.Favorites[key], templateID)
	return s.flush()
}

func (s *Store) RemoveFavorite(userID, templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := favoritesPrefix + userID
	ids := s.state.Favorites[key]
	for i, id := range ids {
		if id == templateID {
			s.state.Favorites[key] = append(ids[:i], ids[i+1:]...)
			return s.flush()
		}
	}
	return nil
}

// flush writes the state atomically: temp file in the same directory, then
// rename. Callers must hold the mutex.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode app state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".appstate-*")
	if err != nil {
		return fmt.Errorf("write app state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write app state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write app state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write app state: %w", err)
	}
	return nil
}
