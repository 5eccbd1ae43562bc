// Package theme persists the light/dark display preference.
package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/i474232898/weather-browser/internal/kv"
	"github.com/i474232898/weather-browser/internal/logger"
)

// Theme is a stored preference. System defers to the platform default.
type Theme string

const (
	Light  Theme = "light"
	Dark   Theme = "dark"
	System Theme = "system"
)

const StorageKey = "weather-theme"

var ErrInvalidTheme = errors.New("theme must be one of light, dark, system")

func Parse(s string) (Theme, error) {
	switch t := Theme(s); t {
	case Light, Dark, System:
		return t, nil
	}
	return "", ErrInvalidTheme
}

type persisted struct {
	Theme Theme `json:"theme"`
}

// Store holds the preference in memory and writes it through to kv.
type Store struct {
	mu       sync.RWMutex
	kv       kv.Store
	current  Theme
	fallback Theme
}

// New loads the stored preference. systemDefault is what System resolves to
// and must be Light or Dark.
func New(ctx context.Context, store kv.Store, systemDefault Theme) (*Store, error) {
	if systemDefault != Light && systemDefault != Dark {
		return nil, fmt.Errorf("system default %q: %w", systemDefault, ErrInvalidTheme)
	}
	s := &Store{kv: store, current: System, fallback: systemDefault}

	raw, err := store.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load theme: %w", err)
	default:
		var p persisted
		if err := json.Unmarshal(raw, &p); err != nil {
			logger.L().Warn("theme_blob_corrupt", "err", err)
		} else if t, err := Parse(string(p.Theme)); err == nil {
			s.current = t
		}
	}
	return s, nil
}

func (s *Store) Get() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Resolved returns the theme actually shown, never System.
func (s *Store) Resolved() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolvedLocked()
}

func (s *Store) resolvedLocked() Theme {
	if s.current == System {
		return s.fallback
	}
	return s.current
}

func (s *Store) Set(ctx context.Context, t Theme) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(ctx, t)
}

// Toggle flips the resolved theme and stores the result explicitly.
func (s *Store) Toggle(ctx context.Context) (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := Dark
	if s.resolvedLocked() == Dark {
		next = Light
	}
	if err := s.setLocked(ctx, next); err != nil {
		return s.current, err
	}
	return next, nil
}

func (s *Store) setLocked(ctx context.Context, t Theme) error {
	raw, err := json.Marshal(persisted{Theme: t})
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("persist theme: %w", err)
	}
	s.current = t
	return nil
}
