// Package prefs persists small user preferences as key-value pairs.
package prefs

import (
	"errors"
	"fmt"
	"sync"
)

// Key names a preference. Only the keys below are accepted.
type Key string

const (
	KeyTheme               Key = "bookmarkTheme"
	KeyBackgroundEnabled   Key = "useRandomBackground"
	KeyBackgroundImage     Key = "randomBackgroundImage"
	KeyBackgroundTimestamp Key = "backgroundImageTimestamp"
)

// Keys lists every recognized key.
var Keys = []Key{KeyTheme, KeyBackgroundEnabled, KeyBackgroundImage, KeyBackgroundTimestamp}

// ErrUnknownKey is returned for keys outside the recognized set.
var ErrUnknownKey = errors.New("unknown preference key")

// Valid reports whether k is a recognized key.
func (k Key) Valid() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// Store reads and writes preferences.
type Store interface {
	Get(key Key) (string, bool)
	Set(key Key, value string) error
}

func checkKey(key Key) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKey, string(key))
	}
	return nil
}

// Memory is an in-process Store.
type Memory struct {
	mu     sync.RWMutex
	values map[Key]string
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[Key]string)}
}

// Get implements Store.
func (m *Memory) Get(key Key) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Set implements Store.
func (m *Memory) Set(key Key, value string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
