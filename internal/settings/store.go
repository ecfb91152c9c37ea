// Package settings holds the key/value store behind the settings command.
package settings

import (
	"errors"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownKey reports a lookup of a key that was never set.
var ErrUnknownKey = errors.New("unknown setting")

// Store is a concurrency-safe string map.
type Store struct {
	mutex   sync.RWMutex
	entries map[string]string
}

// NewStore creates a store seeded with defaults.
func NewStore(defaults map[string]string) *Store {
	return &Store{entries: maps.Clone(defaults)}
}

// Get returns the value stored under key.
func (store *Store) Get(key string) (string, error) {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	value, found := store.entries[key]
	if !found {
		return "", ErrUnknownKey
	}
	return value, nil
}

// Set stores value under key and returns the previous value, if any.
func (store *Store) Set(key string, value string) (string, bool) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	if store.entries == nil {
		store.entries = make(map[string]string)
	}
	previous, existed := store.entries[key]
	store.entries[key] = value
	return previous, existed
}

// Keys lists the stored keys in sorted order.
func (store *Store) Keys() []string {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	return slices.Sorted(maps.Keys(store.entries))
}

// Reset removes every entry.
func (store *Store) Reset() {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	clear(store.entries)
}

// Entries returns a copy of the stored entries.
func (store *Store) Entries() map[string]string {
	store.mutex.RLock()
	defer store.mutex.RUnlock()
	entries := maps.Clone(store.entries)
	if entries == nil {
		entries = map[string]string{}
	}
	return entries
}

// Replace swaps the stored entries for a copy of entries.
func (store *Store) Replace(entries map[string]string) {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	store.entries = maps.Clone(entries)
}
