// Package memory provides an in-process storage.Store. Nothing survives the process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/character"
	"github.com/cory-johannsen/fantasy/internal/storage"
)

// Store is a mutex-guarded map of characters. It is safe for concurrent use.
type Store struct {
	mu         sync.Mutex
	classes    map[int64]catalog.Class
	characters map[int64]*character.Character
	nextID     int64
	latest     int64
}

var _ storage.Store = (*Store)(nil)

// New creates an empty Store. SeedCatalog must run before CreateCharacter.
func New() *Store {
	return &Store{
		classes:    make(map[int64]catalog.Class),
		characters: make(map[int64]*character.Character),
	}
}

// SeedCatalog records every class of cat that is not already present.
func (s *Store) SeedCatalog(_ context.Context, cat *catalog.Catalog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cat.Classes() {
		if _, ok := s.classes[c.ID]; !ok {
			s.classes[c.ID] = c
		}
	}
	return nil
}

// CreateCharacter builds and stores a level 1 character of classID.
func (s *Store) CreateCharacter(_ context.Context, name string, classID int64) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cls, ok := s.classes[classID]
	if !ok {
		return nil, fmt.Errorf("class %d: %w", classID, catalog.ErrNotFound)
	}
	ch, err := character.Build(name, cls)
	if err != nil {
		return nil, err
	}
	s.nextID++
	ch.ID = s.nextID
	s.characters[ch.ID] = ch
	s.latest = ch.ID
	out := *ch
	return &out, nil
}

// LatestCharacter returns a copy of the most recently created character.
func (s *Store) LatestCharacter(_ context.Context) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.characters[s.latest]
	if !ok {
		return nil, storage.ErrCharacterNotFound
	}
	out := *ch
	return &out, nil
}

// UpdateCharacter applies patch under the store lock.
func (s *Store) UpdateCharacter(_ context.Context, id int64, patch storage.CharacterPatch) error {
	if patch.Empty() {
		return storage.ErrEmptyPatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.characters[id]
	if !ok {
		return fmt.Errorf("character %d: %w", id, storage.ErrCharacterNotFound)
	}
	patch.Apply(ch)
	return nil
}

// Character returns a copy of the character with id, for inspection.
func (s *Store) Character(id int64) (*character.Character, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.characters[id]
	if !ok {
		return nil, false
	}
	out := *ch
	return &out, true
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
