// Package storage defines the persistence contract for characters and reference data.
// Concrete stores live in the sqlite, postgres and memory subpackages.
package storage

import (
	"context"
	"errors"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrEmptyPatch is returned by UpdateCharacter when no field is set.
var ErrEmptyPatch = errors.New("character patch sets no fields")

// CharacterPatch is a partial character update. Nil fields are left unchanged.
type CharacterPatch struct {
	HP         *int
	Experience *int
	Attack     *int
	Level      *int
}

// Int returns a pointer to v for building patches.
func Int(v int) *int {
	return &v
}

// Empty reports whether the patch sets no field.
func (p CharacterPatch) Empty() bool {
	return p.HP == nil && p.Experience == nil && p.Attack == nil && p.Level == nil
}

// Apply copies every set field of p onto c.
//
// Precondition: c must not be nil.
func (p CharacterPatch) Apply(c *character.Character) {
	if p.HP != nil {
		c.HP = *p.HP
	}
	if p.Experience != nil {
		c.Experience = *p.Experience
	}
	if p.Attack != nil {
		c.Attack = *p.Attack
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
}

// CharacterUpdater is the write side used by the game engines.
type CharacterUpdater interface {
	// UpdateCharacter writes every set field of patch in one atomic statement.
	//
	// Postcondition: Returns ErrCharacterNotFound (wrapped) when id does not exist,
	// ErrEmptyPatch when patch sets nothing.
	UpdateCharacter(ctx context.Context, id int64, patch CharacterPatch) error
}

// Store is the full persistence collaborator. Implementations are safe for concurrent use.
type Store interface {
	CharacterUpdater

	// CreateCharacter inserts a level 1 character of classID built from the seeded class.
	//
	// Postcondition: Returns the stored character with ID and ClassName set, or an
	// error wrapping catalog.ErrNotFound when classID is unknown.
	CreateCharacter(ctx context.Context, name string, classID int64) (*character.Character, error)

	// LatestCharacter returns the most recently created character.
	//
	// Postcondition: Returns ErrCharacterNotFound (wrapped) when none exists.
	LatestCharacter(ctx context.Context) (*character.Character, error)

	// SeedCatalog inserts every class, ability and enemy of cat that is not already stored.
	// Calling it again with the same catalog is a no-op.
	SeedCatalog(ctx context.Context, cat *catalog.Catalog) error

	// Close releases the store's resources.
	Close() error
}
