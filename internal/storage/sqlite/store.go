// Package sqlite provides a SQLite-backed storage.Store using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/character"
	"github.com/cory-johannsen/fantasy/internal/storage"
)

// Store persists characters and reference data in a SQLite file.
type Store struct {
	db *sql.DB
}

var _ storage.Store = (*Store)(nil)

// OpenDB opens the SQLite file at path with foreign keys enforced.
//
// Precondition: path must be non-blank.
// Postcondition: Returns a pinged handle or a non-nil error.
func OpenDB(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	return db, nil
}

// Open opens the SQLite store at path and applies embedded migrations.
//
// Precondition: path must be non-blank and its directory must exist.
// Postcondition: Returns a Store with the current schema, or a non-nil error.
func Open(path string) (*Store, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SeedCatalog inserts every class, ability and enemy of cat not already stored, in one transaction.
func (s *Store) SeedCatalog(ctx context.Context, cat *catalog.Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range cat.Classes() {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO classes (id, name, base_hp, base_attack) VALUES (?, ?, ?, ?)`,
			c.ID, c.Name, c.BaseHP, c.BaseAttack,
		); err != nil {
			return fmt.Errorf("seeding class %q: %w", c.Name, err)
		}
		a := c.Ability
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO abilities
				(id, class_id, name, kind, effect, bonus_hp, bonus_attack, duration_turns)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, c.ID, a.Name, a.Kind.String(), a.Effect, a.BonusHP, a.BonusAttack, a.DurationTurns,
		); err != nil {
			return fmt.Errorf("seeding ability %q: %w", a.Name, err)
		}
	}
	for _, e := range cat.AllEnemies() {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO enemies (id, name, hp, attack, category) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Name, e.HP, e.Attack, string(e.Category),
		); err != nil {
			return fmt.Errorf("seeding enemy %q: %w", e.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	return nil
}

// Class loads a seeded class with its ability.
//
// Postcondition: Returns the class or an error wrapping catalog.ErrNotFound.
func (s *Store) Class(ctx context.Context, id int64) (catalog.Class, error) {
	var (
		c    catalog.Class
		kind string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.base_hp, c.base_attack,
		       a.id, a.name, a.kind, a.effect, a.bonus_hp, a.bonus_attack, a.duration_turns
		FROM classes c JOIN abilities a ON a.class_id = c.id
		WHERE c.id = ?`, id,
	).Scan(
		&c.ID, &c.Name, &c.BaseHP, &c.BaseAttack,
		&c.Ability.ID, &c.Ability.Name, &kind, &c.Ability.Effect,
		&c.Ability.BonusHP, &c.Ability.BonusAttack, &c.Ability.DurationTurns,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return catalog.Class{}, fmt.Errorf("class %d: %w", id, catalog.ErrNotFound)
		}
		return catalog.Class{}, fmt.Errorf("loading class %d: %w", id, err)
	}
	c.Ability.ClassID = c.ID
	c.Ability.Kind = catalog.ParseKind(kind)
	return c, nil
}

// CreateCharacter inserts a level 1 character built from the seeded class.
func (s *Store) CreateCharacter(ctx context.Context, name string, classID int64) (*character.Character, error) {
	cls, err := s.Class(ctx, classID)
	if err != nil {
		return nil, err
	}
	ch, err := character.Build(name, cls)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO characters (name, class_id, ability_id, experience, hp, attack, level)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ch.Name, ch.ClassID, ch.AbilityID, ch.Experience, ch.HP, ch.Attack, ch.Level,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	if ch.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("reading character id: %w", err)
	}
	return ch, nil
}

// LatestCharacter returns the most recently created character.
func (s *Store) LatestCharacter(ctx context.Context) (*character.Character, error) {
	var ch character.Character
	err := s.db.QueryRowContext(ctx, `
		SELECT ch.id, ch.name, ch.class_id, ch.ability_id, c.name,
		       ch.experience, ch.hp, ch.attack, ch.level
		FROM characters ch JOIN classes c ON c.id = ch.class_id
		ORDER BY ch.id DESC LIMIT 1`,
	).Scan(
		&ch.ID, &ch.Name, &ch.ClassID, &ch.AbilityID, &ch.ClassName,
		&ch.Experience, &ch.HP, &ch.Attack, &ch.Level,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("loading latest character: %w", err)
	}
	return &ch, nil
}

// UpdateCharacter writes the set fields of patch in a single UPDATE statement.
func (s *Store) UpdateCharacter(ctx context.Context, id int64, patch storage.CharacterPatch) error {
	if patch.Empty() {
		return storage.ErrEmptyPatch
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE characters SET
			hp         = COALESCE(?, hp),
			experience = COALESCE(?, experience),
			attack     = COALESCE(?, attack),
			level      = COALESCE(?, level)
		WHERE id = ?`,
		nullInt(patch.HP), nullInt(patch.Experience), nullInt(patch.Attack), nullInt(patch.Level), id,
	)
	if err != nil {
		return fmt.Errorf("updating character %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating character %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("character %d: %w", id, storage.ErrCharacterNotFound)
	}
	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
