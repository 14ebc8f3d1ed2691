// Package postgres provides a PostgreSQL storage.Store using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/fantasy/internal/config"
	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/character"
	"github.com/cory-johannsen/fantasy/internal/storage"
)

// Store provides character and reference-data persistence on a pgx pool it owns.
type Store struct {
	db *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// OpenStore migrates the schema, then connects a pool sized by cfg and checks it answers.
//
// Precondition: cfg must pass config validation for the postgres driver.
// Postcondition: Returns a ready Store or a non-nil error; on error nothing is left open.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	if err := ApplyMigrations(cfg.DSN()); err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the pool. The store is unusable afterwards.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// SeedCatalog inserts every class, ability and enemy of cat not already stored, in one transaction.
func (s *Store) SeedCatalog(ctx context.Context, cat *catalog.Catalog) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning seed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, c := range cat.Classes() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO classes (id, name, base_hp, base_attack) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			c.ID, c.Name, c.BaseHP, c.BaseAttack,
		); err != nil {
			return fmt.Errorf("seeding class %q: %w", c.Name, err)
		}
		a := c.Ability
		if _, err := tx.Exec(ctx, `
			INSERT INTO abilities (id, class_id, name, kind, effect, bonus_hp, bonus_attack, duration_turns)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING`,
			a.ID, c.ID, a.Name, a.Kind.String(), a.Effect, a.BonusHP, a.BonusAttack, a.DurationTurns,
		); err != nil {
			return fmt.Errorf("seeding ability %q: %w", a.Name, err)
		}
	}
	for _, e := range cat.AllEnemies() {
		if _, err := tx.Exec(ctx, `
			INSERT INTO enemies (id, name, hp, attack, category) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
			e.ID, e.Name, e.HP, e.Attack, string(e.Category),
		); err != nil {
			return fmt.Errorf("seeding enemy %q: %w", e.Name, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
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
	err := s.db.QueryRow(ctx, `
		SELECT c.id, c.name, c.base_hp, c.base_attack,
		       a.id, a.name, a.kind, a.effect, a.bonus_hp, a.bonus_attack, a.duration_turns
		FROM classes c JOIN abilities a ON a.class_id = c.id
		WHERE c.id = $1`, id,
	).Scan(
		&c.ID, &c.Name, &c.BaseHP, &c.BaseAttack,
		&c.Ability.ID, &c.Ability.Name, &kind, &c.Ability.Effect,
		&c.Ability.BonusHP, &c.Ability.BonusAttack, &c.Ability.DurationTurns,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Class{}, fmt.Errorf("class %d: %w", id, catalog.ErrNotFound)
		}
		return catalog.Class{}, fmt.Errorf("loading class %d: %w", id, err)
	}
	c.Ability.ClassID = c.ID
	c.Ability.Kind = catalog.ParseKind(kind)
	return c, nil
}

// CreateCharacter inserts a level 1 character built from the seeded class.
//
// Postcondition: Returns the created character with ID set.
func (s *Store) CreateCharacter(ctx context.Context, name string, classID int64) (*character.Character, error) {
	cls, err := s.Class(ctx, classID)
	if err != nil {
		return nil, err
	}
	ch, err := character.Build(name, cls)
	if err != nil {
		return nil, err
	}
	err = s.db.QueryRow(ctx, `
		INSERT INTO characters (name, class_id, ability_id, experience, hp, attack, level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		ch.Name, ch.ClassID, ch.AbilityID, ch.Experience, ch.HP, ch.Attack, ch.Level,
	).Scan(&ch.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return ch, nil
}

// LatestCharacter returns the most recently created character.
func (s *Store) LatestCharacter(ctx context.Context) (*character.Character, error) {
	var ch character.Character
	err := s.db.QueryRow(ctx, `
		SELECT ch.id, ch.name, ch.class_id, ch.ability_id, c.name,
		       ch.experience, ch.hp, ch.attack, ch.level
		FROM characters ch JOIN classes c ON c.id = ch.class_id
		ORDER BY ch.id DESC LIMIT 1`,
	).Scan(
		&ch.ID, &ch.Name, &ch.ClassID, &ch.AbilityID, &ch.ClassName,
		&ch.Experience, &ch.HP, &ch.Attack, &ch.Level,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrCharacterNotFound
		}
		return nil, fmt.Errorf("loading latest character: %w", err)
	}
	return &ch, nil
}

// UpdateCharacter writes the set fields of patch in a single UPDATE statement.
//
// Postcondition: Returns ErrCharacterNotFound (wrapped) if no row matched.
func (s *Store) UpdateCharacter(ctx context.Context, id int64, patch storage.CharacterPatch) error {
	if patch.Empty() {
		return storage.ErrEmptyPatch
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE characters SET
			hp         = COALESCE($1::integer, hp),
			experience = COALESCE($2::integer, experience),
			attack     = COALESCE($3::integer, attack),
			level      = COALESCE($4::integer, level)
		WHERE id = $5`,
		patch.HP, patch.Experience, patch.Attack, patch.Level, id,
	)
	if err != nil {
		return fmt.Errorf("updating character %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("character %d: %w", id, storage.ErrCharacterNotFound)
	}
	return nil
}
