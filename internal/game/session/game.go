package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fantasy/internal/game/adventure"
	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/character"
	"github.com/cory-johannsen/fantasy/internal/game/combat"
	"github.com/cory-johannsen/fantasy/internal/game/creation"
	"github.com/cory-johannsen/fantasy/internal/game/dice"
	"github.com/cory-johannsen/fantasy/internal/observability"
	"github.com/cory-johannsen/fantasy/internal/storage"
)

// Player is everything a session asks of the person at the keyboard.
// console.Prompter implements it.
type Player interface {
	adventure.Prompter
	creation.LineAsker
	combat.Narrator
}

// Options select how a session starts.
type Options struct {
	// Continue resumes the most recently created hero instead of creating one.
	Continue bool
	// RemoteAddr labels the session in the Manager; empty means a local terminal.
	RemoteAddr string
}

// Game plays sessions against a shared catalog and store.
// A Game is safe for concurrent use when its Store and Roller are.
type Game struct {
	catalog  *catalog.Catalog
	store    storage.Store
	roller   *dice.Roller
	rules    Rules
	sessions *Manager
	logger   *zap.Logger
}

// NewGame wires a Game.
//
// Precondition: all arguments must be non-nil; rules must be valid.
func NewGame(cat *catalog.Catalog, store storage.Store, roller *dice.Roller, rules Rules, sessions *Manager, logger *zap.Logger) *Game {
	return &Game{
		catalog:  cat,
		store:    store,
		roller:   roller,
		rules:    rules,
		sessions: sessions,
		logger:   logger,
	}
}

// Sessions returns the session registry.
func (g *Game) Sessions() *Manager { return g.sessions }

// Play runs one session: pick or create a hero, then play the adventure to its end.
//
// Postcondition: Returns the adventure summary, or the first error from the player or store.
// The session is registered with the Manager for the duration of the call.
func (g *Game) Play(ctx context.Context, p Player, opts Options) (adventure.Summary, error) {
	id := observability.NewSessionID()
	logger := observability.SessionLogger(g.logger, id)

	remote := opts.RemoteAddr
	if remote == "" {
		remote = "local"
	}
	if _, err := g.sessions.Add(id, remote); err != nil {
		return adventure.Summary{}, err
	}
	defer func() {
		_ = g.sessions.Remove(id)
	}()
	logger.Info("session started", zap.String("remote_addr", remote), zap.Bool("continue", opts.Continue))

	ch, err := g.hero(ctx, p, opts, logger)
	if err != nil {
		return adventure.Summary{}, err
	}
	if err := g.sessions.Bind(id, ch.ID, ch.Name); err != nil {
		return adventure.Summary{}, err
	}

	engine := combat.NewEngine(g.store, p, g.rules.Combat, logger)
	runner := adventure.NewRunner(g.catalog, g.store, engine, p, g.roller, g.rules.Adventure, logger)
	summary, err := runner.Run(ctx, ch, p)
	if err != nil {
		logger.Warn("session aborted", zap.Error(err))
		return adventure.Summary{}, err
	}
	logger.Info("session finished",
		zap.Stringer("state", summary.State),
		zap.Int("steps", summary.StepsCompleted),
		zap.Int("level", summary.Level),
	)
	return summary, nil
}

func (g *Game) hero(ctx context.Context, p Player, opts Options, logger *zap.Logger) (*character.Character, error) {
	if opts.Continue {
		ch, err := g.store.LatestCharacter(ctx)
		switch {
		case err == nil && ch.Alive():
			p.Narrate(fmt.Sprintf("Welcome back, %s the %s (level %d, %d XP).", ch.Name, ch.ClassName, ch.Level, ch.Experience))
			return ch, nil
		case err == nil:
			p.Narrate(fmt.Sprintf("%s has fallen. A new hero must rise.", ch.Name))
		case errors.Is(err, storage.ErrCharacterNotFound):
			p.Narrate("No saved hero yet. Let us create one.")
		default:
			return nil, fmt.Errorf("loading latest character: %w", err)
		}
	}
	wizard := creation.NewWizard(g.catalog.Classes(), g.store, p, logger)
	return wizard.Run(ctx, p)
}
