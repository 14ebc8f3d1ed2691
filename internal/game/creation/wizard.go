// Package creation implements the interactive character-creation wizard.
package creation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/character"
	"github.com/cory-johannsen/fantasy/internal/game/combat"
)

// LineAsker reads one free-text answer.
type LineAsker interface {
	AskLine(ctx context.Context, prompt string) (string, error)
}

// Creator persists a new character.
type Creator interface {
	CreateCharacter(ctx context.Context, name string, classID int64) (*character.Character, error)
}

// Wizard walks a player through naming a hero and choosing a class.
type Wizard struct {
	classes  []catalog.Class
	store    Creator
	narrator combat.Narrator
	logger   *zap.Logger
}

// NewWizard creates a Wizard offering classes.
//
// Precondition: classes must be non-empty; store, narrator and logger must be non-nil.
func NewWizard(classes []catalog.Class, store Creator, narrator combat.Narrator, logger *zap.Logger) *Wizard {
	return &Wizard{classes: classes, store: store, narrator: narrator, logger: logger}
}

// Run asks for a name and a class id, re-asking on blank names and unknown ids, then
// stores the character.
//
// Postcondition: Returns the stored character, or the first error from the asker or store.
func (w *Wizard) Run(ctx context.Context, in LineAsker) (*character.Character, error) {
	name, err := w.askName(ctx, in)
	if err != nil {
		return nil, err
	}

	w.narrator.Narrate("Choose a class:")
	for _, line := range ClassListing(w.classes) {
		w.narrator.Narrate(line)
	}

	classID, err := w.askClass(ctx, in)
	if err != nil {
		return nil, err
	}

	ch, err := w.store.CreateCharacter(ctx, name, classID)
	if err != nil {
		return nil, fmt.Errorf("creating character: %w", err)
	}
	w.logger.Info("character created",
		zap.Int64("character_id", ch.ID),
		zap.String("name", ch.Name),
		zap.String("class", ch.ClassName),
	)
	w.narrator.Narrate(fmt.Sprintf("%s the %s is ready (HP %d, ATK %d).", ch.Name, ch.ClassName, ch.HP, ch.Attack))
	return ch, nil
}

func (w *Wizard) askName(ctx context.Context, in LineAsker) (string, error) {
	for {
		raw, err := in.AskLine(ctx, "Name of your hero: ")
		if err != nil {
			return "", fmt.Errorf("asking name: %w", err)
		}
		if name := strings.TrimSpace(raw); name != "" {
			return name, nil
		}
		w.narrator.Narrate("The name must not be empty.")
	}
}

func (w *Wizard) askClass(ctx context.Context, in LineAsker) (int64, error) {
	for {
		raw, err := in.AskLine(ctx, "Id of the chosen class: ")
		if err != nil {
			return 0, fmt.Errorf("asking class: %w", err)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			w.narrator.Narrate("Please enter a number.")
			continue
		}
		for _, c := range w.classes {
			if c.ID == id {
				return id, nil
			}
		}
		w.narrator.Narrate("Invalid id.")
	}
}

// ClassListing renders classes as the lines shown by the wizard and the classes command.
func ClassListing(classes []catalog.Class) []string {
	lines := make([]string, 0, len(classes)*4)
	for _, c := range classes {
		lines = append(lines,
			fmt.Sprintf("%d - %s", c.ID, c.Name),
			fmt.Sprintf("   HP: %d | ATK: %d", c.BaseHP+c.Ability.BonusHP, c.BaseAttack+c.Ability.BonusAttack),
			fmt.Sprintf("   Ability: %s", c.Ability.Name),
			fmt.Sprintf("   Effect: %s", c.Ability.Effect),
		)
	}
	return lines
}
