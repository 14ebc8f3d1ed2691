// Package adventure drives a character through the ordered story, triggering random
// encounters and scheduled boss fights, and levels the character as experience accrues.
package adventure

import (
	"context"
	"errors"
	"fmt"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/character"
	"github.com/cory-johannsen/fantasy/internal/game/combat"
	"github.com/cory-johannsen/fantasy/internal/game/dice"
	"github.com/cory-johannsen/fantasy/internal/game/npc"
)

// ErrNoCharacter is returned when a run is started without a character.
var ErrNoCharacter = errors.New("no character to play")

// State is the position of a session in its lifecycle.
type State int

const (
	StateInProgress State = iota
	StateVictory
	StateDefeat
)

// String returns "in_progress", "victory" or "defeat".
func (s State) String() string {
	switch s {
	case StateVictory:
		return "victory"
	case StateDefeat:
		return "defeat"
	default:
		return "in_progress"
	}
}

// Summary is the final report of a finished run.
type Summary struct {
	State          State
	Name           string
	ClassName      string
	Level          int
	Experience     int
	HP             int
	Attack         int
	StepsCompleted int
}

func summarize(state State, ch *character.Character, steps int) Summary {
	return Summary{
		State:          state,
		Name:           ch.Name,
		ClassName:      ch.ClassName,
		Level:          ch.Level,
		Experience:     ch.Experience,
		HP:             ch.HP,
		Attack:         ch.Attack,
		StepsCompleted: steps,
	}
}

// Prompter is the player's side of a run: combat choices plus yes/no story decisions.
type Prompter interface {
	combat.ActionSource
	// AskYesNo blocks until the player accepts or declines prompt.
	AskYesNo(ctx context.Context, prompt string) (bool, error)
}

// Content is the read side of the catalog a run needs.
type Content interface {
	AbilityForClass(classID int64) (catalog.Ability, error)
	Enemies(cat catalog.Category) []catalog.EnemyTemplate
	Bosses() []catalog.EnemyTemplate
	Story() []string
}

// Resolver resolves a single encounter.
type Resolver interface {
	Resolve(ctx context.Context, ch *character.Character, enemy *npc.Instance, ability catalog.Ability, src combat.ActionSource) (combat.Outcome, error)
}

// Rules are the tunable constants of progression.
type Rules struct {
	StepXP             int
	EncounterChancePct int
	EncounterVictoryXP int
	BasicScaleSpan     float64
	BossScaleSpan      float64
	BossEvery          int
	BossBaseXP         int
	BossStepXP         int
	DeclinePenalty     dice.Expression
	XPPerLevel         int
	LevelAttackBonus   int
	LevelHPBonus       int
}

// DefaultRules returns the stock progression tuning.
func DefaultRules() Rules {
	return Rules{
		StepXP:             7,
		EncounterChancePct: 30,
		EncounterVictoryXP: 7,
		BasicScaleSpan:     0.5,
		BossScaleSpan:      1.2,
		BossEvery:          10,
		BossBaseXP:         50,
		BossStepXP:         2,
		DeclinePenalty:     dice.MustParse("1d3-1"),
		XPPerLevel:         20,
		LevelAttackBonus:   1,
		LevelHPBonus:       5,
	}
}

// BossReward returns the experience for beating the boss met after step completed steps.
func (r Rules) BossReward(step int) int {
	return r.BossBaseXP + step*r.BossStepXP
}

// BossIndex returns which boss of count is fought after step completed steps.
//
// Precondition: step is a positive multiple of BossEvery; count > 0.
func (r Rules) BossIndex(step, count int) int {
	return (step/r.BossEvery - 1) % count
}

// IsBossStep reports whether a boss fight follows step completed steps.
func (r Rules) IsBossStep(step int) bool {
	return step > 0 && step%r.BossEvery == 0
}

// Validate checks the rules are playable.
func (r Rules) Validate() error {
	var errs []error
	if r.BossEvery < 1 {
		errs = append(errs, fmt.Errorf("boss_every must be >= 1, got %d", r.BossEvery))
	}
	if r.XPPerLevel < 1 {
		errs = append(errs, fmt.Errorf("xp_per_level must be >= 1, got %d", r.XPPerLevel))
	}
	if r.DeclinePenalty.Count < 1 || r.DeclinePenalty.Sides < 1 {
		errs = append(errs, errors.New("decline_penalty must be a parsed dice expression"))
	}
	return errors.Join(errs...)
}
