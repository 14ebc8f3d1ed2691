package combat

import (
	"context"
	"fmt"
	"strings"
)

// ActionType identifies what the player does on a combat turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown    ActionType = iota // zero value; intentionally invalid
	ActionAttack                       // strike the enemy
	ActionWait                         // do nothing and take the next hit
	ActionUseAbility                   // activate the class ability, once per encounter
)

// Valid reports whether a is one of the three playable actions.
func (a ActionType) Valid() bool {
	return a == ActionAttack || a == ActionWait || a == ActionUseAbility
}

// String returns the human-readable name of the ActionType.
// Postcondition: returns "attack", "wait", "ability", or "unknown".
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionWait:
		return "wait"
	case ActionUseAbility:
		return "ability"
	default:
		return "unknown"
	}
}

// ParseAction maps raw player input onto an ActionType.
// Accepted forms are the menu numbers 1, 2, 3 and the words attack, wait, ability.
//
// Postcondition: Returns a valid ActionType, or ActionUnknown with a non-nil error.
func ParseAction(raw string) (ActionType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "attack", "a":
		return ActionAttack, nil
	case "2", "wait", "w":
		return ActionWait, nil
	case "3", "ability", "skill", "s":
		return ActionUseAbility, nil
	default:
		return ActionUnknown, fmt.Errorf("unrecognised action %q", raw)
	}
}

// TurnStatus is the snapshot handed to the ActionSource at the start of a turn.
type TurnStatus struct {
	Turn         int
	PlayerHP     int
	PlayerAttack int
	EnemyName    string
	EnemyHP      int
	EnemyAttack  int
	AbilityName  string
	AbilityUsed  bool
}

// ActionSource yields the player's choice for one turn. Implementations block until a
// valid choice is made or ctx is done; invalid raw input is handled by re-prompting.
type ActionSource interface {
	AskCombatAction(ctx context.Context, status TurnStatus) (ActionType, error)
}

// ActionSourceFunc adapts a function to ActionSource.
type ActionSourceFunc func(ctx context.Context, status TurnStatus) (ActionType, error)

// AskCombatAction calls f.
func (f ActionSourceFunc) AskCombatAction(ctx context.Context, status TurnStatus) (ActionType, error) {
	return f(ctx, status)
}

// Narrator is a one-way sink for narration lines.
type Narrator interface {
	Narrate(text string)
}

// NarratorFunc adapts a function to Narrator.
type NarratorFunc func(text string)

// Narrate calls f.
func (f NarratorFunc) Narrate(text string) { f(text) }
