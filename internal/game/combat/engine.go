// Package combat resolves a single encounter between the player character and one enemy.
package combat

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/character"
	"github.com/cory-johannsen/fantasy/internal/game/effect"
	"github.com/cory-johannsen/fantasy/internal/game/npc"
	"github.com/cory-johannsen/fantasy/internal/storage"
)

// Rules are the tunable constants of encounter resolution.
type Rules struct {
	BasicVictoryXP int
	BossVictoryXP  int
	Effects        effect.Rules
}

// DefaultRules returns 14 XP for basic enemies, 70 for bosses and the default effect rules.
func DefaultRules() Rules {
	return Rules{BasicVictoryXP: 14, BossVictoryXP: 70, Effects: effect.DefaultRules()}
}

// RewardFor returns the experience granted for defeating enemy.
func (r Rules) RewardFor(enemy *npc.Instance) int {
	if enemy.IsBoss() {
		return r.BossVictoryXP
	}
	return r.BasicVictoryXP
}

// Outcome is the result of one encounter.
type Outcome struct {
	Victory          bool
	HP               int
	ExperienceGained int
	Turns            int
}

// Engine resolves encounters. It holds no per-encounter state, so one Engine serves
// every encounter of a session.
type Engine struct {
	store    storage.CharacterUpdater
	narrator Narrator
	rules    Rules
	logger   *zap.Logger
}

// NewEngine creates an Engine.
//
// Precondition: store, narrator and logger must be non-nil.
func NewEngine(store storage.CharacterUpdater, narrator Narrator, rules Rules, logger *zap.Logger) *Engine {
	return &Engine{store: store, narrator: narrator, rules: rules, logger: logger}
}

// Resolve plays the encounter between ch and enemy to the end.
//
// Every turn the player acts first; a killing blow ends the fight before the enemy
// strikes. Victory persists HP and experience + reward; defeat persists HP 0 and the
// unchanged experience. Exactly one UpdateCharacter call is made per finished encounter.
//
// Precondition: ch, enemy and src must be non-nil; ch.HP > 0.
// Postcondition: On success ch.HP and ch.Experience mirror what was persisted.
// An error from src or ctx aborts the encounter without persisting anything.
func (e *Engine) Resolve(ctx context.Context, ch *character.Character, enemy *npc.Instance, ability catalog.Ability, src ActionSource) (Outcome, error) {
	log := e.logger.With(
		zap.Int64("character_id", ch.ID),
		zap.String("enemy", enemy.Name),
		zap.String("ability", ability.Name),
	)
	e.narrator.Narrate(fmt.Sprintf("--- COMBAT: %s (HP %d) vs %s (HP %d) ---", ch.Name, ch.HP, enemy.Name, enemy.HP))

	// hero is a working copy; ch changes only once the result is persisted.
	hero := *ch
	state := effect.New()
	turn := 1
	for hero.Alive() && enemy.Alive() {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		e.narrator.Narrate(fmt.Sprintf("-- Turn %d --", turn))
		e.narrator.Narrate(fmt.Sprintf("Your HP: %d | Attack: %d | %s HP: %d | Enemy attack: %d",
			hero.HP, ch.Attack, enemy.Name, enemy.HP, enemy.Attack))

		action, err := e.askAction(ctx, src, TurnStatus{
			Turn:         turn,
			PlayerHP:     hero.HP,
			PlayerAttack: ch.Attack,
			EnemyName:    enemy.Name,
			EnemyHP:      enemy.HP,
			EnemyAttack:  enemy.Attack,
			AbilityName:  ability.Name,
			AbilityUsed:  state.AbilityUsed,
		})
		if err != nil {
			return Outcome{}, fmt.Errorf("asking combat action: %w", err)
		}

		state = e.playerAction(action, state, ch.Attack, enemy, ability, log)

		if !enemy.Alive() {
			reward := e.rules.RewardFor(enemy)
			e.narrator.Narrate(fmt.Sprintf("You defeated %s!", enemy.Name))
			e.narrator.Narrate(fmt.Sprintf("You gain %d XP!", reward))
			return e.finish(ctx, ch, hero.HP, ch.Experience+reward, true, reward, turn, log)
		}

		strike := state.EnemyStrike(enemy.Attack)
		switch {
		case strike.Frozen:
			e.narrator.Narrate("> The enemy is frozen and cannot attack.")
		case strike.Invincible:
			e.narrator.Narrate("> You are invincible this turn: you take no damage.")
		}
		if !strike.Frozen {
			e.narrator.Narrate(fmt.Sprintf("> %s attacks and deals %d damage.", enemy.Name, strike.Damage))
			hero.ApplyDamage(strike.Damage)
		}
		state = state.Tick(action == ActionAttack)
		log.Debug("turn resolved",
			zap.Int("turn", turn),
			zap.Stringer("action", action),
			zap.Int("player_hp", hero.HP),
			zap.Int("enemy_hp", enemy.HP),
			zap.Stringer("effects", state),
		)

		if !hero.Alive() {
			e.narrator.Narrate("You have fallen in battle...")
			return e.finish(ctx, ch, 0, ch.Experience, false, 0, turn, log)
		}
		turn++
	}

	// Only reachable when the fight starts with a combatant already at 0.
	return e.finish(ctx, ch, hero.HP, ch.Experience, hero.Alive(), 0, turn, log)
}

func (e *Engine) askAction(ctx context.Context, src ActionSource, status TurnStatus) (ActionType, error) {
	for {
		action, err := src.AskCombatAction(ctx, status)
		if err != nil {
			return ActionUnknown, err
		}
		if action.Valid() {
			return action, nil
		}
	}
}

func (e *Engine) playerAction(action ActionType, state effect.State, attack int, enemy *npc.Instance, ability catalog.Ability, log *zap.Logger) effect.State {
	switch action {
	case ActionAttack:
		dmg := state.AttackDamage(attack)
		enemy.ApplyDamage(dmg)
		e.narrator.Narrate(fmt.Sprintf("> You attack and deal %d damage.", dmg))
	case ActionWait:
		e.narrator.Narrate("> You wait and take the next blow without striking back.")
	case ActionUseAbility:
		next, res := state.Activate(ability.Kind, ability.DurationTurns, e.rules.Effects)
		switch res {
		case effect.AlreadyUsed:
			e.narrator.Narrate("> Ability already used this fight! You miss your action.")
		case effect.NoEffect:
			e.narrator.Narrate(fmt.Sprintf("> You use your ability: %s - %s", ability.Name, ability.Effect))
			e.narrator.Narrate("(Unknown ability: no effect applied.)")
			log.Warn("unknown ability kind", zap.String("kind", ability.Kind.String()))
		case effect.Applied:
			e.narrator.Narrate(fmt.Sprintf("> You use your ability: %s - %s", ability.Name, ability.Effect))
			e.narrator.Narrate(e.abilityLine(ability))
		}
		return next
	}
	return state
}

func (e *Engine) abilityLine(ability catalog.Ability) string {
	switch ability.Kind {
	case catalog.KindFreeze:
		return "The enemy is frozen and will not be able to attack."
	case catalog.KindExplosiveArrow:
		return fmt.Sprintf("Your next attack deals ×%.1f damage.", e.rules.Effects.AbilityMultiplier)
	case catalog.KindDivineShield:
		return fmt.Sprintf("You are protected: -%d%% damage taken for %d turns.", e.rules.Effects.ShieldReductionPct, ability.DurationTurns)
	case catalog.KindFury:
		return fmt.Sprintf("Your damage is raised to ×%.1f for %d turns.", e.rules.Effects.AbilityMultiplier, ability.DurationTurns)
	case catalog.KindUltimateDodge:
		return "You dodge everything: no damage taken."
	default:
		return ""
	}
}

func (e *Engine) finish(ctx context.Context, ch *character.Character, hp, exp int, victory bool, reward, turns int, log *zap.Logger) (Outcome, error) {
	patch := storage.CharacterPatch{HP: storage.Int(hp), Experience: storage.Int(exp)}
	if err := e.store.UpdateCharacter(ctx, ch.ID, patch); err != nil {
		return Outcome{}, fmt.Errorf("persisting combat result: %w", err)
	}
	patch.Apply(ch)
	log.Info("encounter finished",
		zap.Bool("victory", victory),
		zap.Int("hp", hp),
		zap.Int("experience_gained", reward),
		zap.Int("turns", turns),
	)
	return Outcome{Victory: victory, HP: hp, ExperienceGained: reward, Turns: turns}, nil
}
