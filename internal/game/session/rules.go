package session

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/fantasy/internal/config"
	"github.com/cory-johannsen/fantasy/internal/game/adventure"
	"github.com/cory-johannsen/fantasy/internal/game/combat"
	"github.com/cory-johannsen/fantasy/internal/game/dice"
	"github.com/cory-johannsen/fantasy/internal/game/effect"
)

// Rules bundles the combat and progression tuning of a session.
type Rules struct {
	Combat    combat.Rules
	Adventure adventure.Rules
}

// DefaultRules returns the stock tuning.
func DefaultRules() Rules {
	return Rules{Combat: combat.DefaultRules(), Adventure: adventure.DefaultRules()}
}

// RulesFromConfig converts the configured tuning.
//
// Precondition: cfg has passed config.Validate.
// Postcondition: Returns rules that pass adventure.Rules.Validate, or an error.
func RulesFromConfig(cfg config.RulesConfig) (Rules, error) {
	penalty, err := dice.Parse(cfg.DeclinePenalty)
	if err != nil {
		return Rules{}, fmt.Errorf("decline penalty: %w", err)
	}
	r := Rules{
		Combat: combat.Rules{
			BasicVictoryXP: cfg.BasicVictoryXP,
			BossVictoryXP:  cfg.BossVictoryXP,
			Effects: effect.Rules{
				AbilityMultiplier:  cfg.AbilityMultiplier,
				ShieldReductionPct: int(math.Round(cfg.DivineShieldPct * 100)),
				HalfStepTimers:     cfg.HalfStepTimers,
			},
		},
		Adventure: adventure.Rules{
			StepXP:             cfg.StepXP,
			EncounterChancePct: cfg.EncounterChancePct,
			EncounterVictoryXP: cfg.EncounterVictoryXP,
			BasicScaleSpan:     cfg.BasicScaleSpan,
			BossScaleSpan:      cfg.BossScaleSpan,
			BossEvery:          cfg.BossEvery,
			BossBaseXP:         cfg.BossBaseXP,
			BossStepXP:         cfg.BossStepXP,
			DeclinePenalty:     penalty,
			XPPerLevel:         cfg.XPPerLevel,
			LevelAttackBonus:   cfg.LevelAttackBonus,
			LevelHPBonus:       cfg.LevelHPBonus,
		},
	}
	if err := r.Adventure.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}
