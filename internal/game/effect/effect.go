// Package effect tracks the timed buffs and debuffs an ability leaves behind during
// one encounter. State is a value: every operation returns the next State.
package effect

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
)

// Rules are the tunable constants of ability effects.
type Rules struct {
	// AbilityMultiplier is the attack multiplier granted by Explosive Arrow and Fury.
	AbilityMultiplier float64
	// ShieldReductionPct is the percentage of incoming damage Divine Shield removes.
	ShieldReductionPct int
	// HalfStepTimers makes Freeze and Ultimate Dodge count down in half turns, so an
	// effect of duration d covers 2·d enemy turns.
	HalfStepTimers bool
}

// DefaultRules returns the stock tuning: ×1.5 attack, 70% reduction, half-step timers.
func DefaultRules() Rules {
	return Rules{AbilityMultiplier: 1.5, ShieldReductionPct: 70, HalfStepTimers: true}
}

func (r Rules) ticksPerTurn() int {
	if r.HalfStepTimers {
		return 2
	}
	return 1
}

// State is the effect bookkeeping of one encounter. The zero value is usable and
// equivalent to New().
type State struct {
	AttackMultiplier float64
	BuffTurns        int
	ReductionPct     int
	ReductionTurns   int
	// FrozenTicks and InvincibleTicks count down once per enemy turn.
	FrozenTicks     int
	InvincibleTicks int
	AbilityUsed     bool
}

// New returns the state every encounter starts with.
func New() State {
	return State{AttackMultiplier: 1.0}
}

// Multiplier returns the current attack multiplier, treating an unset value as 1.0.
func (s State) Multiplier() float64 {
	if s.AttackMultiplier == 0 {
		return 1.0
	}
	return s.AttackMultiplier
}

// AttackDamage returns ceil(attack × multiplier).
func (s State) AttackDamage(attack int) int {
	return int(math.Ceil(float64(attack) * s.Multiplier()))
}

// Activation describes what an ability use did.
type Activation int

const (
	// Applied means the ability's effect took hold.
	Applied Activation = iota
	// AlreadyUsed means the ability was spent earlier this encounter; the turn is wasted.
	AlreadyUsed
	// NoEffect means the ability kind is unknown; the ability is spent without effect.
	NoEffect
)

// Activate applies an ability of the given kind and duration.
//
// Postcondition: AbilityUsed is true. When the ability was already used the state
// is returned unchanged alongside AlreadyUsed.
func (s State) Activate(kind catalog.AbilityKind, duration int, r Rules) (State, Activation) {
	if s.AbilityUsed {
		return s, AlreadyUsed
	}
	s.AbilityUsed = true
	switch kind {
	case catalog.KindFreeze:
		s.FrozenTicks = duration * r.ticksPerTurn()
	case catalog.KindExplosiveArrow:
		s.AttackMultiplier = r.AbilityMultiplier
	case catalog.KindDivineShield:
		s.ReductionPct = r.ShieldReductionPct
		s.ReductionTurns = duration
	case catalog.KindFury:
		s.AttackMultiplier = r.AbilityMultiplier
		s.BuffTurns = duration
	case catalog.KindUltimateDodge:
		s.InvincibleTicks = duration * r.ticksPerTurn()
	default:
		return s, NoEffect
	}
	return s, Applied
}

// Strike is the result of one enemy attack against the current state.
type Strike struct {
	Frozen     bool
	Invincible bool
	Reduced    bool
	Damage     int
}

// EnemyStrike computes the damage an enemy with base attack deals this turn.
// A frozen enemy deals nothing; otherwise an active reduction yields
// ceil(base × (100 − pct) / 100) and invincibility zeroes the result.
func (s State) EnemyStrike(base int) Strike {
	if s.FrozenTicks > 0 {
		return Strike{Frozen: true}
	}
	st := Strike{Damage: base}
	if s.ReductionTurns > 0 && s.ReductionPct > 0 {
		st.Reduced = true
		st.Damage = (base*(100-s.ReductionPct) + 99) / 100
	}
	if s.InvincibleTicks > 0 {
		st.Invincible = true
		st.Damage = 0
	}
	return st
}

// Tick advances every timer by one enemy turn. attacked reports whether the player
// attacked this turn.
//
// A frozen turn only thaws the enemy. Otherwise the buff, reduction and invincibility
// timers count down, and a multiplier with no buff turns left is spent by the attack
// that used it.
func (s State) Tick(attacked bool) State {
	if s.FrozenTicks > 0 {
		s.FrozenTicks--
		return s
	}
	if s.BuffTurns > 0 {
		s.BuffTurns--
		if s.BuffTurns == 0 {
			s.AttackMultiplier = 1.0
		}
	}
	if s.ReductionTurns > 0 {
		s.ReductionTurns--
		if s.ReductionTurns == 0 {
			s.ReductionPct = 0
		}
	}
	if s.InvincibleTicks > 0 {
		s.InvincibleTicks--
	}
	if attacked && s.Multiplier() != 1.0 && s.BuffTurns == 0 {
		s.AttackMultiplier = 1.0
	}
	return s
}

// String renders the active timers for debug logs.
func (s State) String() string {
	return fmt.Sprintf("mult=%.2f buff=%d reduce=%d%%/%d frozen=%d invincible=%d used=%t",
		s.Multiplier(), s.BuffTurns, s.ReductionPct, s.ReductionTurns, s.FrozenTicks, s.InvincibleTicks, s.AbilityUsed)
}
