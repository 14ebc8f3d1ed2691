package effect_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/effect"
)

func TestNew_Defaults(t *testing.T) {
	s := effect.New()
	assert.Equal(t, 1.0, s.Multiplier())
	assert.False(t, s.AbilityUsed)
	assert.Equal(t, 14, s.AttackDamage(14))
}

func TestZeroValueUsable(t *testing.T) {
	var s effect.State
	assert.Equal(t, 1.0, s.Multiplier())
	assert.Equal(t, 7, s.AttackDamage(7))
	assert.Equal(t, effect.Strike{Damage: 4}, s.EnemyStrike(4))
}

func TestActivate_SecondUseIsNoOp(t *testing.T) {
	r := effect.DefaultRules()
	s, res := effect.New().Activate(catalog.KindFury, 2, r)
	require.Equal(t, effect.Applied, res)

	again, res := s.Activate(catalog.KindFreeze, 1, r)
	assert.Equal(t, effect.AlreadyUsed, res)
	assert.Equal(t, s, again)
}

func TestActivate_UnknownSpendsAbility(t *testing.T) {
	s, res := effect.New().Activate(catalog.KindUnknown, 3, effect.DefaultRules())
	assert.Equal(t, effect.NoEffect, res)
	assert.True(t, s.AbilityUsed)
	assert.Equal(t, 1.0, s.Multiplier())
	assert.Equal(t, 5, s.EnemyStrike(5).Damage)
}

func TestFreeze_HalfStepCoversTwoEnemyTurns(t *testing.T) {
	s, _ := effect.New().Activate(catalog.KindFreeze, 1, effect.DefaultRules())
	for turn := 1; turn <= 2; turn++ {
		st := s.EnemyStrike(6)
		assert.True(t, st.Frozen, "turn %d", turn)
		assert.Zero(t, st.Damage)
		s = s.Tick(false)
	}
	assert.Equal(t, 6, s.EnemyStrike(6).Damage)
}

func TestFreeze_WholeTurnCoversOneEnemyTurn(t *testing.T) {
	r := effect.DefaultRules()
	r.HalfStepTimers = false
	s, _ := effect.New().Activate(catalog.KindFreeze, 1, r)
	assert.True(t, s.EnemyStrike(6).Frozen)
	s = s.Tick(false)
	assert.False(t, s.EnemyStrike(6).Frozen)
}

func TestUltimateDodge(t *testing.T) {
	s, _ := effect.New().Activate(catalog.KindUltimateDodge, 1, effect.DefaultRules())
	for turn := 1; turn <= 2; turn++ {
		st := s.EnemyStrike(9)
		assert.True(t, st.Invincible, "turn %d", turn)
		assert.Zero(t, st.Damage)
		s = s.Tick(false)
	}
	assert.Equal(t, 9, s.EnemyStrike(9).Damage)
}

func TestDivineShield_ReducesForDurationThenFull(t *testing.T) {
	s, _ := effect.New().Activate(catalog.KindDivineShield, 2, effect.DefaultRules())
	for turn := 1; turn <= 2; turn++ {
		st := s.EnemyStrike(10)
		assert.True(t, st.Reduced)
		assert.Equal(t, 3, st.Damage, "turn %d", turn)
		s = s.Tick(false)
	}
	st := s.EnemyStrike(10)
	assert.False(t, st.Reduced)
	assert.Equal(t, 10, st.Damage)
}

func TestDivineShield_ZeroDurationNeverReduces(t *testing.T) {
	s, res := effect.New().Activate(catalog.KindDivineShield, 0, effect.DefaultRules())
	assert.Equal(t, effect.Applied, res)
	assert.True(t, s.AbilityUsed)
	st := s.EnemyStrike(10)
	assert.False(t, st.Reduced)
	assert.Equal(t, 10, st.Damage)
}

func TestExplosiveArrow_SpentByNextAttack(t *testing.T) {
	s, _ := effect.New().Activate(catalog.KindExplosiveArrow, 1, effect.DefaultRules())
	s = s.Tick(false)
	assert.Equal(t, 14, s.AttackDamage(9))
	s = s.Tick(true)
	assert.Equal(t, 9, s.AttackDamage(9))
}

func TestFury_MultiplierExpiresWithBuff(t *testing.T) {
	s, _ := effect.New().Activate(catalog.KindFury, 2, effect.DefaultRules())
	assert.Equal(t, 18, s.AttackDamage(12))
	s = s.Tick(false)
	assert.Equal(t, 1, s.BuffTurns)
	assert.Equal(t, 18, s.AttackDamage(12))
	s = s.Tick(true)
	assert.Equal(t, 0, s.BuffTurns)
	assert.Equal(t, 12, s.AttackDamage(12))
}

func TestTick_FrozenTurnHoldsOtherTimers(t *testing.T) {
	s := effect.State{AttackMultiplier: 1.5, BuffTurns: 2, FrozenTicks: 1}
	s = s.Tick(true)
	assert.Equal(t, 0, s.FrozenTicks)
	assert.Equal(t, 2, s.BuffTurns)
	assert.Equal(t, 1.5, s.Multiplier())
}

func TestPropertyShieldDamageIsCeilThirtyPercent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.IntRange(0, 1000).Draw(t, "base")
		s, _ := effect.New().Activate(catalog.KindDivineShield, 2, effect.DefaultRules())
		want := int(math.Ceil(float64(base*30) / 100))
		assert.Equal(t, want, s.EnemyStrike(base).Damage)
	})
}

func TestPropertyAttackDamageIsCeil(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		atk := rapid.IntRange(1, 1000).Draw(t, "atk")
		mult := rapid.SampledFrom([]float64{1.0, 1.5}).Draw(t, "mult")
		s := effect.State{AttackMultiplier: mult}
		assert.Equal(t, int(math.Ceil(float64(atk)*mult)), s.AttackDamage(atk))
	})
}

func TestPropertyTimersNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		kind := catalog.AbilityKind(rapid.IntRange(0, 5).Draw(t, "kind"))
		dur := rapid.IntRange(0, 4).Draw(t, "dur")
		r := effect.DefaultRules()
		r.HalfStepTimers = rapid.Bool().Draw(t, "half")
		s, _ := effect.New().Activate(kind, dur, r)
		for i := 0; i < 12; i++ {
			s = s.Tick(rapid.Bool().Draw(t, "attacked"))
			assert.GreaterOrEqual(t, s.BuffTurns, 0)
			assert.GreaterOrEqual(t, s.ReductionTurns, 0)
			assert.GreaterOrEqual(t, s.FrozenTicks, 0)
			assert.GreaterOrEqual(t, s.InvincibleTicks, 0)
		}
		s = s.Tick(true)
		assert.Equal(t, 1.0, s.Multiplier(), "every multiplier expires once the player attacks")
	})
}
