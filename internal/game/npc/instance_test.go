package npc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
	"github.com/cory-johannsen/fantasy/internal/game/npc"
)

func TestNewInstance_UnitScaleCopiesTemplate(t *testing.T) {
	tmpl := catalog.EnemyTemplate{ID: 1, Name: "Zombie", HP: 20, Attack: 4, Category: catalog.CategoryBasic}
	inst := npc.NewInstance(tmpl, 1.0)
	assert.Equal(t, int64(1), inst.TemplateID)
	assert.Equal(t, "Zombie", inst.Name)
	assert.Equal(t, 20, inst.HP)
	assert.Equal(t, 4, inst.Attack)
	assert.False(t, inst.IsBoss())
	assert.True(t, inst.Alive())
}

func TestNewInstance_BossScaling(t *testing.T) {
	tmpl := catalog.EnemyTemplate{ID: 9, Name: "Jack", HP: 50, Attack: 4, Category: catalog.CategoryBoss}
	scale := npc.ScaleFactor(10, 36, 1.2)
	inst := npc.NewInstance(tmpl, scale)
	assert.Equal(t, int(math.Ceil(50*(1+10.0/36*1.2))), inst.HP)
	assert.Equal(t, 67, inst.HP)
	assert.Equal(t, 6, inst.Attack)
	assert.True(t, inst.IsBoss())
}

func TestNewInstance_AttackFloorIsOne(t *testing.T) {
	tmpl := catalog.EnemyTemplate{ID: 1, Name: "Slime", HP: 5, Attack: 0, Category: catalog.CategoryBasic}
	inst := npc.NewInstance(tmpl, 1.2)
	assert.Equal(t, 1, inst.Attack)
}

func TestApplyDamage(t *testing.T) {
	inst := npc.NewInstance(catalog.EnemyTemplate{ID: 1, Name: "Rat", HP: 5, Attack: 1, Category: catalog.CategoryBasic}, 1)
	inst.ApplyDamage(7)
	assert.Equal(t, -2, inst.HP)
	assert.False(t, inst.Alive())
}

func TestPropertyScalingFormula(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		hp := rapid.IntRange(1, 500).Draw(t, "hp")
		atk := rapid.IntRange(0, 50).Draw(t, "atk")
		total := rapid.IntRange(1, 100).Draw(t, "total")
		step := rapid.IntRange(0, total).Draw(t, "step")
		span := rapid.SampledFrom([]float64{0.5, 1.2}).Draw(t, "span")

		scale := 1 + float64(step)/float64(total)*span
		assert.InDelta(t, scale, npc.ScaleFactor(step, total, span), 1e-12)

		inst := npc.NewInstance(catalog.EnemyTemplate{ID: 1, Name: "x", HP: hp, Attack: atk, Category: catalog.CategoryBasic}, scale)
		assert.Equal(t, int(math.Ceil(float64(hp)*scale)), inst.HP)
		assert.Equal(t, max(1, int(math.Ceil(float64(atk)*scale))), inst.Attack)
		assert.GreaterOrEqual(t, inst.HP, hp)
		assert.GreaterOrEqual(t, inst.Attack, 1)
	})
}
