// Package npc provides live enemy instances scaled from catalog templates.
package npc

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
)

// Instance is a transient enemy for exactly one encounter. It is never persisted.
type Instance struct {
	// TemplateID is the source template's ID.
	TemplateID int64
	// Name is copied from the template for display.
	Name string
	// HP is the instance's current hit points.
	HP int
	// Attack is the damage dealt by each strike.
	Attack int
	// Category is copied from the template and decides the victory reward.
	Category catalog.Category
}

// NewInstance creates an enemy from tmpl scaled by scale.
//
// Precondition: scale must be > 0.
// Postcondition: HP = ceil(tmpl.HP × scale); Attack = max(1, ceil(tmpl.Attack × scale)).
func NewInstance(tmpl catalog.EnemyTemplate, scale float64) *Instance {
	return &Instance{
		TemplateID: tmpl.ID,
		Name:       tmpl.Name,
		HP:         scaleStat(tmpl.HP, scale),
		Attack:     max(1, scaleStat(tmpl.Attack, scale)),
		Category:   tmpl.Category,
	}
}

// ScaleFactor returns 1 + (step / total) × span, the growth applied to enemies met at step.
//
// Precondition: total must be > 0.
func ScaleFactor(step, total int, span float64) float64 {
	return 1 + float64(step)/float64(total)*span
}

func scaleStat(base int, scale float64) int {
	return int(math.Ceil(float64(base) * scale))
}

// IsBoss reports whether the instance was spawned from a boss template.
func (i *Instance) IsBoss() bool {
	return i.Category == catalog.CategoryBoss
}

// Alive reports whether the instance has HP left.
func (i *Instance) Alive() bool {
	return i.HP > 0
}

// ApplyDamage subtracts dmg from HP. HP may go negative; only > 0 matters.
func (i *Instance) ApplyDamage(dmg int) {
	i.HP -= dmg
}

// String renders the instance for logs.
func (i *Instance) String() string {
	return fmt.Sprintf("%s (HP %d, ATK %d)", i.Name, i.HP, i.Attack)
}
