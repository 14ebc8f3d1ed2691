package character

import (
	"errors"
	"strings"

	"github.com/cory-johannsen/fantasy/internal/game/catalog"
)

// Build constructs a new level 1 character of class cls.
// HP = base HP + ability bonus_hp, attack = base attack + ability bonus_attack.
//
// Precondition: name must be non-blank.
// Postcondition: Returns an unsaved Character (ID 0) with Experience 0 and Level 1, or a non-nil error.
func Build(name string, cls catalog.Class) (*Character, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("character name must not be empty")
	}
	if cls.ID == 0 {
		return nil, errors.New("class must be set")
	}
	return &Character{
		Name:      name,
		ClassID:   cls.ID,
		AbilityID: cls.Ability.ID,
		ClassName: cls.Name,
		HP:        cls.BaseHP + cls.Ability.BonusHP,
		Attack:    cls.BaseAttack + cls.Ability.BonusAttack,
		Level:     1,
	}, nil
}

// LevelFor returns the level earned by exp total experience: 1 + floor(exp / xpPerLevel).
//
// Precondition: xpPerLevel must be > 0; exp must be >= 0.
func LevelFor(exp, xpPerLevel int) int {
	return 1 + exp/xpPerLevel
}

// LevelUp raises the character to newLevel, adding attackBonus attack and hpBonus HP
// for every level gained. It returns the number of levels gained.
//
// Postcondition: Level is max(Level, newLevel); HP and Attack change only when levels were gained.
func (c *Character) LevelUp(newLevel, attackBonus, hpBonus int) int {
	gained := newLevel - c.Level
	if gained <= 0 {
		return 0
	}
	c.Attack += gained * attackBonus
	c.HP += gained * hpBonus
	c.Level = newLevel
	return gained
}
