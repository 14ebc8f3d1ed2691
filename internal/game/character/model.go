// Package character defines the player character model and the pure rules that
// create and level it.
package character

// Character is a player character's persistent state.
//
// ID is set by the persistence layer; zero indicates an unsaved character.
// HP has no maximum: level-ups raise it directly.
type Character struct {
	ID        int64
	Name      string
	ClassID   int64
	AbilityID int64
	// ClassName is denormalised for display.
	ClassName string

	Experience int
	HP         int
	Attack     int
	Level      int
}

// Alive reports whether the character can keep playing.
func (c *Character) Alive() bool {
	return c.HP > 0
}

// ApplyDamage subtracts dmg from HP, flooring at 0.
//
// Precondition: dmg must be >= 0.
// Postcondition: HP >= 0.
func (c *Character) ApplyDamage(dmg int) {
	c.HP -= dmg
	if c.HP < 0 {
		c.HP = 0
	}
}
