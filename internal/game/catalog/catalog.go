// Package catalog holds the immutable reference data of the game: playable classes
// with their bonded ability, enemy templates, and the ordered story.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a lookup names a record the catalog does not hold.
var ErrNotFound = errors.New("catalog record not found")

// Category classifies an enemy template.
type Category string

const (
	CategoryBasic Category = "basic"
	CategoryBoss  Category = "boss"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return c == CategoryBasic || c == CategoryBoss
}

// AbilityKind is the closed set of ability effects the combat engine knows how to apply.
// The zero value is KindUnknown, which applies no effect.
type AbilityKind int

const (
	KindUnknown AbilityKind = iota
	KindFreeze
	KindExplosiveArrow
	KindDivineShield
	KindFury
	KindUltimateDodge
)

var kindNames = map[AbilityKind]string{
	KindUnknown:        "unknown",
	KindFreeze:         "freeze",
	KindExplosiveArrow: "explosive_arrow",
	KindDivineShield:   "divine_shield",
	KindFury:           "fury",
	KindUltimateDodge:  "ultimate_dodge",
}

// String returns the content key of the kind, e.g. "divine_shield".
func (k AbilityKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind maps a content key or a display name onto an AbilityKind.
// Matching ignores case, spaces, underscores and apostrophes, so "Divine Shield",
// "divine_shield" and "DIVINESHIELD" are equivalent. Anything unrecognised is KindUnknown.
func ParseKind(s string) AbilityKind {
	norm := strings.NewReplacer(" ", "", "_", "", "-", "", "'", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	for k, name := range kindNames {
		if strings.ReplaceAll(name, "_", "") == norm {
			return k
		}
	}
	return KindUnknown
}

// Ability is the single special action bonded to a class.
type Ability struct {
	ID            int64
	ClassID       int64
	Name          string
	Effect        string
	BonusHP       int
	BonusAttack   int
	DurationTurns int
	Kind          AbilityKind
}

// Class is a playable class with exactly one Ability.
type Class struct {
	ID         int64
	Name       string
	BaseHP     int
	BaseAttack int
	Ability    Ability
}

// EnemyTemplate is the unscaled definition of an enemy.
type EnemyTemplate struct {
	ID       int64
	Name     string
	HP       int
	Attack   int
	Category Category
}

// Catalog is an immutable, validated set of reference data.
// It is safe for concurrent use because nothing mutates it after New returns.
type Catalog struct {
	classes []Class
	enemies []EnemyTemplate
	bosses  []EnemyTemplate
	story   []string
}

// New validates and assembles a Catalog. bossOrder names the boss templates in the
// order they are fought.
//
// Precondition: none; all invariants are checked here.
// Postcondition: Returns a Catalog with unique ids, at least one class, one basic enemy,
// one boss and one story event, or a descriptive error.
func New(classes []Class, enemies []EnemyTemplate, bossOrder []string, story []string) (*Catalog, error) {
	if len(classes) == 0 {
		return nil, errors.New("catalog: at least one class is required")
	}
	classIDs := make(map[int64]bool, len(classes))
	abilityIDs := make(map[int64]bool, len(classes))
	for _, c := range classes {
		if err := validateClass(c); err != nil {
			return nil, err
		}
		if classIDs[c.ID] {
			return nil, fmt.Errorf("catalog: duplicate class id %d", c.ID)
		}
		if abilityIDs[c.Ability.ID] {
			return nil, fmt.Errorf("catalog: duplicate ability id %d", c.Ability.ID)
		}
		classIDs[c.ID] = true
		abilityIDs[c.Ability.ID] = true
	}

	byName := make(map[string]EnemyTemplate, len(enemies))
	enemyIDs := make(map[int64]bool, len(enemies))
	basic := 0
	for _, e := range enemies {
		if err := validateEnemy(e); err != nil {
			return nil, err
		}
		if enemyIDs[e.ID] {
			return nil, fmt.Errorf("catalog: duplicate enemy id %d", e.ID)
		}
		if _, dup := byName[e.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate enemy name %q", e.Name)
		}
		enemyIDs[e.ID] = true
		byName[e.Name] = e
		if e.Category == CategoryBasic {
			basic++
		}
	}
	if basic == 0 {
		return nil, errors.New("catalog: at least one basic enemy is required")
	}

	if len(bossOrder) == 0 {
		return nil, errors.New("catalog: boss order must name at least one boss")
	}
	bosses := make([]EnemyTemplate, 0, len(bossOrder))
	for _, name := range bossOrder {
		e, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("catalog: boss order names unknown enemy %q", name)
		}
		if e.Category != CategoryBoss {
			return nil, fmt.Errorf("catalog: boss order names %q which is not a boss", name)
		}
		bosses = append(bosses, e)
	}

	if len(story) == 0 {
		return nil, errors.New("catalog: story must contain at least one event")
	}
	for i, ev := range story {
		if strings.TrimSpace(ev) == "" {
			return nil, fmt.Errorf("catalog: story event %d is empty", i+1)
		}
	}

	return &Catalog{
		classes: append([]Class(nil), classes...),
		enemies: append([]EnemyTemplate(nil), enemies...),
		bosses:  bosses,
		story:   append([]string(nil), story...),
	}, nil
}

func validateClass(c Class) error {
	if c.ID <= 0 {
		return fmt.Errorf("catalog: class id must be > 0, got %d", c.ID)
	}
	if c.Name == "" {
		return fmt.Errorf("catalog: class %d: name must not be empty", c.ID)
	}
	if c.BaseHP < 1 {
		return fmt.Errorf("catalog: class %q: base_hp must be >= 1", c.Name)
	}
	if c.BaseAttack < 1 {
		return fmt.Errorf("catalog: class %q: base_attack must be >= 1", c.Name)
	}
	a := c.Ability
	if a.ID <= 0 {
		return fmt.Errorf("catalog: class %q: ability id must be > 0", c.Name)
	}
	if a.ClassID != c.ID {
		return fmt.Errorf("catalog: class %q: ability %q is bonded to class %d", c.Name, a.Name, a.ClassID)
	}
	if a.Name == "" {
		return fmt.Errorf("catalog: class %q: ability name must not be empty", c.Name)
	}
	if a.DurationTurns < 0 {
		return fmt.Errorf("catalog: ability %q: duration_turns must be >= 0", a.Name)
	}
	return nil
}

func validateEnemy(e EnemyTemplate) error {
	if e.ID <= 0 {
		return fmt.Errorf("catalog: enemy id must be > 0, got %d", e.ID)
	}
	if e.Name == "" {
		return fmt.Errorf("catalog: enemy %d: name must not be empty", e.ID)
	}
	if e.HP < 1 {
		return fmt.Errorf("catalog: enemy %q: hp must be >= 1", e.Name)
	}
	if e.Attack < 0 {
		return fmt.Errorf("catalog: enemy %q: attack must be >= 0", e.Name)
	}
	if !e.Category.Valid() {
		return fmt.Errorf("catalog: enemy %q: category must be basic or boss, got %q", e.Name, e.Category)
	}
	return nil
}

// Classes returns every class in content order.
func (c *Catalog) Classes() []Class {
	return append([]Class(nil), c.classes...)
}

// Class returns the class with the given id.
//
// Postcondition: Returns the class or an error wrapping ErrNotFound.
func (c *Catalog) Class(id int64) (Class, error) {
	for _, cl := range c.classes {
		if cl.ID == id {
			return cl, nil
		}
	}
	return Class{}, fmt.Errorf("class %d: %w", id, ErrNotFound)
}

// AbilityForClass returns the ability bonded to classID.
//
// Postcondition: Returns the ability or an error wrapping ErrNotFound.
func (c *Catalog) AbilityForClass(classID int64) (Ability, error) {
	cl, err := c.Class(classID)
	if err != nil {
		return Ability{}, fmt.Errorf("ability for class %d: %w", classID, ErrNotFound)
	}
	return cl.Ability, nil
}

// EnemyByName returns the enemy template called name.
//
// Postcondition: Returns the template or an error wrapping ErrNotFound.
func (c *Catalog) EnemyByName(name string) (EnemyTemplate, error) {
	for _, e := range c.enemies {
		if e.Name == name {
			return e, nil
		}
	}
	return EnemyTemplate{}, fmt.Errorf("enemy %q: %w", name, ErrNotFound)
}

// Enemies returns every template of the given category in content order.
func (c *Catalog) Enemies(cat Category) []EnemyTemplate {
	var out []EnemyTemplate
	for _, e := range c.enemies {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// AllEnemies returns every enemy template in content order.
func (c *Catalog) AllEnemies() []EnemyTemplate {
	return append([]EnemyTemplate(nil), c.enemies...)
}

// Bosses returns the boss templates in fight order.
func (c *Catalog) Bosses() []EnemyTemplate {
	return append([]EnemyTemplate(nil), c.bosses...)
}

// BossOrder returns the boss names in fight order.
func (c *Catalog) BossOrder() []string {
	names := make([]string, len(c.bosses))
	for i, b := range c.bosses {
		names[i] = b.Name
	}
	return names
}

// Story returns the ordered narrative events.
func (c *Catalog) Story() []string {
	return append([]string(nil), c.story...)
}
