package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed content/*.yaml
var defaultContent embed.FS

const (
	classesFile = "classes.yaml"
	enemiesFile = "enemies.yaml"
	storyFile   = "story.yaml"
)

type abilityYAML struct {
	ID            int64  `yaml:"id"`
	Name          string `yaml:"name"`
	Kind          string `yaml:"kind"`
	Effect        string `yaml:"effect"`
	BonusHP       int    `yaml:"bonus_hp"`
	BonusAttack   int    `yaml:"bonus_attack"`
	DurationTurns int    `yaml:"duration_turns"`
}

type classYAML struct {
	ID         int64       `yaml:"id"`
	Name       string      `yaml:"name"`
	BaseHP     int         `yaml:"base_hp"`
	BaseAttack int         `yaml:"base_attack"`
	Ability    abilityYAML `yaml:"ability"`
}

type classesYAML struct {
	Classes []classYAML `yaml:"classes"`
}

type enemyYAML struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	HP       int    `yaml:"hp"`
	Attack   int    `yaml:"attack"`
	Category string `yaml:"category"`
}

type enemiesYAML struct {
	Enemies []enemyYAML `yaml:"enemies"`
}

type storyYAML struct {
	Bosses []string `yaml:"bosses"`
	Events []string `yaml:"events"`
}

// Default returns the catalog built from the content shipped with the binary.
//
// Postcondition: Returns a validated Catalog; an error here means the embedded content is broken.
func Default() (*Catalog, error) {
	sub, err := fs.Sub(defaultContent, "content")
	if err != nil {
		return nil, fmt.Errorf("opening embedded content: %w", err)
	}
	return LoadFS(sub)
}

// LoadDir reads classes.yaml, enemies.yaml and story.yaml from dir.
//
// Precondition: dir must be a readable directory containing all three files.
// Postcondition: Returns a validated Catalog or an error naming the failing file.
func LoadDir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path %q is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads the three content files from the root of fsys.
//
// Postcondition: Returns a validated Catalog or an error naming the failing file.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	var classesDoc classesYAML
	if err := decodeFile(fsys, classesFile, &classesDoc); err != nil {
		return nil, err
	}
	var enemiesDoc enemiesYAML
	if err := decodeFile(fsys, enemiesFile, &enemiesDoc); err != nil {
		return nil, err
	}
	var storyDoc storyYAML
	if err := decodeFile(fsys, storyFile, &storyDoc); err != nil {
		return nil, err
	}

	classes := make([]Class, 0, len(classesDoc.Classes))
	for _, c := range classesDoc.Classes {
		classes = append(classes, c.toClass())
	}
	enemies := make([]EnemyTemplate, 0, len(enemiesDoc.Enemies))
	for _, e := range enemiesDoc.Enemies {
		enemies = append(enemies, EnemyTemplate{
			ID:       e.ID,
			Name:     e.Name,
			HP:       e.HP,
			Attack:   e.Attack,
			Category: Category(e.Category),
		})
	}
	return New(classes, enemies, storyDoc.Bosses, storyDoc.Events)
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("reading %q: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %q: %w", name, err)
	}
	return nil
}

// The kind key wins; content without one falls back to matching the display name.
func (c classYAML) toClass() Class {
	kind := ParseKind(c.Ability.Kind)
	if c.Ability.Kind == "" {
		kind = ParseKind(c.Ability.Name)
	}
	return Class{
		ID:         c.ID,
		Name:       c.Name,
		BaseHP:     c.BaseHP,
		BaseAttack: c.BaseAttack,
		Ability: Ability{
			ID:            c.Ability.ID,
			ClassID:       c.ID,
			Name:          c.Ability.Name,
			Effect:        c.Ability.Effect,
			BonusHP:       c.Ability.BonusHP,
			BonusAttack:   c.Ability.BonusAttack,
			DurationTurns: c.Ability.DurationTurns,
			Kind:          kind,
		},
	}
}
