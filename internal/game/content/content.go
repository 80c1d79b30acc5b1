// Package content loads skills, player classes and enemy templates from YAML.
package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Stats mirrors combat.Stats in YAML form.
type Stats struct {
	MaxHP    int `yaml:"max_hp"`
	Strength int `yaml:"strength"`
	Defense  int `yaml:"defense"`
	Speed    int `yaml:"speed"`
	Agility  int `yaml:"agility"`
	Accuracy int `yaml:"accuracy"`
}

func (s Stats) combat() combat.Stats {
	return combat.Stats{
		MaxHP:    s.MaxHP,
		Strength: s.Strength,
		Defense:  s.Defense,
		Speed:    s.Speed,
		Agility:  s.Agility,
		Accuracy: s.Accuracy,
	}
}

// SkillDef defines one skill.
type SkillDef struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Power    float64 `yaml:"power"`
	Accuracy int     `yaml:"accuracy"`
	Range    string  `yaml:"range"`
	Effect   string  `yaml:"effect"`
	// Announce replaces the default attack line; {actor} and {target} are substituted.
	Announce string `yaml:"announce"`
	// Unique names a built-in unique effect, e.g. "defend".
	Unique string `yaml:"unique"`
	// UniqueScript names a Lua function run as the unique effect.
	UniqueScript string `yaml:"unique_script"`
}

// Validate checks that the skill definition satisfies basic invariants.
//
// Precondition: d must not be nil.
// Postcondition: Returns nil iff id and name are non-empty, power >= 0,
// accuracy is in [0, 100], range and effect are known, and a unique skill
// names exactly one of unique or unique_script.
func (d *SkillDef) Validate() error {
	if d.ID == "" {
		return errors.New("skill: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("skill %q: name must not be empty", d.ID)
	}
	if d.Power < 0 {
		return fmt.Errorf("skill %q: power must be >= 0", d.ID)
	}
	if d.Accuracy < 0 || d.Accuracy > 100 {
		return fmt.Errorf("skill %q: accuracy must be in [0, 100]", d.ID)
	}
	if _, err := ParseRange(d.Range); err != nil {
		return fmt.Errorf("skill %q: %w", d.ID, err)
	}
	effect, err := ParseEffect(d.Effect)
	if err != nil {
		return fmt.Errorf("skill %q: %w", d.ID, err)
	}
	if effect == combat.EffectUnique {
		if (d.Unique == "") == (d.UniqueScript == "") {
			return fmt.Errorf("skill %q: unique skills need exactly one of unique or unique_script", d.ID)
		}
		if d.Unique != "" {
			if _, ok := builtinUniques[d.Unique]; !ok {
				return fmt.Errorf("skill %q: unknown built-in unique %q", d.ID, d.Unique)
			}
		}
	} else if d.Unique != "" || d.UniqueScript != "" {
		return fmt.Errorf("skill %q: only unique skills may set unique or unique_script", d.ID)
	}
	return nil
}

// Template defines a player class or an enemy archetype.
type Template struct {
	ID     string   `yaml:"id"`
	Name   string   `yaml:"name"`
	Stats  Stats    `yaml:"stats"`
	Skills []string `yaml:"skills"`
	// AttackSkill is the skill the random policy uses; defaults to the first skill. Enemies only.
	AttackSkill string `yaml:"attack_skill"`
	// AIScript names a Lua decision hook. Enemies only; empty = random policy.
	AIScript string `yaml:"ai_script"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, MaxHP >= 1, stats
// are non-negative and at least one skill is listed.
func (t *Template) Validate() error {
	if t.ID == "" {
		return errors.New("template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("template %q: name must not be empty", t.ID)
	}
	if t.Stats.MaxHP < 1 {
		return fmt.Errorf("template %q: max_hp must be >= 1", t.ID)
	}
	s := t.Stats
	if s.Strength < 0 || s.Defense < 0 || s.Speed < 0 || s.Agility < 0 || s.Accuracy < 0 {
		return fmt.Errorf("template %q: stats must not be negative", t.ID)
	}
	if len(t.Skills) == 0 {
		return fmt.Errorf("template %q: at least one skill is required", t.ID)
	}
	return nil
}

// File is one YAML content document.
type File struct {
	Skills  []*SkillDef `yaml:"skills"`
	Players []*Template `yaml:"players"`
	Enemies []*Template `yaml:"enemies"`
}

// Validate validates every definition in f and reports all violations at once.
func (f *File) Validate() error {
	var errs []string
	for _, s := range f.Skills {
		if err := s.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for _, t := range f.Players {
		if err := t.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
		if t.AIScript != "" || t.AttackSkill != "" {
			errs = append(errs, fmt.Sprintf("player %q: ai_script and attack_skill are enemy-only", t.ID))
		}
	}
	for _, t := range f.Enemies {
		if err := t.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("content validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

var builtinUniques = map[string]combat.EffectFunc{
	"defend": combat.Defend,
}

var ranges = map[string]combat.Range{}

var effects = map[string]combat.Effect{}

func init() {
	for _, r := range []combat.Range{combat.RangeSingle, combat.RangeAll, combat.RangeSelf, combat.RangeAlly, combat.RangeTeam} {
		ranges[r.String()] = r
	}
	for _, e := range []combat.Effect{combat.EffectAttack, combat.EffectHeal, combat.EffectUnique} {
		effects[e.String()] = e
	}
}

// ParseRange maps a content range name (single, all, self, ally, team) to a combat.Range.
func ParseRange(s string) (combat.Range, error) {
	r, ok := ranges[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown range %q", s)
	}
	return r, nil
}

// ParseEffect maps a content effect name (attack, heal, unique) to a combat.Effect.
func ParseEffect(s string) (combat.Effect, error) {
	e, ok := effects[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown effect %q", s)
	}
	return e, nil
}
