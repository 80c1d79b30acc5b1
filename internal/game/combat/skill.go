package combat

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// Range is the targeting shape of a skill.
type Range int

const (
	RangeSingle Range = iota // one foe
	RangeAll                 // every foe
	RangeSelf                // the user
	RangeAlly                // one member of the user's roster
	RangeTeam                // the user's whole roster
)

// String returns the range's content name.
func (r Range) String() string {
	switch r {
	case RangeSingle:
		return "single"
	case RangeAll:
		return "all"
	case RangeSelf:
		return "self"
	case RangeAlly:
		return "ally"
	case RangeTeam:
		return "team"
	default:
		return "unknown"
	}
}

// Effect is the kind of resolution a skill performs.
type Effect int

const (
	EffectAttack Effect = iota
	EffectHeal
	EffectUnique
)

// String returns the effect's content name.
func (e Effect) String() string {
	switch e {
	case EffectAttack:
		return "attack"
	case EffectHeal:
		return "heal"
	case EffectUnique:
		return "unique"
	default:
		return "unknown"
	}
}

// healBase is the HP restored by a heal of power 1.0.
const healBase = 20

// EffectContext carries everything a skill needs to resolve against its targets.
type EffectContext struct {
	Actor   *Combatant
	Targets []*Combatant
	// Foes and Allies are the live rosters as seen by Actor; unique effects may reach past Targets.
	Foes   []*Combatant
	Allies []*Combatant
	Log    *Log
	Source dice.Source
	Rules  Rules
}

// EffectFunc is a side effect attached to a skill: a custom announcement or a
// unique effect such as defend.
type EffectFunc func(ctx EffectContext)

// Skill is an immutable action definition. One *Skill is shared by every
// catalog that lists it.
type Skill struct {
	name     string
	power    float64
	accuracy int
	rng      Range
	effect   Effect
	announce EffectFunc
	unique   EffectFunc
}

// SkillOption customizes a Skill at construction time.
type SkillOption func(*Skill)

// WithAnnounce replaces the default "X attacks Y" line of an attack skill.
func WithAnnounce(fn EffectFunc) SkillOption {
	return func(s *Skill) { s.announce = fn }
}

// WithUnique attaches the side effect run by a unique skill.
func WithUnique(fn EffectFunc) SkillOption {
	return func(s *Skill) { s.unique = fn }
}

// NewSkill creates a Skill.
//
// Precondition: name must be non-empty; accuracy is on a 0-100 scale.
// Postcondition: Returns a Skill whose fields never change afterwards.
func NewSkill(name string, power float64, accuracy int, r Range, e Effect, opts ...SkillOption) *Skill {
	s := &Skill{name: name, power: power, accuracy: accuracy, rng: r, effect: e}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Skill) Name() string      { return s.name }
func (s *Skill) Power() float64    { return s.power }
func (s *Skill) Accuracy() int     { return s.accuracy }
func (s *Skill) Range() Range      { return s.rng }
func (s *Skill) Effect() Effect    { return s.effect }
func (s *Skill) HasUnique() bool   { return s.unique != nil }
func (s *Skill) HasAnnounce() bool { return s.announce != nil }

// Damage returns the damage this skill deals from actor to target on a hit:
// ceil(strength * power), halved first when the target is defending.
//
// Postcondition: Returns >= 0 for non-negative strength and power.
func (s *Skill) Damage(actor, target *Combatant) int {
	raw := float64(actor.Strength) * s.power
	if target.Defending {
		raw *= 0.5
	}
	return int(math.Ceil(raw))
}

// HealAmount returns the HP a heal of this skill restores: ceil(20 * power).
func (s *Skill) HealAmount() int {
	return int(math.Ceil(healBase * s.power))
}

// Resolve applies the skill to ctx.Targets and writes what happened to ctx.Log.
//
// Precondition: ctx.Actor, ctx.Log and ctx.Source must be non-nil.
// Postcondition: Target HP and state reflect the skill's effect.
func (s *Skill) Resolve(ctx EffectContext) {
	switch s.effect {
	case EffectAttack:
		s.resolveAttack(ctx)
	case EffectHeal:
		s.resolveHeal(ctx)
	case EffectUnique:
		if s.unique != nil {
			s.unique(ctx)
		}
	}
}

// resolveAttack rolls each target independently. The dodge roll scales with the
// target's agility alone; the hit roll with actor accuracy times skill accuracy.
func (s *Skill) resolveAttack(ctx EffectContext) {
	if s.announce != nil {
		s.announce(ctx)
	} else if len(ctx.Targets) > 0 {
		ctx.Log.Writef("%s attacks %s", ctx.Actor.Name, ctx.Targets[0].Name)
	}

	for _, target := range ctx.Targets {
		dodge := dice.RandomRange(ctx.Source, 0, target.Agility)
		hit := dice.RandomRange(ctx.Source, 0, ctx.Actor.Accuracy*s.accuracy)
		if hit < dodge {
			ctx.Log.Writef("But %s evades the attack.", target.Name)
			continue
		}
		dmg := s.Damage(ctx.Actor, target)
		target.ApplyHPDelta(-dmg)
		ctx.Log.Writef("%s was hit for %d damage!", target.Name, dmg)
		if target.IsDowned() {
			ctx.Log.Writef("%s is incapacitated!", target.Name)
		}
	}
}

// resolveHeal restores HP on every target. Only player-team targets get the
// follow-up HP line.
func (s *Skill) resolveHeal(ctx EffectContext) {
	for _, target := range ctx.Targets {
		amount := s.HealAmount()
		if ctx.Rules.ClampHeals {
			amount = min(amount, max(target.MaxHP-target.CurrentHP, 0))
		}
		target.ApplyHPDelta(amount)
		ctx.Log.Writef("%s is healed by %d!", target.Name, amount)
		if target.IsPlayer() {
			ctx.Log.Writef("%s is at %d HP.", target.Name, target.CurrentHP)
		}
	}
}

// Defend is the built-in unique effect that braces the user until its next turn.
func Defend(ctx EffectContext) {
	ctx.Actor.Defending = true
	ctx.Log.Writef("%s is defending.", ctx.Actor.Name)
}
