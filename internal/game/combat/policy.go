package combat

import "github.com/cory-johannsen/skirmish/internal/game/dice"

// Turn is the view of the battle handed to a Policy.
type Turn struct {
	Actor *Combatant
	// Foes is the opposing roster; every member is active.
	Foes []*Combatant
	// Allies is the actor's own roster, actor included.
	Allies []*Combatant
	Log    *Log
	Source dice.Source
	Rules  Rules
}

// Effect builds the EffectContext for resolving a skill against targets this turn.
func (t Turn) Effect(targets []*Combatant) EffectContext {
	return EffectContext{
		Actor:   t.Actor,
		Targets: targets,
		Foes:    t.Foes,
		Allies:  t.Allies,
		Log:     t.Log,
		Source:  t.Source,
		Rules:   t.Rules,
	}
}

// Policy decides and resolves an autonomous combatant's turn.
type Policy interface {
	// TakeTurn resolves exactly one action for turn.Actor. It must not advance
	// the turn order; the engine runs end-of-turn processing afterwards.
	TakeTurn(turn Turn)
}

// RandomAttacker uses Skill on one foe chosen uniformly at random.
type RandomAttacker struct {
	Skill *Skill
}

// TakeTurn picks a random foe and resolves Skill against it.
//
// Postcondition: Exactly one foe is targeted when Foes is non-empty; otherwise no-op.
func (p RandomAttacker) TakeTurn(turn Turn) {
	if p.Skill == nil || len(turn.Foes) == 0 {
		return
	}
	target := turn.Foes[dice.RandomRange(turn.Source, 0, len(turn.Foes))]
	p.Skill.Resolve(turn.Effect([]*Combatant{target}))
}
