package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Decision is what a decision hook chose for one turn.
type Decision struct {
	Skill  string
	Target string // combatant ID; ignored by ranges that need none
}

// ScriptedPolicy lets a Lua hook pick an autonomous combatant's skill and target.
// The hook is called with the actor's ID and returns a table
// {skill = "<name>", target = "<id>"}. Anything unusable hands the turn to the fallback.
//
// Invariant: caller and fallback are non-nil.
type ScriptedPolicy struct {
	caller   ScriptCaller
	hook     string
	fallback combat.Policy
	logger   *zap.Logger
}

// NewScriptedPolicy constructs a ScriptedPolicy.
//
// Precondition: caller, fallback and logger must not be nil.
func NewScriptedPolicy(caller ScriptCaller, hook string, fallback combat.Policy, logger *zap.Logger) *ScriptedPolicy {
	if caller == nil {
		panic("ai.NewScriptedPolicy: caller must not be nil")
	}
	if fallback == nil {
		panic("ai.NewScriptedPolicy: fallback must not be nil")
	}
	if logger == nil {
		panic("ai.NewScriptedPolicy: logger must not be nil")
	}
	return &ScriptedPolicy{caller: caller, hook: hook, fallback: fallback, logger: logger}
}

// Hook returns the Lua function name this policy calls.
func (p *ScriptedPolicy) Hook() string { return p.hook }

// TakeTurn asks the hook for a decision and resolves it, or defers to the fallback.
//
// Postcondition: Exactly one skill is resolved, or none when the fallback declines.
func (p *ScriptedPolicy) TakeTurn(turn combat.Turn) {
	v := newView(turn.Actor, nil, turn.Foes, turn.Allies, turn.Log, turn.Source)
	ret, err := p.caller.Call(p.hook, v.bindings(), lua.LString(turn.Actor.ID))
	if err != nil {
		p.logger.Warn("decision hook failed",
			zap.String("hook", p.hook),
			zap.String("actor", turn.Actor.Name),
			zap.Error(err),
		)
		p.fallback.TakeTurn(turn)
		return
	}

	d, ok := decode(ret)
	if !ok {
		p.logger.Debug("decision hook declined",
			zap.String("hook", p.hook),
			zap.String("actor", turn.Actor.Name),
		)
		p.fallback.TakeTurn(turn)
		return
	}

	skill, targets, ok := p.resolve(v, turn, d)
	if !ok {
		p.logger.Debug("decision hook returned an unusable choice",
			zap.String("hook", p.hook),
			zap.String("actor", turn.Actor.Name),
			zap.String("skill", d.Skill),
			zap.String("target", d.Target),
		)
		p.fallback.TakeTurn(turn)
		return
	}
	skill.Resolve(turn.Effect(targets))
}

func (p *ScriptedPolicy) resolve(v *view, turn combat.Turn, d Decision) (*combat.Skill, []*combat.Combatant, bool) {
	skill, ok := turn.Actor.Catalog.Lookup(d.Skill)
	if !ok {
		return nil, nil, false
	}
	switch skill.Range() {
	case combat.RangeSingle:
		t, ok := v.find(turn.Foes, d.Target)
		return skill, []*combat.Combatant{t}, ok
	case combat.RangeAll:
		foes := active(turn.Foes)
		return skill, foes, len(foes) > 0
	case combat.RangeSelf:
		return skill, []*combat.Combatant{turn.Actor}, true
	case combat.RangeAlly:
		t, ok := v.find(turn.Allies, d.Target)
		return skill, []*combat.Combatant{t}, ok
	case combat.RangeTeam:
		return skill, active(turn.Allies), true
	default:
		return nil, nil, false
	}
}

// decode reads a decision table returned by a hook.
func decode(ret lua.LValue) (Decision, bool) {
	tbl, ok := ret.(*lua.LTable)
	if !ok {
		return Decision{}, false
	}
	skill, ok := tbl.RawGetString("skill").(lua.LString)
	if !ok || skill == "" {
		return Decision{}, false
	}
	d := Decision{Skill: string(skill)}
	if target, ok := tbl.RawGetString("target").(lua.LString); ok {
		d.Target = string(target)
	}
	return d, true
}
