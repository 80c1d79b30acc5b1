// Package ai connects Lua decision and effect hooks to the combat engine.
package ai

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// ScriptCaller is the interface required to run Lua hooks against a battle.
type ScriptCaller interface {
	// Call invokes a named Lua function with b bound to engine.battle.*.
	// Returns (LNil, nil) if the function is not defined.
	Call(hook string, b *scripting.Bindings, args ...lua.LValue) (lua.LValue, error)
}

// Info snapshots c for Lua.
func Info(c *combat.Combatant) scripting.CombatantInfo {
	return scripting.CombatantInfo{
		ID:        c.ID,
		Name:      c.Name,
		Team:      c.Team.String(),
		Position:  c.Position,
		HP:        c.CurrentHP,
		MaxHP:     c.MaxHP,
		Strength:  c.Strength,
		Defense:   c.Defense,
		Speed:     c.Speed,
		Agility:   c.Agility,
		Accuracy:  c.Accuracy,
		Defending: c.Defending,
	}
}

// view is the slice of a battle visible to one hook call.
type view struct {
	actor   *combat.Combatant
	targets []*combat.Combatant
	foes    []*combat.Combatant
	allies  []*combat.Combatant
	log     *combat.Log
	src     dice.Source
	byID    map[string]*combat.Combatant
}

func newView(actor *combat.Combatant, targets, foes, allies []*combat.Combatant, log *combat.Log, src dice.Source) *view {
	v := &view{
		actor:   actor,
		targets: targets,
		foes:    foes,
		allies:  allies,
		log:     log,
		src:     src,
		byID:    make(map[string]*combat.Combatant, len(foes)+len(allies)+1),
	}
	for _, group := range [][]*combat.Combatant{{actor}, targets, foes, allies} {
		for _, c := range group {
			v.byID[c.ID] = c
		}
	}
	return v
}

// foesOf returns the foes of id: the view's foes for the actor's team, its allies otherwise.
func (v *view) foesOf(id string) []*combat.Combatant {
	c, ok := v.byID[id]
	if !ok {
		return nil
	}
	if c.Team == v.actor.Team {
		return v.foes
	}
	return v.allies
}

func (v *view) alliesOf(id string) []*combat.Combatant {
	c, ok := v.byID[id]
	if !ok {
		return nil
	}
	if c.Team == v.actor.Team {
		return v.allies
	}
	return v.foes
}

// bindings exposes the view to engine.battle.*. Every mutation goes through
// Combatant.ApplyHPDelta so the downed invariant holds for scripted effects.
func (v *view) bindings() *scripting.Bindings {
	return &scripting.Bindings{
		Targets: ids(v.targets),
		Lookup: func(id string) (scripting.CombatantInfo, bool) {
			c, ok := v.byID[id]
			if !ok {
				return scripting.CombatantInfo{}, false
			}
			return Info(c), true
		},
		Foes:   func(id string) []string { return ids(active(v.foesOf(id))) },
		Allies: func(id string) []string { return ids(active(v.alliesOf(id))) },
		AdjustHP: func(id string, delta int) bool {
			c, ok := v.byID[id]
			if !ok || c.IsDowned() {
				return false
			}
			c.ApplyHPDelta(delta)
			return true
		},
		SetDefending: func(id string) bool {
			c, ok := v.byID[id]
			if !ok || c.IsDowned() {
				return false
			}
			c.Defending = true
			return true
		},
		Say: func(line string) { v.log.Write(line) },
		Random: func(min, max int) int {
			return dice.RandomRange(v.src, min, max)
		},
	}
}

func (v *view) find(roster []*combat.Combatant, id string) (*combat.Combatant, bool) {
	for _, c := range roster {
		if c.ID == id && !c.IsDowned() {
			return c, true
		}
	}
	return nil, false
}

func ids(roster []*combat.Combatant) []string {
	out := make([]string, 0, len(roster))
	for _, c := range roster {
		out = append(out, c.ID)
	}
	return out
}

func active(roster []*combat.Combatant) []*combat.Combatant {
	out := make([]*combat.Combatant, 0, len(roster))
	for _, c := range roster {
		if !c.IsDowned() {
			out = append(out, c)
		}
	}
	return out
}
