package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// registerModules registers the engine.log, engine.dice and engine.battle
// tables into L. engine.battle functions read the bindings of the Call in
// progress.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) registerModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.newLogModule(L))
	L.SetField(engine, "dice", m.newDiceModule(L))
	L.SetField(engine, "battle", m.newBattleModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) newLogModule(L *lua.LState) *lua.LTable {
	level := func(log func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			log(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}
	}
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"debug": level(m.logger.Debug),
		"info":  level(m.logger.Info),
		"warn":  level(m.logger.Warn),
		"error": level(m.logger.Error),
	})
}

func (m *Manager) newDiceModule(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		// random(min, max) returns an int in [min, max), or min when max <= min.
		"random": func(L *lua.LState) int {
			lo, hi := L.CheckInt(1), L.CheckInt(2)
			var v int
			if b := m.bindings; b != nil && b.Random != nil {
				v = b.Random(lo, hi)
			} else {
				v = dice.RandomRange(m.src, lo, hi)
			}
			L.Push(lua.LNumber(v))
			return 1
		},
	})
}

func (m *Manager) newBattleModule(L *lua.LState) *lua.LTable {
	return L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"targets": func(L *lua.LState) int {
			var ids []string
			if b := m.bindings; b != nil {
				ids = b.Targets
			}
			L.Push(stringList(L, ids))
			return 1
		},
		"combatant": func(L *lua.LState) int {
			id := L.CheckString(1)
			b := m.bindings
			if b == nil || b.Lookup == nil {
				L.Push(lua.LNil)
				return 1
			}
			info, ok := b.Lookup(id)
			if !ok {
				L.Push(lua.LNil)
				return 1
			}
			L.Push(combatantTable(L, info))
			return 1
		},
		"foes": func(L *lua.LState) int {
			id := L.CheckString(1)
			var ids []string
			if b := m.bindings; b != nil && b.Foes != nil {
				ids = b.Foes(id)
			}
			L.Push(stringList(L, ids))
			return 1
		},
		"allies": func(L *lua.LState) int {
			id := L.CheckString(1)
			var ids []string
			if b := m.bindings; b != nil && b.Allies != nil {
				ids = b.Allies(id)
			}
			L.Push(stringList(L, ids))
			return 1
		},
		"damage": func(L *lua.LState) int {
			id, amount := L.CheckString(1), L.CheckInt(2)
			L.Push(lua.LBool(m.adjust(id, -amount)))
			return 1
		},
		"heal": func(L *lua.LState) int {
			id, amount := L.CheckString(1), L.CheckInt(2)
			L.Push(lua.LBool(m.adjust(id, amount)))
			return 1
		},
		"defend": func(L *lua.LState) int {
			id := L.CheckString(1)
			ok := false
			if b := m.bindings; b != nil && b.SetDefending != nil {
				ok = b.SetDefending(id)
			}
			L.Push(lua.LBool(ok))
			return 1
		},
		"say": func(L *lua.LState) int {
			line := L.CheckString(1)
			if b := m.bindings; b != nil && b.Say != nil {
				b.Say(line)
			}
			return 0
		},
	})
}

func (m *Manager) adjust(id string, delta int) bool {
	b := m.bindings
	if b == nil || b.AdjustHP == nil {
		return false
	}
	return b.AdjustHP(id, delta)
}

func stringList(L *lua.LState, items []string) *lua.LTable {
	t := L.CreateTable(len(items), 0)
	for _, s := range items {
		t.Append(lua.LString(s))
	}
	return t
}

func combatantTable(L *lua.LState, info CombatantInfo) *lua.LTable {
	t := L.CreateTable(0, 12)
	L.SetField(t, "id", lua.LString(info.ID))
	L.SetField(t, "name", lua.LString(info.Name))
	L.SetField(t, "team", lua.LString(info.Team))
	L.SetField(t, "position", lua.LNumber(info.Position))
	L.SetField(t, "hp", lua.LNumber(info.HP))
	L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
	L.SetField(t, "strength", lua.LNumber(info.Strength))
	L.SetField(t, "defense", lua.LNumber(info.Defense))
	L.SetField(t, "speed", lua.LNumber(info.Speed))
	L.SetField(t, "agility", lua.LNumber(info.Agility))
	L.SetField(t, "accuracy", lua.LNumber(info.Accuracy))
	L.SetField(t, "defending", lua.LBool(info.Defending))
	return t
}
