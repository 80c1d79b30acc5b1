package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// CombatantInfo is a snapshot of a combatant's state passed to Lua callbacks.
type CombatantInfo struct {
	ID        string
	Name      string
	Team      string
	Position  int
	HP        int
	MaxHP     int
	Strength  int
	Defense   int
	Speed     int
	Agility   int
	Accuracy  int
	Defending bool
}

// Bindings connect the engine.battle.* module to one battle for the duration
// of a single Call. A nil func makes the matching Lua function a no-op that
// returns nil or false.
type Bindings struct {
	// Targets are the IDs the hook acts on.
	Targets []string
	Lookup  func(id string) (CombatantInfo, bool)
	Foes    func(id string) []string
	Allies  func(id string) []string
	// AdjustHP adds delta to the combatant's HP; false when id is unknown or downed.
	AdjustHP     func(id string, delta int) bool
	SetDefending func(id string) bool
	// Say writes one line to the player-facing battle log.
	Say    func(line string)
	Random func(min, max int) int
}

// Manager owns one sandboxed LState and exposes hook dispatch.
//
// Manager is safe for concurrent use. The LState is single-threaded, so every
// Call holds the lock for its whole duration; bindings are only visible to the
// Lua code running inside that Call.
type Manager struct {
	mu       sync.Mutex
	state    *lua.LState
	limit    int
	bindings *Bindings
	src      dice.Source
	logger   *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: src and logger must be non-nil; NewManager panics otherwise.
// Postcondition: Returns a non-nil Manager; Call is a logged no-op until Load succeeds.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
	if src == nil {
		panic("scripting: NewManager called with nil source")
	}
	if logger == nil {
		panic("scripting: NewManager called with nil logger")
	}
	return &Manager{src: src, logger: logger}
}

// Load creates a sandboxed VM, registers all engine.* modules, then executes
// every *.lua file in scriptDir in lexicographic order. A successful Load
// replaces any previously loaded VM.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: The VM is registered; returns error on read or Lua load failure.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L := NewSandboxedState(instLimit)
	m.registerModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.limit = instLimit
	m.mu.Unlock()

	m.logger.Info("scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// HasHook reports whether the loaded VM defines a global function named hook.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return false
	}
	_, ok := m.state.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// Call invokes the named Lua global function with b bound to engine.battle.*.
// Returns (LNil, nil) if the hook is not defined or no VM is loaded. Lua runtime
// errors, instruction-limit overruns included, are logged at Warn level and
// never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) Call(hook string, b *Bindings, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L := m.state
	if L == nil {
		m.logger.Info("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	m.bindings = b
	defer func() { m.bindings = nil }()
	release := armLimit(L, m.limit)
	defer release()

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
