package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// ScriptedEffect returns a unique-skill effect that runs the Lua function hook.
// The hook receives the actor's ID; engine.battle.targets() lists the skill's
// targets. The hook's return value is ignored. A missing hook or a Lua error
// leaves the battle unchanged apart from whatever the script did before failing;
// caller errors are logged at Warn.
//
// Precondition: caller and logger must not be nil.
func ScriptedEffect(caller ScriptCaller, hook string, logger *zap.Logger) combat.EffectFunc {
	if caller == nil {
		panic("ai.ScriptedEffect: caller must not be nil")
	}
	if logger == nil {
		panic("ai.ScriptedEffect: logger must not be nil")
	}
	return func(ctx combat.EffectContext) {
		v := newView(ctx.Actor, ctx.Targets, ctx.Foes, ctx.Allies, ctx.Log, ctx.Source)
		if _, err := caller.Call(hook, v.bindings(), lua.LString(ctx.Actor.ID)); err != nil {
			logger.Warn("unique skill hook failed",
				zap.String("hook", hook),
				zap.String("actor", ctx.Actor.Name),
				zap.Error(err),
			)
		}
	}
}
