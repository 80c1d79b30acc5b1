package combat_test

import (
	"testing"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNewCombatant_StartsActiveAtFullHealth(t *testing.T) {
	k := newKnight()
	assert.Equal(t, 100, k.CurrentHP)
	assert.Equal(t, combat.StateActive, k.State)
	assert.False(t, k.Defending)
	assert.NotEmpty(t, k.ID)
	assert.NotEqual(t, k.ID, newKnight().ID)
}

func TestCombatant_ApplyHPDelta(t *testing.T) {
	g := newGoblin(goblinStats)
	g.ApplyHPDelta(-20)
	assert.Equal(t, 40, g.CurrentHP)
	assert.False(t, g.IsDowned())

	g.ApplyHPDelta(-500)
	assert.Equal(t, 0, g.CurrentHP) // floors at 0
	assert.True(t, g.IsDowned())

	g.ApplyHPDelta(30)
	assert.Equal(t, 0, g.CurrentHP, "downed combatants stay down")
}

func TestCombatant_ApplyHPDelta_ExactlyZeroDowns(t *testing.T) {
	g := newGoblin(goblinStats)
	g.ApplyHPDelta(-60)
	assert.Equal(t, 0, g.CurrentHP)
	assert.Equal(t, combat.StateDowned, g.State)
}

func TestCombatant_ApplyHPDelta_NoCeiling(t *testing.T) {
	k := newKnight()
	k.ApplyHPDelta(25)
	assert.Equal(t, 125, k.CurrentHP)
}

func TestCombatant_Property_HPNeverNegativeAndDownedIffZero(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 300).Draw(rt, "max_hp")
		deltas := rapid.SliceOf(rapid.IntRange(-400, 400)).Draw(rt, "deltas")
		c := combat.NewCombatant("X", combat.TeamEnemy, combat.Stats{MaxHP: maxHP}, nil)
		for _, d := range deltas {
			c.ApplyHPDelta(d)
			assert.GreaterOrEqual(rt, c.CurrentHP, 0)
			assert.Equal(rt, c.CurrentHP == 0, c.IsDowned())
		}
	})
}

func TestCombatant_PlayerControlled(t *testing.T) {
	assert.True(t, newKnight().PlayerControlled())
	assert.False(t, newGoblin(goblinStats).PlayerControlled())
}

func TestCombatant_Matches(t *testing.T) {
	g := newGoblin(goblinStats)
	g.Name = "Goblin2"
	g.Position = 2

	assert.True(t, g.Matches("goblin2"))
	assert.True(t, g.Matches("GOBLIN2"))
	assert.True(t, g.Matches("2"))
	assert.True(t, g.Matches(" 2 "))
	assert.False(t, g.Matches("1"))
	assert.False(t, g.Matches("goblin"))
	assert.False(t, g.Matches("-"))
}

func TestFindTarget(t *testing.T) {
	a := newGoblin(goblinStats)
	a.Name, a.Position = "Goblin1", 1
	b := newGoblin(goblinStats)
	b.Name, b.Position = "Goblin2", 2
	roster := []*combat.Combatant{a, b}

	got, ok := combat.FindTarget(roster, "2")
	require.True(t, ok)
	assert.Same(t, b, got)

	got, ok = combat.FindTarget(roster, "goblin1")
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = combat.FindTarget(roster, "orc")
	assert.False(t, ok)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "Player", combat.TeamPlayer.String())
	assert.Equal(t, "Enemy", combat.TeamEnemy.String())
	assert.Equal(t, "downed", combat.StateDowned.String())
	assert.Equal(t, "battle", combat.PhaseBattle.String())
	assert.Equal(t, "ally", combat.RangeAlly.String())
	assert.Equal(t, "heal", combat.EffectHeal.String())
}
