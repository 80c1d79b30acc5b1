package combat_test

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// fixedSource always returns val, clamped into [0, n).
type fixedSource struct{ val int }

func (f fixedSource) Intn(n int) int {
	if f.val >= n {
		return n - 1
	}
	return f.val
}

// seqSource replays vals in order, cycling; each value is clamped into [0, n).
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	if v >= n {
		return n - 1
	}
	return v
}

var (
	attackSkill = combat.NewSkill("Attack", 1.0, 100, combat.RangeSingle, combat.EffectAttack)
	sweepSkill  = combat.NewSkill("Sweep", 0.5, 80, combat.RangeAll, combat.EffectAttack,
		combat.WithAnnounce(func(ctx combat.EffectContext) {
			ctx.Log.Writef("%s slashes at all foes!", ctx.Actor.Name)
		}))
	defendSkill = combat.NewSkill("Defend", 0, 0, combat.RangeSelf, combat.EffectUnique,
		combat.WithUnique(combat.Defend))
	mendSkill   = combat.NewSkill("Mend", 1.0, 100, combat.RangeAlly, combat.EffectHeal)
	prayerSkill = combat.NewSkill("Prayer", 0.5, 100, combat.RangeTeam, combat.EffectHeal)

	knightStats = combat.Stats{MaxHP: 100, Strength: 20, Defense: 20, Speed: 10, Agility: 10, Accuracy: 80}
	rogueStats  = combat.Stats{MaxHP: 80, Strength: 15, Defense: 10, Speed: 20, Agility: 20, Accuracy: 90}
	goblinStats = combat.Stats{MaxHP: 60, Strength: 10, Defense: 5, Speed: 10, Agility: 20, Accuracy: 80}
)

func newKnight() *combat.Combatant {
	cat := combat.NewCatalog(attackSkill, sweepSkill, defendSkill)
	return combat.NewCombatant("Knight", combat.TeamPlayer, knightStats, cat)
}

func newRogue() *combat.Combatant {
	cat := combat.NewCatalog(attackSkill, defendSkill)
	return combat.NewCombatant("Rogue", combat.TeamPlayer, rogueStats, cat)
}

func newCleric() *combat.Combatant {
	cat := combat.NewCatalog(attackSkill, mendSkill, prayerSkill, defendSkill)
	stats := combat.Stats{MaxHP: 70, Strength: 10, Defense: 10, Speed: 5, Agility: 10, Accuracy: 80}
	return combat.NewCombatant("Cleric", combat.TeamPlayer, stats, cat)
}

func newGoblin(stats combat.Stats) *combat.Combatant {
	cat := combat.NewAutonomousCatalog(combat.RandomAttacker{Skill: attackSkill}, attackSkill)
	return combat.NewCombatant("Goblin", combat.TeamEnemy, stats, cat)
}
