package combat

import "sort"

// TurnOrder is the speed-ordered cycle over every combatant in a battle.
// Its composition is fixed; downed combatants are skipped, not removed.
type TurnOrder struct {
	seq    []*Combatant
	cursor int
}

// NewTurnOrder concatenates players then enemies and sorts by Speed descending.
// Ties keep concatenation order.
//
// Precondition: len(players)+len(enemies) >= 1.
// Postcondition: Current() is the fastest combatant; cursor is 0.
func NewTurnOrder(players, enemies []*Combatant) *TurnOrder {
	seq := make([]*Combatant, 0, len(players)+len(enemies))
	seq = append(seq, players...)
	seq = append(seq, enemies...)
	sort.SliceStable(seq, func(i, j int) bool {
		return seq[i].Speed > seq[j].Speed
	})
	return &TurnOrder{seq: seq}
}

// Current returns the combatant at the cursor.
func (t *TurnOrder) Current() *Combatant { return t.seq[t.cursor] }

// Cursor returns the index of the current combatant in Sequence().
func (t *TurnOrder) Cursor() int { return t.cursor }

// Len returns the number of combatants in the cycle, downed included.
func (t *TurnOrder) Len() int { return len(t.seq) }

// Sequence returns a copy of the ordered cycle.
func (t *TurnOrder) Sequence() []*Combatant {
	out := make([]*Combatant, len(t.seq))
	copy(out, t.seq)
	return out
}

// Advance moves the cursor to the next active combatant, wrapping around.
//
// Precondition: at least one combatant is active. The engine guarantees this by
// running the win/loss check before every advance; a violation panics instead
// of spinning forever.
// Postcondition: Returns the new current combatant, which is active.
func (t *TurnOrder) Advance() *Combatant {
	for range t.seq {
		t.cursor = (t.cursor + 1) % len(t.seq)
		if !t.seq[t.cursor].IsDowned() {
			return t.seq[t.cursor]
		}
	}
	panic("combat: TurnOrder.Advance precondition violated: no active combatant")
}
