package combat

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Stats are the fixed attributes of a combatant for one encounter.
type Stats struct {
	MaxHP    int
	Strength int
	Defense  int
	// Speed orders turns, highest first.
	Speed int
	// Agility scales the dodge roll.
	Agility int
	// Accuracy scales the hit roll together with the skill's own accuracy.
	Accuracy int
}

// Combatant is one participant in a battle, player or enemy.
type Combatant struct {
	ID   string
	Name string
	Team Team
	// Position is the 1-based slot in the owning roster, assigned at battle start.
	Position int
	Stats
	CurrentHP int
	State     State
	// Defending halves incoming attack damage until the combatant's next turn starts.
	Defending bool
	// Catalog lists the skills this combatant knows. Shared between combatants of one class.
	Catalog *Catalog
}

// NewCombatant creates an active combatant at full health.
//
// Precondition: stats.MaxHP >= 1.
// Postcondition: CurrentHP == stats.MaxHP; State == StateActive; ID is a fresh UUID.
func NewCombatant(name string, team Team, stats Stats, catalog *Catalog) *Combatant {
	return &Combatant{
		ID:        uuid.New().String(),
		Name:      name,
		Team:      team,
		Stats:     stats,
		CurrentHP: stats.MaxHP,
		State:     StateActive,
		Catalog:   catalog,
	}
}

// IsPlayer reports whether this combatant fights on the player team.
func (c *Combatant) IsPlayer() bool { return c.Team == TeamPlayer }

// IsDowned reports whether this combatant has been incapacitated.
func (c *Combatant) IsDowned() bool { return c.State == StateDowned }

// PlayerControlled reports whether this combatant waits for external input on its turn.
//
// Postcondition: Returns true iff the catalog carries no autonomous policy.
func (c *Combatant) PlayerControlled() bool {
	_, ok := c.Catalog.Policy()
	return !ok
}

// ApplyHPDelta adds amount (negative for damage) to CurrentHP, flooring at zero.
// There is no ceiling at MaxHP. A downed combatant stays down for the rest of the
// battle, so the call is a no-op once State is StateDowned.
//
// Postcondition: CurrentHP >= 0; State == StateDowned iff CurrentHP == 0.
func (c *Combatant) ApplyHPDelta(amount int) {
	if c.State == StateDowned {
		return
	}
	c.CurrentHP += amount
	if c.CurrentHP <= 0 {
		c.CurrentHP = 0
		c.State = StateDowned
	}
}

// Matches reports whether token names this combatant, either by case-insensitive
// name or by its 1-based position.
func (c *Combatant) Matches(token string) bool {
	if foldName(token) == foldName(c.Name) {
		return true
	}
	pos, err := strconv.Atoi(strings.TrimSpace(token))
	return err == nil && pos == c.Position
}

// FindTarget returns the first combatant in roster matched by token.
//
// Postcondition: Returns (combatant, true) on a match, or (nil, false).
func FindTarget(roster []*Combatant, token string) (*Combatant, bool) {
	for _, c := range roster {
		if c.Matches(token) {
			return c, true
		}
	}
	return nil, false
}

// foldName normalizes a name for case-insensitive comparison.
func foldName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
