// Package combat implements the turn-based party battle engine.
package combat

// Team identifies which roster a combatant belongs to.
type Team int

const (
	TeamPlayer Team = iota
	TeamEnemy
)

// String returns a human-readable team label.
func (t Team) String() string {
	switch t {
	case TeamPlayer:
		return "Player"
	case TeamEnemy:
		return "Enemy"
	default:
		return "unknown"
	}
}

// State is the lifecycle state of a combatant within one battle.
type State int

const (
	StateActive State = iota
	StateDowned
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateDowned:
		return "downed"
	default:
		return "unknown"
	}
}

// Phase is the coarse state of a game. The engine owns LOBBY→BATTLE→STARTUP;
// STARTUP→LOBBY belongs to the caller.
type Phase int

const (
	PhaseStartup Phase = iota
	PhaseLobby
	PhaseBattle
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	switch p {
	case PhaseStartup:
		return "startup"
	case PhaseLobby:
		return "lobby"
	case PhaseBattle:
		return "battle"
	default:
		return "unknown"
	}
}

// Outcome is the result of the most recent battle.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
)

// String returns a human-readable outcome label.
func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Rules holds the battle options that change resolution math.
type Rules struct {
	// ClampHeals caps healing at MaxHP. Off by default: heals may overheal.
	ClampHeals bool
}
