package combat

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

var (
	// ErrNotInLobby is returned by Start outside PhaseLobby.
	ErrNotInLobby = errors.New("combat: battle can only start from the lobby")
	// ErrNotInBattle is returned by Submit outside PhaseBattle.
	ErrNotInBattle = errors.New("combat: no battle in progress")
	// ErrEmptyParty is returned by Start when no players were supplied.
	ErrEmptyParty = errors.New("combat: at least one player is required")
	// ErrNoEnemies is returned by Start when no enemies were supplied.
	ErrNoEnemies = errors.New("combat: at least one enemy is required")
)

// Command is one structured player submission: a skill name and a target token.
type Command struct {
	Action string
	// Target is a combatant name or 1-based position; ignored by ranges that need none.
	Target string
}

// Engine runs one encounter at a time for a single caller.
//
// Engine is not safe for concurrent use; each session owns its own Engine.
type Engine struct {
	log    *Log
	src    dice.Source
	rules  Rules
	logger *zap.Logger

	phase   Phase
	outcome Outcome
	players []*Combatant
	enemies []*Combatant
	order   *TurnOrder
	// turnsEnded counts end-of-turn passes in the current battle.
	turnsEnded int
}

// NewEngine creates an Engine in PhaseStartup with an empty log.
//
// Precondition: src and logger must be non-nil.
// Postcondition: Phase() == PhaseStartup.
func NewEngine(src dice.Source, rules Rules, logger *zap.Logger) *Engine {
	return &Engine{
		log:    &Log{},
		src:    src,
		rules:  rules,
		logger: logger,
		phase:  PhaseStartup,
	}
}

// Log returns the engine's output log. The caller clears it between input cycles.
func (e *Engine) Log() *Log { return e.log }

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// Outcome returns how the most recent battle ended, or OutcomeNone.
func (e *Engine) Outcome() Outcome { return e.outcome }

// TurnsEnded returns how many times end-of-turn processing ran in the current battle.
func (e *Engine) TurnsEnded() int { return e.turnsEnded }

// Players returns a copy of the live player roster.
func (e *Engine) Players() []*Combatant { return clone(e.players) }

// Enemies returns a copy of the live enemy roster.
func (e *Engine) Enemies() []*Combatant { return clone(e.enemies) }

// Order returns the battle's turn order, or nil before the first battle.
func (e *Engine) Order() *TurnOrder { return e.order }

// CurrentActor returns the combatant whose turn it is.
//
// Postcondition: Returns (actor, true) in PhaseBattle, or (nil, false).
func (e *Engine) CurrentActor() (*Combatant, bool) {
	if e.phase != PhaseBattle {
		return nil, false
	}
	return e.order.Current(), true
}

// OpenLobby discards any battle state and enters PhaseLobby. Callers use it both
// for the first STARTUP→LOBBY transition and to force a fresh lobby.
//
// Postcondition: Phase() == PhaseLobby; rosters are empty; Outcome() == OutcomeNone.
func (e *Engine) OpenLobby() {
	e.players = nil
	e.enemies = nil
	e.order = nil
	e.outcome = OutcomeNone
	e.turnsEnded = 0
	e.phase = PhaseLobby
}

// Start begins a battle between players and enemies. Names are suffixed with the
// 1-based roster position, the turn order is built, and turns run until the
// first player-controlled combatant is up or the battle ends.
//
// Precondition: Phase() == PhaseLobby; players and enemies are non-empty and freshly built.
// Postcondition: Returns nil and the battle is running or already over, or an error
// with no state changed.
func (e *Engine) Start(players, enemies []*Combatant) error {
	if e.phase != PhaseLobby {
		return ErrNotInLobby
	}
	if len(players) == 0 {
		return ErrEmptyParty
	}
	if len(enemies) == 0 {
		return ErrNoEnemies
	}

	e.players = enroll(players, TeamPlayer)
	e.enemies = enroll(enemies, TeamEnemy)
	e.order = NewTurnOrder(e.players, e.enemies)
	e.outcome = OutcomeNone
	e.turnsEnded = 0

	e.log.Write(e.rosterSummary())
	e.log.Write("Type 'help' for more commands")
	e.phase = PhaseBattle

	e.logger.Info("battle started",
		zap.Int("players", len(e.players)),
		zap.Int("enemies", len(e.enemies)),
		zap.String("first", e.order.Current().Name),
	)

	e.run()
	return nil
}

// Submit resolves cmd for the suspended player-controlled actor. An unknown skill
// or unmatched target is logged, followed by a reprompt, and leaves every piece
// of state unchanged.
//
// Precondition: Phase() == PhaseBattle.
// Postcondition: Returns ErrNotInBattle outside a battle; otherwise nil.
func (e *Engine) Submit(cmd Command) error {
	if e.phase != PhaseBattle {
		return ErrNotInBattle
	}
	actor := e.order.Current()

	skill, ok := actor.Catalog.Lookup(cmd.Action)
	if !ok {
		e.log.Write("Invalid action")
		e.Reprompt()
		return nil
	}
	targets, ok := e.resolveTargets(actor, skill, cmd.Target)
	if !ok {
		e.Reprompt()
		return nil
	}

	e.logger.Debug("skill submitted",
		zap.String("actor", actor.Name),
		zap.String("skill", skill.Name()),
		zap.Int("targets", len(targets)),
	)
	foes, allies := e.sides(actor)
	skill.Resolve(EffectContext{
		Actor:   actor,
		Targets: targets,
		Foes:    clone(foes),
		Allies:  clone(allies),
		Log:     e.log,
		Source:  e.src,
		Rules:   e.rules,
	})
	e.endTurn()
	e.run()
	return nil
}

// Reprompt repeats the suspended actor's turn header and action list. Callers
// use it after input that did not consume the turn.
//
// Postcondition: No-op outside PhaseBattle.
func (e *Engine) Reprompt() {
	actor, ok := e.CurrentActor()
	if !ok {
		return
	}
	e.log.Writef("%s's turn", actor.Name)
	e.ReportActions()
}

// run executes the turn cycle until a player-controlled actor is up or the battle ends.
func (e *Engine) run() {
	for e.phase == PhaseBattle {
		actor := e.order.Current()
		actor.Defending = false
		e.log.Writef("%s's turn", actor.Name)

		policy, ok := actor.Catalog.Policy()
		if !ok {
			e.ReportActions()
			return
		}

		foes, allies := e.sides(actor)
		e.logger.Debug("autonomous turn", zap.String("actor", actor.Name))
		policy.TakeTurn(Turn{
			Actor:  actor,
			Foes:   clone(foes),
			Allies: clone(allies),
			Log:    e.log,
			Source: e.src,
			Rules:  e.rules,
		})
		e.endTurn()
	}
}

// endTurn checks for defeat, then victory, then prunes downed combatants and
// advances. The win/loss check always precedes Advance.
func (e *Engine) endTurn() {
	e.turnsEnded++
	switch {
	case allDowned(e.players):
		e.finish(OutcomeDefeat, "You were defeated.")
	case allDowned(e.enemies):
		e.finish(OutcomeVictory, "You win!")
	default:
		e.players = pruneDowned(e.players)
		e.enemies = pruneDowned(e.enemies)
		e.order.Advance()
	}
}

func (e *Engine) finish(outcome Outcome, line string) {
	e.log.Write(line)
	e.log.Write("Type anything to start again.")
	e.outcome = outcome
	e.phase = PhaseStartup
	e.logger.Info("battle ended",
		zap.Stringer("outcome", outcome),
		zap.Int("turns", e.turnsEnded),
	)
}

// resolveTargets maps a skill's range and the target token to concrete targets.
// A miss writes the advisory lines and returns false.
func (e *Engine) resolveTargets(actor *Combatant, skill *Skill, token string) ([]*Combatant, bool) {
	foes, allies := e.sides(actor)
	switch skill.Range() {
	case RangeSingle:
		t, ok := FindTarget(foes, token)
		if !ok {
			e.log.Write("Invalid target.\n" + rosterListing("Current Enemies:", foes))
			return nil, false
		}
		return []*Combatant{t}, true
	case RangeAll:
		return clone(foes), true
	case RangeSelf:
		return []*Combatant{actor}, true
	case RangeAlly:
		t, ok := FindTarget(allies, token)
		if !ok {
			e.log.Write("Invalid target.\n" + rosterListing("Current Allies:", allies))
			return nil, false
		}
		return []*Combatant{t}, true
	case RangeTeam:
		return clone(allies), true
	default:
		e.log.Write("Unknown attack range")
		return nil, false
	}
}

// sides returns (foes, allies) from actor's point of view.
func (e *Engine) sides(actor *Combatant) ([]*Combatant, []*Combatant) {
	if actor.Team == TeamPlayer {
		return e.enemies, e.players
	}
	return e.players, e.enemies
}

// ReportActions lists the current actor's skills.
func (e *Engine) ReportActions() {
	actor, ok := e.CurrentActor()
	if !ok {
		return
	}
	var b strings.Builder
	b.WriteString("Actions available:\n")
	for _, s := range actor.Catalog.Skills() {
		b.WriteString(s.Name())
		b.WriteString("\n")
	}
	e.log.Write(b.String())
}

// ReportStats writes each living player's HP.
func (e *Engine) ReportStats() {
	for _, p := range e.players {
		e.log.Writef("%s\nHP: %d / %d", p.Name, p.CurrentHP, p.MaxHP)
	}
}

// ReportEnemies lists the living enemies.
func (e *Engine) ReportEnemies() {
	e.log.Write(rosterListing("Current Enemies:", e.enemies))
}

// ReportAllies lists the living players.
func (e *Engine) ReportAllies() {
	e.log.Write(rosterListing("Current Allies:", e.players))
}

func (e *Engine) rosterSummary() string {
	var b strings.Builder
	b.WriteString("A battle begins.\nPlayers:\n")
	for _, p := range e.players {
		fmt.Fprintf(&b, "%d - %s\n", p.Position, p.Name)
	}
	b.WriteString("\nEnemies:\n")
	for _, en := range e.enemies {
		fmt.Fprintf(&b, "%d - %s\n", en.Position, en.Name)
	}
	return b.String()
}

func rosterListing(header string, roster []*Combatant) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, c := range roster {
		b.WriteString(c.Name)
		b.WriteString("\n")
	}
	return b.String()
}

// enroll copies roster, stamping team, 1-based positions, and position-suffixed names.
func enroll(roster []*Combatant, team Team) []*Combatant {
	out := make([]*Combatant, len(roster))
	for i, c := range roster {
		c.Team = team
		c.Position = i + 1
		c.Name = fmt.Sprintf("%s%d", c.Name, i+1)
		out[i] = c
	}
	return out
}

func allDowned(roster []*Combatant) bool {
	for _, c := range roster {
		if !c.IsDowned() {
			return false
		}
	}
	return true
}

func pruneDowned(roster []*Combatant) []*Combatant {
	kept := roster[:0]
	for _, c := range roster {
		if !c.IsDowned() {
			kept = append(kept, c)
		}
	}
	return kept
}

func clone(roster []*Combatant) []*Combatant {
	if roster == nil {
		return nil
	}
	out := make([]*Combatant, len(roster))
	copy(out, roster)
	return out
}
