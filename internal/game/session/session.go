// Package session drives one player's game: the lobby, battles, and the
// informational queries around them.
package session

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// Options are the per-session battle settings.
type Options struct {
	// MaxPartySize caps the lobby party.
	MaxPartySize int
	// EnemyTemplate is the content ID every generated enemy is built from.
	EnemyTemplate string
	// EnemiesPerPlayer multiplies the party size into the enemy count.
	EnemiesPerPlayer int
	Rules            combat.Rules
	// Release frees resources owned by this session alone, such as its Lua VM.
	// It runs once, on the first Close. May be nil.
	Release func()
}

// Session owns one Engine and the lobby party feeding it.
//
// Session is not safe for concurrent use; each connection owns its own.
type Session struct {
	ID       string
	engine   *combat.Engine
	lib      *content.Library
	registry *command.Registry
	opts     Options
	logger   *zap.Logger
	// party holds the class IDs chosen in the lobby. Combatants are built fresh at every start.
	party     []string
	closeOnce sync.Once
}

// New creates a Session in the startup phase.
//
// Precondition: lib, registry, src and logger must be non-nil; opts.MaxPartySize >= 1;
// opts.EnemyTemplate names an enemy in lib.
// Postcondition: Phase() == combat.PhaseStartup; ID is a fresh UUID.
func New(lib *content.Library, registry *command.Registry, src dice.Source, opts Options, logger *zap.Logger) *Session {
	id := uuid.New().String()
	logger = logger.With(zap.String("session", id))
	return &Session{
		ID:       id,
		engine:   combat.NewEngine(src, opts.Rules, logger),
		lib:      lib,
		registry: registry,
		opts:     opts,
		logger:   logger,
	}
}

// Phase returns the session's current phase.
func (s *Session) Phase() combat.Phase { return s.engine.Phase() }

// Engine exposes the battle engine for inspection.
func (s *Session) Engine() *combat.Engine { return s.engine }

// Close runs Options.Release. Calling it more than once is safe.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.opts.Release != nil {
			s.opts.Release()
		}
	})
}

// Party returns the class IDs selected in the lobby.
func (s *Session) Party() []string {
	out := make([]string, len(s.party))
	copy(out, s.party)
	return out
}

// HandleInput processes one line of player input and returns the output lines
// produced by it.
//
// Postcondition: Never panics on any input; the returned slice is owned by the caller.
func (s *Session) HandleInput(line string) []string {
	log := s.engine.Log()
	log.Clear()

	parsed := command.Parse(line)
	switch s.engine.Phase() {
	case combat.PhaseStartup:
		log.Write(command.WelcomeText)
		s.party = nil
		s.engine.OpenLobby()
	case combat.PhaseLobby:
		s.handleLobby(parsed)
	case combat.PhaseBattle:
		s.handleBattle(parsed)
	}
	return log.Lines()
}

func (s *Session) handleLobby(p command.ParseResult) {
	log := s.engine.Log()
	cmd, ok := s.registry.Resolve(p.Command)
	if !ok || cmd.Category != command.CategoryLobby {
		log.Write(command.LobbyHelpText)
		return
	}

	switch cmd.Handler {
	case command.HandlerAdd:
		if len(s.party) >= s.opts.MaxPartySize {
			log.Write("Can't add any more players.")
			return
		}
		player, ok := s.lib.NewPlayer(p.Arg)
		if !ok {
			var b strings.Builder
			b.WriteString("Invalid character\nValid characters are:\n")
			for _, id := range s.lib.PlayerIDs() {
				b.WriteString(id)
				b.WriteString("\n")
			}
			log.Write(b.String())
			return
		}
		s.party = append(s.party, p.Arg)
		log.Writef("Adding %s", player.Name)
	case command.HandlerStart:
		if len(s.party) == 0 {
			log.Write("Please select a character first.")
			return
		}
		log.Write("Starting game...")
		s.start()
	case command.HandlerClear:
		s.party = nil
		log.Write("Cleared player list.")
		log.Write("Please select a character.")
	}
}

// start builds fresh combatants for the party and the generated enemies.
func (s *Session) start() {
	players := make([]*combat.Combatant, 0, len(s.party))
	for _, id := range s.party {
		p, _ := s.lib.NewPlayer(id)
		players = append(players, p)
	}

	count := len(players) * max(s.opts.EnemiesPerPlayer, 1)
	enemies := make([]*combat.Combatant, 0, count)
	for range count {
		en, ok := s.lib.NewEnemy(s.opts.EnemyTemplate)
		if !ok {
			s.logger.Error("enemy template missing", zap.String("template", s.opts.EnemyTemplate))
			s.engine.Log().Write("No enemies are available.")
			return
		}
		enemies = append(enemies, en)
	}

	if err := s.engine.Start(players, enemies); err != nil {
		s.logger.Error("starting battle", zap.Error(err))
	}
}

// handleBattle routes input to the current actor's skills first, then to the
// informational queries, and lets the engine report anything else as invalid.
func (s *Session) handleBattle(p command.ParseResult) {
	actor, _ := s.engine.CurrentActor()
	if _, ok := actor.Catalog.Lookup(p.Command); ok {
		s.submit(p)
		return
	}

	cmd, ok := s.registry.Resolve(p.Command)
	if !ok || cmd.Category != command.CategoryBattle {
		s.submit(p)
		return
	}

	switch cmd.Handler {
	case command.HandlerHelp:
		s.engine.Log().Write(command.BattleHelp(s.registry))
	case command.HandlerStats:
		s.engine.ReportStats()
	case command.HandlerEnemies:
		s.engine.ReportEnemies()
	case command.HandlerAllies:
		s.engine.ReportAllies()
	}
	s.engine.Reprompt()
}

func (s *Session) submit(p command.ParseResult) {
	if err := s.engine.Submit(p.Submission()); err != nil {
		s.logger.Error("submitting command", zap.Error(err))
	}
}
