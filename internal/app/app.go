// Package app wires configuration into the shared battle runtime used by both
// binaries: content, scripting, and the per-client session factory.
package app

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/session"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// Runtime holds everything sessions share.
type Runtime struct {
	// Library is the content library built at startup. Sessions share it when
	// scripting is off; with scripting on each session builds its own.
	Library  *content.Library
	Registry *command.Registry
	Sessions *session.Manager
	files    []*content.File
	scripts  *scripting.Manager
	content  config.ContentConfig
	cfg      config.BattleConfig
	logger   *zap.Logger
	// created counts sessions so seeded runs give each one its own stream.
	created atomic.Int64
}

// Build loads content and scripts as configured.
//
// Precondition: cfg must be valid; logger must be non-nil.
// Postcondition: Returns a Runtime whose enemy template exists, or a non-nil error.
func Build(cfg config.Config, logger *zap.Logger) (*Runtime, error) {
	files, err := content.Load(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	r := &Runtime{
		Registry: command.DefaultRegistry(),
		Sessions: session.NewManager(),
		files:    files,
		content:  cfg.Content,
		cfg:      cfg.Battle,
		logger:   logger,
	}
	lib, scripts, err := r.library(dice.NewSource(cfg.Battle.Seed))
	if err != nil {
		return nil, err
	}
	if !lib.HasEnemy(cfg.Battle.EnemyTemplate) {
		if scripts != nil {
			scripts.Close()
		}
		return nil, fmt.Errorf("battle.enemy_template %q is not a known enemy (have %v)", cfg.Battle.EnemyTemplate, lib.EnemyIDs())
	}
	r.Library, r.scripts = lib, scripts

	logger.Info("content loaded",
		zap.Strings("players", lib.PlayerIDs()),
		zap.Strings("enemies", lib.EnemyIDs()),
		zap.Bool("scripting", scripts != nil),
	)
	return r, nil
}

// library builds a content library from the loaded files. With scripting on,
// it also loads a fresh Lua VM that only the returned library calls into.
//
// Postcondition: scripts is nil when scripting is off; otherwise the caller owns it.
func (r *Runtime) library(src dice.Source) (lib *content.Library, scripts *scripting.Manager, err error) {
	if r.content.ScriptDir == "" {
		lib, err = content.NewLibrary(r.files, nil, r.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("building content library: %w", err)
		}
		return lib, nil, nil
	}

	scripts = scripting.NewManager(src, r.logger.Named("lua"))
	if err := scripts.Load(r.content.ScriptDir, r.content.InstructionLimit); err != nil {
		scripts.Close()
		return nil, nil, fmt.Errorf("loading scripts: %w", err)
	}
	lib, err = content.NewLibrary(r.files, scripts, r.logger)
	if err != nil {
		scripts.Close()
		return nil, nil, fmt.Errorf("building content library: %w", err)
	}
	return lib, scripts, nil
}

// NewSession builds a fresh session with its own dice source. With scripting
// on, the session also gets its own Lua VM, so script globals never leak
// between sessions. Session.Close releases it.
//
// Postcondition: Returns a session in the startup phase, or a non-nil error when
// the scripts can no longer be loaded. It is not registered with Sessions.
func (r *Runtime) NewSession() (*session.Session, error) {
	n := r.created.Add(1)
	seed := r.cfg.Seed
	if seed != 0 {
		seed += n - 1
	}
	src := dice.NewLoggedSource(dice.NewSource(seed), r.logger.Named("dice"))
	opts := session.Options{
		MaxPartySize:     r.cfg.MaxPartySize,
		EnemyTemplate:    r.cfg.EnemyTemplate,
		EnemiesPerPlayer: r.cfg.EnemiesPerPlayer,
		Rules:            combat.Rules{ClampHeals: r.cfg.ClampHeals},
	}

	lib := r.Library
	if r.content.ScriptDir != "" {
		own, scripts, err := r.library(src)
		if err != nil {
			return nil, fmt.Errorf("preparing session scripts: %w", err)
		}
		lib, opts.Release = own, scripts.Close
	}
	return session.New(lib, r.Registry, src, opts, r.logger), nil
}

// Close releases the startup Lua VM, if any. Session VMs are released by Session.Close.
func (r *Runtime) Close() {
	if r.scripts != nil {
		r.scripts.Close()
	}
}
