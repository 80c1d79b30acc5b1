// Package handlers connects transports to battle sessions: the Telnet session
// handler, the console loop, idle monitoring, and output styling.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

const banner = "\r\n" + telnet.Bold + telnet.BrightYellow + "  SKIRMISH" + telnet.Reset + "\r\n" +
	telnet.Dim + "  A turn-based party battle." + telnet.Reset + "\r\n\r\n" +
	"  Type " + telnet.Green + "quit" + telnet.Reset + " at any time to disconnect.\r\n\r\n"

// SessionFactory builds a fresh session for a new client.
type SessionFactory func() (*session.Session, error)

// IdleSettings controls idle disconnects. A zero Timeout disables them.
// Clients are warned GracePeriod before Timeout and disconnected at Timeout.
type IdleSettings struct {
	Timeout      time.Duration
	GracePeriod  time.Duration
	TickInterval time.Duration
}

// BattleHandler implements telnet.SessionHandler. Every connection owns an
// independent Session registered with the shared Manager for its lifetime.
type BattleHandler struct {
	newSession SessionFactory
	sessions   *session.Manager
	registry   *command.Registry
	idle       IdleSettings
	logger     *zap.Logger
}

// NewBattleHandler creates a BattleHandler.
//
// Precondition: newSession, sessions, registry and logger must be non-nil.
// Postcondition: Returns a handler ready to serve connections.
func NewBattleHandler(newSession SessionFactory, sessions *session.Manager, registry *command.Registry, idle IdleSettings, logger *zap.Logger) *BattleHandler {
	if idle.TickInterval <= 0 {
		idle.TickInterval = time.Second
	}
	return &BattleHandler{
		newSession: newSession,
		sessions:   sessions,
		registry:   registry,
		idle:       idle,
		logger:     logger,
	}
}

// HandleSession shows the banner, opens the lobby, and feeds each input line to
// the connection's session until the client quits, disconnects, idles out, or ctx
// is cancelled.
//
// Postcondition: Returns nil on quit, ctx.Err() on cancellation, or a wrapped I/O error.
// The session is removed from the Manager on return.
func (h *BattleHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	s, err := h.newSession()
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer s.Close()
	if err := h.sessions.Add(s); err != nil {
		return fmt.Errorf("registering session: %w", err)
	}
	defer func() {
		if err := h.sessions.Remove(s.ID); err != nil {
			h.logger.Warn("removing session", zap.String("session", s.ID), zap.Error(err))
		}
	}()

	logger := h.logger.With(
		zap.String("session", s.ID),
		zap.String("remote_addr", conn.RemoteAddr().String()),
	)
	logger.Info("session opened", zap.Int("live_sessions", h.sessions.Count()))

	var idledOut atomic.Bool
	var lastInput atomic.Int64
	lastInput.Store(time.Now().UnixNano())
	if h.idle.Timeout > 0 {
		grace := min(h.idle.GracePeriod, h.idle.Timeout)
		stop := StartIdleMonitor(IdleMonitorConfig{
			LastInput:    &lastInput,
			IdleTimeout:  h.idle.Timeout - grace,
			GracePeriod:  grace,
			TickInterval: h.idle.TickInterval,
			OnWarning: func() {
				_ = conn.WriteLines(telnet.Colorize(telnet.Yellow, "Are you still there? You will be disconnected soon."))
			},
			OnDisconnect: func() {
				idledOut.Store(true)
				_ = conn.WriteLines(telnet.Colorize(telnet.Yellow, "Disconnected for inactivity."))
				_ = conn.Close()
			},
		})
		defer stop()
	}

	if err := conn.Write([]byte(banner)); err != nil {
		return fmt.Errorf("sending banner: %w", err)
	}
	if err := h.respond(conn, s.HandleInput("")); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLines(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return ctx.Err()
		default:
		}

		line, err := conn.ReadLine()
		if err != nil {
			if idledOut.Load() {
				logger.Info("session idled out")
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				logger.Info("client disconnected")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
		lastInput.Store(time.Now().UnixNano())

		if isQuit(h.registry, line) {
			_ = conn.WriteLines(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			logger.Info("client quit", zap.Stringer("phase", s.Phase()))
			return nil
		}

		if err := h.respond(conn, s.HandleInput(line)); err != nil {
			return err
		}
	}
}

// isQuit reports whether line invokes the quit command.
func isQuit(registry *command.Registry, line string) bool {
	cmd, ok := registry.Resolve(command.Parse(line).Command)
	return ok && cmd.Handler == command.HandlerQuit
}

func (h *BattleHandler) respond(conn *telnet.Conn, out []string) error {
	if err := conn.WriteLines(RenderOutput(out, true)...); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
		return fmt.Errorf("writing prompt: %w", err)
	}
	return nil
}
