package handlers

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

// Console runs a single session over a plain reader/writer pair, such as a
// terminal's stdin and stdout.
type Console struct {
	in       io.Reader
	out      io.Writer
	session  *session.Session
	registry *command.Registry
	color    bool
	logger   *zap.Logger
}

// NewConsole creates a Console. When color is true output is styled with ANSI codes.
//
// Precondition: in, out, s, registry and logger must be non-nil.
func NewConsole(in io.Reader, out io.Writer, s *session.Session, registry *command.Registry, color bool, logger *zap.Logger) *Console {
	return &Console{in: in, out: out, session: s, registry: registry, color: color, logger: logger}
}

// Run opens the lobby and processes input lines until quit, end of input, or ctx
// cancellation. ctx is checked between lines only.
//
// Postcondition: Returns nil on quit or end of input, ctx.Err() on cancellation,
// or a wrapped I/O error.
func (c *Console) Run(ctx context.Context) error {
	if err := c.write(c.session.HandleInput("")); err != nil {
		return err
	}

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Text()
		if isQuit(c.registry, line) {
			c.logger.Info("console quit", zap.String("session", c.session.ID))
			_, err := fmt.Fprintln(c.out, "Goodbye!")
			return err
		}
		if err := c.write(c.session.HandleInput(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}

func (c *Console) write(lines []string) error {
	for _, l := range RenderOutput(lines, c.color) {
		if _, err := fmt.Fprintln(c.out, l); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	if _, err := fmt.Fprint(c.out, "> "); err != nil {
		return fmt.Errorf("writing prompt: %w", err)
	}
	return nil
}
