package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/frontend/handlers"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

// hitSource makes every roll land.
type hitSource struct{}

func (hitSource) Intn(int) int { return 0 }

func sessionFactory(t *testing.T) handlers.SessionFactory {
	t.Helper()
	return releasingFactory(t, nil)
}

// releasingFactory builds sessions whose Close calls release.
func releasingFactory(t *testing.T, release func()) handlers.SessionFactory {
	t.Helper()
	files, err := content.Load("")
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	lib, err := content.NewLibrary(files, nil, logger)
	require.NoError(t, err)
	opts := session.Options{MaxPartySize: 4, EnemyTemplate: "goblin", EnemiesPerPlayer: 1, Release: release}
	return func() (*session.Session, error) {
		return session.New(lib, command.DefaultRegistry(), hitSource{}, opts, logger), nil
	}
}
