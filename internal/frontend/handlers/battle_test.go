package handlers_test

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/frontend/handlers"
	"github.com/cory-johannsen/skirmish/internal/frontend/telnet"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/session"
)

type transcript struct {
	client net.Conn
	output chan string
	result chan error
}

// serve runs h over an in-memory pipe and collects everything the client receives.
func serve(t *testing.T, ctx context.Context, h *handlers.BattleHandler) *transcript {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { client.Close() })

	tr := &transcript{client: client, output: make(chan string, 1), result: make(chan error, 1)}
	go func() {
		data, _ := io.ReadAll(client)
		tr.output <- telnet.StripANSI(string(data))
	}()
	go func() {
		tr.result <- h.HandleSession(ctx, telnet.NewConn(server, 0, 0))
		server.Close()
	}()
	return tr
}

func (tr *transcript) finish(t *testing.T) (string, error) {
	t.Helper()
	select {
	case err := <-tr.result:
		return <-tr.output, err
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return "", nil
	}
}

func newHandler(t *testing.T, mgr *session.Manager, idle handlers.IdleSettings) *handlers.BattleHandler {
	t.Helper()
	return handlers.NewBattleHandler(sessionFactory(t), mgr, command.DefaultRegistry(), idle, zaptest.NewLogger(t))
}

func TestBattleHandler_LobbyToBattleThenQuit(t *testing.T) {
	mgr := session.NewManager()
	tr := serve(t, context.Background(), newHandler(t, mgr, handlers.IdleSettings{}))

	_, err := tr.client.Write([]byte("add knight\r\nstart\r\nattack 1\r\nquit\r\n"))
	require.NoError(t, err)

	out, err := tr.finish(t)
	require.NoError(t, err)

	assert.Contains(t, out, "SKIRMISH")
	assert.Contains(t, out, "Welcome!\r\nPlease select a character")
	assert.Contains(t, out, "Adding Knight\r\n")
	assert.Contains(t, out, "Starting game...\r\n")
	assert.Contains(t, out, "1 - Goblin1\r\n")
	assert.Contains(t, out, "Knight1 attacks Goblin1\r\n")
	assert.Contains(t, out, "Goblin1 attacks Knight1\r\n")
	assert.Contains(t, out, "Goodbye!\r\n")
	assert.Zero(t, mgr.Count(), "session is unregistered on exit")
}

func TestBattleHandler_RegistersSessionWhileConnected(t *testing.T) {
	mgr := session.NewManager()
	tr := serve(t, context.Background(), newHandler(t, mgr, handlers.IdleSettings{}))

	require.Eventually(t, func() bool { return mgr.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	_, err := tr.client.Write([]byte("exit\n"))
	require.NoError(t, err)
	_, err = tr.finish(t)
	require.NoError(t, err)
	assert.Zero(t, mgr.Count())
}

func TestBattleHandler_ClientDisconnect(t *testing.T) {
	mgr := session.NewManager()
	tr := serve(t, context.Background(), newHandler(t, mgr, handlers.IdleSettings{}))

	require.Eventually(t, func() bool { return mgr.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	tr.client.Close()

	select {
	case <-tr.result:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not notice the disconnect")
	}
	assert.Zero(t, mgr.Count())
}

func TestBattleHandler_IdleDisconnect(t *testing.T) {
	idle := handlers.IdleSettings{Timeout: 100 * time.Millisecond, GracePeriod: 50 * time.Millisecond, TickInterval: 5 * time.Millisecond}
	tr := serve(t, context.Background(), newHandler(t, session.NewManager(), idle))

	out, err := tr.finish(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Are you still there?")
	assert.Contains(t, out, "Disconnected for inactivity.")
}

func TestBattleHandler_IdleDisconnectAtTimeout(t *testing.T) {
	idle := handlers.IdleSettings{Timeout: 300 * time.Millisecond, GracePeriod: 200 * time.Millisecond, TickInterval: 5 * time.Millisecond}
	began := time.Now()
	tr := serve(t, context.Background(), newHandler(t, session.NewManager(), idle))

	out, err := tr.finish(t)
	elapsed := time.Since(began)
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Are you still there?"), strings.Index(out, "Disconnected for inactivity."))
	assert.GreaterOrEqual(t, elapsed, 250*time.Millisecond)
	assert.Less(t, elapsed, 450*time.Millisecond, "the grace period counts down to the timeout, not past it")
}

func TestBattleHandler_GraceLongerThanTimeout(t *testing.T) {
	idle := handlers.IdleSettings{Timeout: 60 * time.Millisecond, GracePeriod: time.Minute, TickInterval: 5 * time.Millisecond}
	tr := serve(t, context.Background(), newHandler(t, session.NewManager(), idle))

	out, err := tr.finish(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Are you still there?")
	assert.Contains(t, out, "Disconnected for inactivity.")
}

func TestBattleHandler_ClosesSessionOnExit(t *testing.T) {
	var released atomic.Int64
	h := handlers.NewBattleHandler(releasingFactory(t, func() { released.Add(1) }), session.NewManager(),
		command.DefaultRegistry(), handlers.IdleSettings{}, zaptest.NewLogger(t))
	tr := serve(t, context.Background(), h)

	_, err := tr.client.Write([]byte("quit\n"))
	require.NoError(t, err)
	_, err = tr.finish(t)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released.Load())
}

func TestBattleHandler_SessionFactoryError(t *testing.T) {
	mgr := session.NewManager()
	failing := func() (*session.Session, error) { return nil, errors.New("scripts unavailable") }
	h := handlers.NewBattleHandler(failing, mgr, command.DefaultRegistry(), handlers.IdleSettings{}, zaptest.NewLogger(t))
	tr := serve(t, context.Background(), h)

	_, err := tr.finish(t)
	assert.ErrorContains(t, err, "creating session: scripts unavailable")
	assert.Zero(t, mgr.Count())
}

func TestBattleHandler_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tr := serve(t, ctx, newHandler(t, session.NewManager(), handlers.IdleSettings{}))

	cancel()
	// Unblocks a handler already waiting in ReadLine; fails harmlessly if it has returned.
	_, _ = tr.client.Write([]byte("add knight\n"))

	out, err := tr.finish(t)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, out, "Server shutting down.")
}
