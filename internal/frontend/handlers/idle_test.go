package handlers_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/frontend/handlers"
)

type idleProbe struct {
	lastInput   atomic.Int64
	warnings    atomic.Int64
	disconnects atomic.Int64
}

func (p *idleProbe) touch()                  { p.lastInput.Store(time.Now().UnixNano()) }
func (p *idleProbe) idleFor(d time.Duration) { p.lastInput.Store(time.Now().Add(-d).UnixNano()) }

func (p *idleProbe) start(timeout, grace, tick time.Duration) func() {
	return handlers.StartIdleMonitor(handlers.IdleMonitorConfig{
		LastInput:    &p.lastInput,
		IdleTimeout:  timeout,
		GracePeriod:  grace,
		TickInterval: tick,
		OnWarning:    func() { p.warnings.Add(1) },
		OnDisconnect: func() { p.disconnects.Add(1) },
	})
}

func TestIdleMonitor_WarnsThenDisconnects(t *testing.T) {
	p := &idleProbe{}
	p.touch()
	stop := p.start(50*time.Millisecond, 30*time.Millisecond, 5*time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool { return p.warnings.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return p.disconnects.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestIdleMonitor_ActivityPreventsWarning(t *testing.T) {
	p := &idleProbe{}
	p.touch()
	stop := p.start(150*time.Millisecond, time.Second, 10*time.Millisecond)
	defer stop()

	for range 6 {
		time.Sleep(40 * time.Millisecond)
		p.touch()
	}
	assert.Zero(t, p.warnings.Load())
}

func TestIdleMonitor_InputAfterWarningRearms(t *testing.T) {
	p := &idleProbe{}
	p.idleFor(time.Minute)
	stop := p.start(40*time.Millisecond, 150*time.Millisecond, 5*time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool { return p.warnings.Load() == 1 }, time.Second, 5*time.Millisecond)
	p.touch()
	assert.Eventually(t, func() bool { return p.warnings.Load() == 2 }, time.Second, 5*time.Millisecond,
		"a fresh idle stretch warns again")
	assert.Zero(t, p.disconnects.Load())
}

func TestIdleMonitor_WarningOnlyOncePerStretch(t *testing.T) {
	p := &idleProbe{}
	p.idleFor(time.Minute)
	stop := p.start(10*time.Millisecond, 300*time.Millisecond, 5*time.Millisecond)
	defer stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), p.warnings.Load())
}

func TestIdleMonitor_StopPreventsCallbacks(t *testing.T) {
	p := &idleProbe{}
	p.touch()
	stop := p.start(10*time.Millisecond, 10*time.Millisecond, 5*time.Millisecond)
	stop()
	stop()

	p.idleFor(time.Minute)
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, p.warnings.Load())
	assert.Zero(t, p.disconnects.Load())
}

func TestProperty_IdleMonitor_ActiveClientNeverDisconnected(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		p := &idleProbe{}
		p.touch()
		stop := p.start(200*time.Millisecond, 50*time.Millisecond, 20*time.Millisecond)
		defer stop()

		inputs := rapid.IntRange(1, 3).Draw(rt, "inputs")
		for range inputs {
			time.Sleep(60 * time.Millisecond)
			p.touch()
		}
		assert.Zero(rt, p.disconnects.Load())
	})
}
