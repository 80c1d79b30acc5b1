package handlers

import (
	"sync"
	"sync/atomic"
	"time"
)

// IdleMonitorConfig configures StartIdleMonitor.
type IdleMonitorConfig struct {
	// LastInput holds the UnixNano time of the client's most recent input.
	LastInput *atomic.Int64
	// IdleTimeout is how long the client may be silent before OnWarning fires.
	IdleTimeout time.Duration
	// GracePeriod is how long after the warning the client has to respond
	// before OnDisconnect fires.
	GracePeriod time.Duration
	// TickInterval is how often LastInput is sampled.
	TickInterval time.Duration
	OnWarning    func()
	OnDisconnect func()
}

// StartIdleMonitor watches cfg.LastInput on its own goroutine. OnWarning fires
// once per idle stretch; input after the warning re-arms it. OnDisconnect fires
// at most once, after which the monitor exits.
//
// Precondition: LastInput, OnWarning and OnDisconnect must be non-nil; IdleTimeout
// must be >= 0 and TickInterval must be > 0.
// Postcondition: Returns a stop function. After it returns, no callback fires.
// Calling it more than once is safe.
func StartIdleMonitor(cfg IdleMonitorConfig) (stop func()) {
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()

		var warnedAt time.Time
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				last := time.Unix(0, cfg.LastInput.Load())
				if warnedAt.IsZero() {
					if now.Sub(last) >= cfg.IdleTimeout {
						warnedAt = now
						cfg.OnWarning()
					}
					continue
				}
				if last.After(warnedAt) {
					warnedAt = time.Time{}
					continue
				}
				if now.Sub(warnedAt) >= cfg.GracePeriod {
					cfg.OnDisconnect()
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
		<-exited
	}
}
