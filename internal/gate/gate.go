// Package gate implements the one-shot readiness signal that holds ad
// requests back until the active plugin has finished initializing.
package gate

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Gate settles exactly once. Waiters are released when it settles, whether
// initialization succeeded or failed.
type Gate struct {
	once    sync.Once
	settled atomic.Bool
	done    chan struct{}
	err     error
}

// New returns a pending gate.
func New() *Gate {
	return &Gate{done: make(chan struct{})}
}

// Settled returns a gate that is already settled successfully.
func Settled() *Gate {
	g := New()
	g.Settle(nil)
	return g
}

// Start runs init on its own goroutine and settles the returned gate when it
// returns. A panic inside init settles the gate with an error.
func Start(ctx context.Context, init func(context.Context) error) *Gate {
	g := New()
	go func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("initialize panicked: %v", r)
			}
			g.Settle(err)
		}()
		err = init(ctx)
	}()
	return g
}

// Settle records the initialization outcome and releases all waiters.
// It returns false if the gate had already settled.
func (g *Gate) Settle(err error) bool {
	settled := false
	g.once.Do(func() {
		g.err = err
		g.settled.Store(true)
		close(g.done)
		settled = true
	})
	return settled
}

// Ready blocks until the gate has settled. It returns immediately once settled.
func (g *Gate) Ready() {
	if g.settled.Load() {
		return
	}
	<-g.done
}

// Done returns a channel that is closed when the gate settles.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// IsSettled reports whether the gate has settled.
func (g *Gate) IsSettled() bool {
	return g.settled.Load()
}

// Err returns the initialization error, or nil while pending or on success.
func (g *Gate) Err() error {
	if !g.settled.Load() {
		return nil
	}
	return g.err
}
