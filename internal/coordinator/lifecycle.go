package coordinator

import (
	"context"

	"github.com/soyeahso/adlad/internal/hooks"
	"github.com/soyeahso/adlad/internal/plugin"
)

// lifecycleCall is a queued gameplay or loading notification.
type lifecycleCall struct {
	ctx   context.Context
	hook  string
	event string
	fn    plugin.HookFunc
}

// GameplayStart tells the plugin that gameplay has started.
func (c *Coordinator) GameplayStart(ctx context.Context) {
	c.setState(ctx, &c.inGameplay, true, hookGameplayStart, hooks.EventGameplayStart, c.caps.GameplayStart)
}

// GameplayStop tells the plugin that gameplay has stopped.
func (c *Coordinator) GameplayStop(ctx context.Context) {
	c.setState(ctx, &c.inGameplay, false, hookGameplayStop, hooks.EventGameplayStop, c.caps.GameplayStop)
}

// LoadStart tells the plugin that the game started loading.
func (c *Coordinator) LoadStart(ctx context.Context) {
	c.setState(ctx, &c.loading, true, hookLoadStart, hooks.EventLoadStart, c.caps.LoadStart)
}

// LoadStop tells the plugin that the game finished loading.
func (c *Coordinator) LoadStop(ctx context.Context) {
	c.setState(ctx, &c.loading, false, hookLoadStop, hooks.EventLoadStop, c.caps.LoadStop)
}

// InGameplay reports the last gameplay state set by the caller.
func (c *Coordinator) InGameplay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inGameplay
}

// Loading reports the last loading state set by the caller.
func (c *Coordinator) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// setState records a lifecycle transition and queues the plugin notification.
// Repeated transitions to the current state are ignored. Notifications never
// touch the playing flag.
func (c *Coordinator) setState(ctx context.Context, state *bool, want bool, hook, event string, fn plugin.HookFunc) {
	c.mu.Lock()
	if c.closed || *state == want {
		c.mu.Unlock()
		return
	}
	*state = want
	c.queue = append(c.queue, lifecycleCall{
		ctx:   context.WithoutCancel(ctx),
		hook:  hook,
		event: event,
		fn:    fn,
	})
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Coordinator) dequeue() (lifecycleCall, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return lifecycleCall{}, false
	}
	call := c.queue[0]
	c.queue = c.queue[1:]
	return call, true
}

// lifecycleLoop delivers queued notifications in order, one at a time, once
// the plugin is ready.
func (c *Coordinator) lifecycleLoop() {
	for {
		select {
		case <-c.stop:
			return
		case <-c.wake:
		}

		for {
			call, ok := c.dequeue()
			if !ok {
				break
			}
			if !c.notify(call) {
				return
			}
		}
	}
}

// notify waits for the plugin to be ready and delivers call. It returns
// false when the coordinator was closed first.
func (c *Coordinator) notify(call lifecycleCall) bool {
	select {
	case <-c.gate.Done():
	case <-c.stop:
		return false
	}
	c.emit(call.ctx, call.event, map[string]any{"plugin": c.caps.Name})
	if call.fn != nil {
		if err := callHook(call.ctx, call.fn); err != nil {
			c.reporter.Report(c.caps.Name, call.hook, err)
		}
	}
	return true
}
