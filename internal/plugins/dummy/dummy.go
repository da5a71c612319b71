// Package dummy is a simulated ad network. It implements every plugin hook
// and is configurable enough to exercise the coordinator's failure paths
// without a real ad SDK.
package dummy

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/soyeahso/adlad/internal/ad"
	"github.com/soyeahso/adlad/internal/logging"
	"github.com/soyeahso/adlad/internal/plugin"
)

// Name is the registry name of the dummy plugin.
const Name = "dummy"

var (
	ErrInitFailed = errors.New("dummy: initialization failed")
	ErrAdFailed   = errors.New("dummy: ad failed to display")
	ErrClosed     = errors.New("dummy: plugin closed")
)

// Config controls the simulated behavior.
type Config struct {
	InitDelay   time.Duration
	AdDuration  time.Duration
	FailInit    bool
	FailKinds   []ad.Kind
	Unsupported []ad.Kind
}

// Stats counts what the plugin has done so far.
type Stats struct {
	Shown    int64 `json:"shown"`
	Failed   int64 `json:"failed"`
	Gameplay bool  `json:"gameplay"`
	Loading  bool  `json:"loading"`
}

// core carries the state and the hooks shared by every variant. The display
// hooks are only exposed by the wrapper types below, so which of them a value
// implements decides what the coordinator sees as supported.
type core struct {
	cfg    Config
	log    *logging.Logger
	closed atomic.Bool

	shown  atomic.Int64
	failed atomic.Int64

	mu       sync.Mutex
	gameplay bool
	loading  bool
}

type fullScreenOnly struct{ *core }
type rewardedOnly struct{ *core }
type both struct{ *core }

func (p fullScreenOnly) ShowFullScreenAd(ctx context.Context) (ad.Result, error) {
	return p.show(ctx, ad.KindFullScreen)
}

func (p rewardedOnly) ShowRewardedAd(ctx context.Context) (ad.Result, error) {
	return p.show(ctx, ad.KindRewarded)
}

func (p both) ShowFullScreenAd(ctx context.Context) (ad.Result, error) {
	return p.show(ctx, ad.KindFullScreen)
}

func (p both) ShowRewardedAd(ctx context.Context) (ad.Result, error) {
	return p.show(ctx, ad.KindRewarded)
}

// Plugin is the value returned by New. Stats is available on every variant.
type Plugin interface {
	plugin.Plugin
	plugin.Initializer
	plugin.GameplayNotifier
	plugin.LoadingNotifier
	plugin.Closer
	Stats() Stats
}

// New creates a dummy plugin. Kinds listed in cfg.Unsupported are left out of
// the returned value's method set.
func New(cfg Config, log *logging.Logger) Plugin {
	if log == nil {
		log = logging.Nop()
	}
	c := &core{cfg: cfg, log: log.Plugin(Name)}

	full := !slices.Contains(cfg.Unsupported, ad.KindFullScreen)
	rewarded := !slices.Contains(cfg.Unsupported, ad.KindRewarded)
	switch {
	case full && rewarded:
		return both{c}
	case full:
		return fullScreenOnly{c}
	case rewarded:
		return rewardedOnly{c}
	default:
		return c
	}
}

func (c *core) Name() string { return Name }

// Initialize simulates loading an ad SDK.
func (c *core) Initialize(ctx context.Context) error {
	c.log.Debug().Dur("delay", c.cfg.InitDelay).Msg("initializing")
	if err := c.wait(ctx, c.cfg.InitDelay); err != nil {
		return fmt.Errorf("dummy: initialization interrupted: %w", err)
	}
	if c.cfg.FailInit {
		return ErrInitFailed
	}
	c.log.Info().Msg("initialized")
	return nil
}

func (c *core) show(ctx context.Context, kind ad.Kind) (ad.Result, error) {
	if c.closed.Load() {
		return ad.Result{}, ErrClosed
	}
	c.log.Info().Str("kind", kind.String()).Dur("duration", c.cfg.AdDuration).Msg("showing ad")

	if err := c.wait(ctx, c.cfg.AdDuration); err != nil {
		c.failed.Add(1)
		return ad.Result{}, fmt.Errorf("dummy: %s ad interrupted: %w", kind, err)
	}
	if slices.Contains(c.cfg.FailKinds, kind) {
		c.failed.Add(1)
		return ad.Result{}, fmt.Errorf("%w: %s", ErrAdFailed, kind)
	}

	c.shown.Add(1)
	c.log.Info().Str("kind", kind.String()).Msg("ad finished")
	return ad.Shown(), nil
}

func (c *core) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *core) GameplayStart(context.Context) error { return c.set(&c.gameplay, true, "gameplay started") }
func (c *core) GameplayStop(context.Context) error  { return c.set(&c.gameplay, false, "gameplay stopped") }
func (c *core) LoadStart(context.Context) error     { return c.set(&c.loading, true, "loading started") }
func (c *core) LoadStop(context.Context) error      { return c.set(&c.loading, false, "loading stopped") }

func (c *core) set(field *bool, v bool, msg string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.mu.Lock()
	*field = v
	c.mu.Unlock()
	c.log.Debug().Msg(msg)
	return nil
}

// Close makes every later hook call fail with ErrClosed.
func (c *core) Close() error {
	c.closed.Store(true)
	return nil
}

// Stats returns a snapshot of the plugin's counters.
func (c *core) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Shown:    c.shown.Load(),
		Failed:   c.failed.Load(),
		Gameplay: c.gameplay,
		Loading:  c.loading,
	}
}
