// Package coordinator serializes ad display requests against the single
// active plugin. At most one ad is in flight at a time, no display hook runs
// before the plugin has initialized, and plugin failures are turned into
// ad.Result values instead of reaching the caller.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/adlad/internal/ad"
	"github.com/soyeahso/adlad/internal/gate"
	"github.com/soyeahso/adlad/internal/hooks"
	"github.com/soyeahso/adlad/internal/logging"
	"github.com/soyeahso/adlad/internal/plugin"
	"github.com/soyeahso/adlad/internal/store"
)

const (
	hookShowFullScreen = "showFullScreenAd"
	hookShowRewarded   = "showRewardedAd"
	hookGameplayStart  = "gameplayStart"
	hookGameplayStop   = "gameplayStop"
	hookLoadStart      = "loadStart"
	hookLoadStop       = "loadStop"
)

// Recorder receives one record per ad request. store.History implementations
// satisfy it.
type Recorder interface {
	RecordAd(ctx context.Context, rec store.AdRecord) error
}

// Coordinator owns the playing flag and the readiness gate of one active
// plugin. Independent coordinators share no state.
type Coordinator struct {
	plugin   plugin.Plugin
	caps     plugin.Capabilities
	gate     *gate.Gate
	log      *logging.Logger
	reporter Reporter
	hooks    *hooks.Manager
	recorder Recorder
	now      func() time.Time
	initCtx  context.Context

	// eventMu pairs each change of the playing flag with its
	// EventAdPlayingChanged emission, so subscribers see true and false
	// strictly alternate.
	eventMu sync.Mutex

	mu          sync.Mutex
	playing     bool
	playingKind ad.Kind
	inGameplay  bool
	loading     bool
	queue       []lifecycleCall
	closed      bool

	wake chan struct{}
	stop chan struct{}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. A nil logger is silent.
func WithLogger(log *logging.Logger) Option {
	return func(c *Coordinator) {
		c.log = log
	}
}

// WithReporter sets the diagnostic sink. Defaults to a LogReporter.
func WithReporter(r Reporter) Option {
	return func(c *Coordinator) {
		c.reporter = r
	}
}

// WithHooks sets the hook manager that receives ad lifecycle events.
// EventAdPlayingChanged handlers run while the flag change is held, so they
// must not request ads themselves.
func WithHooks(hm *hooks.Manager) Option {
	return func(c *Coordinator) {
		c.hooks = hm
	}
}

// WithRecorder sets where finished requests are recorded.
func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) {
		c.recorder = r
	}
}

// WithInitContext sets the context passed to the plugin's Initialize hook.
func WithInitContext(ctx context.Context) Option {
	return func(c *Coordinator) {
		c.initCtx = ctx
	}
}

// WithClock overrides time.Now for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// New creates a coordinator for the active plugin p and starts its
// initialization. A nil p means no plugin is active.
func New(p plugin.Plugin, opts ...Option) *Coordinator {
	c := &Coordinator{
		plugin:  p,
		log:     logging.Nop(),
		now:     time.Now,
		initCtx: context.Background(),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logging.Nop()
	}
	c.log = c.log.Sub("coordinator")
	if c.reporter == nil {
		c.reporter = NewLogReporter(c.log)
	}

	switch {
	case p == nil:
		c.gate = gate.Settled()
		c.log.Info().Msg("no active plugin")
	default:
		c.caps = plugin.Resolve(p)
		if c.caps.Initialize != nil {
			c.gate = gate.Start(c.initCtx, c.caps.Initialize)
		} else {
			c.gate = gate.Settled()
		}
		c.log.Info().
			Str("plugin", c.caps.Name).
			Strs("capabilities", c.caps.List()).
			Msg("plugin activated")
		go c.watchInit()
	}

	go c.lifecycleLoop()
	return c
}

// watchInit logs the initialization outcome once the gate settles.
func (c *Coordinator) watchInit() {
	<-c.gate.Done()
	err := c.gate.Err()
	if err != nil {
		c.log.Warn().Err(err).Str("plugin", c.caps.Name).Msg("plugin initialization failed, ads will still be attempted")
	} else {
		c.log.Info().Str("plugin", c.caps.Name).Msg("plugin ready")
	}
	c.emit(c.initCtx, hooks.EventPluginReady, map[string]any{
		"plugin": c.caps.Name,
		"ok":     err == nil,
	})
}

// ActivePlugin returns the active plugin's name, or "" when there is none.
func (c *Coordinator) ActivePlugin() string {
	return c.caps.Name
}

// Ready blocks until the active plugin's initialization has settled.
func (c *Coordinator) Ready() {
	c.gate.Ready()
}

// Playing reports whether an ad request currently holds the playing flag.
func (c *Coordinator) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// ShowFullScreenAd shows a full-screen ad and blocks until it has finished.
func (c *Coordinator) ShowFullScreenAd(ctx context.Context) ad.Result {
	return c.ShowAd(ctx, ad.KindFullScreen)
}

// ShowRewardedAd shows a rewarded ad and blocks until it has finished.
func (c *Coordinator) ShowRewardedAd(ctx context.Context) ad.Result {
	return c.ShowAd(ctx, ad.KindRewarded)
}

// ShowAd shows an ad of the given kind and blocks until it has finished.
func (c *Coordinator) ShowAd(ctx context.Context, kind ad.Kind) ad.Result {
	return <-c.ShowAdAsync(ctx, kind)
}

// ShowAdAsync requests an ad and returns a channel that receives exactly one
// result. The playing flag is checked and claimed before ShowAdAsync returns,
// so of two calls made one after the other the second always sees the first
// one's claim. Requests rejected up front have their result ready immediately.
//
// A claimed request always runs to completion: ctx is handed to the plugin
// hook but the coordinator never abandons a request because of it.
func (c *Coordinator) ShowAdAsync(ctx context.Context, kind ad.Kind) <-chan ad.Result {
	out := make(chan ad.Result, 1)
	req := request{
		id:      uuid.New().String(),
		kind:    kind,
		started: c.now(),
	}

	reject := func(reason ad.ErrorReason) <-chan ad.Result {
		res := ad.Failed(reason)
		c.finish(ctx, req, res)
		out <- res
		return out
	}

	if c.plugin == nil {
		return reject(ad.ReasonNoActivePlugin)
	}
	if !kind.Valid() {
		return reject(ad.ReasonNotSupported)
	}
	if !c.claim(ctx, kind) {
		return reject(ad.ReasonAlreadyPlaying)
	}

	c.log.Debug().Str("request", req.id).Str("kind", kind.String()).Msg("ad request accepted")
	c.emit(ctx, hooks.EventAdRequested, map[string]any{
		"request": req.id,
		"kind":    kind.String(),
		"plugin":  c.caps.Name,
	})

	go func() {
		res := c.display(ctx, kind)
		c.release(ctx, kind)
		c.finish(ctx, req, res)
		out <- res
	}()
	return out
}

type request struct {
	id      string
	kind    ad.Kind
	started time.Time
}

// claim sets the playing flag if it is free and announces the change.
func (c *Coordinator) claim(ctx context.Context, kind ad.Kind) bool {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()

	c.mu.Lock()
	if c.playing {
		c.mu.Unlock()
		return false
	}
	c.playing = true
	c.playingKind = kind
	c.mu.Unlock()

	c.emit(ctx, hooks.EventAdPlayingChanged, map[string]any{
		"playing": true,
		"kind":    kind.String(),
	})
	return true
}

// release clears the playing flag and announces the change.
func (c *Coordinator) release(ctx context.Context, kind ad.Kind) {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()

	c.mu.Lock()
	c.playing = false
	c.playingKind = ""
	c.mu.Unlock()

	c.emit(ctx, hooks.EventAdPlayingChanged, map[string]any{
		"playing": false,
		"kind":    kind.String(),
	})
}

// display waits for the plugin to be ready and runs the display hook for kind.
func (c *Coordinator) display(ctx context.Context, kind ad.Kind) ad.Result {
	c.gate.Ready()

	show := c.caps.ShowHook(kind)
	if show == nil {
		return ad.Failed(ad.ReasonNotSupported)
	}

	hook := hookShowFullScreen
	if kind == ad.KindRewarded {
		hook = hookShowRewarded
	}

	res, err := callShow(ctx, show)
	if err == nil {
		err = res.Validate()
	}
	if err != nil {
		c.reporter.Report(c.caps.Name, hook, err)
		return ad.Failed(ad.ReasonUnknown)
	}
	return res
}

func callShow(ctx context.Context, show plugin.ShowFunc) (res ad.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicErr(r)
		}
	}()
	return show(ctx)
}

func callHook(ctx context.Context, hook plugin.HookFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicErr(r)
		}
	}()
	return hook(ctx)
}

func panicErr(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &PanicError{Value: r}
}

// finish records the request and emits EventAdFinished without waiting for
// its handlers.
func (c *Coordinator) finish(ctx context.Context, req request, res ad.Result) {
	rec := store.AdRecord{
		ID:         req.id,
		Plugin:     c.caps.Name,
		Kind:       req.kind,
		ClientID:   ClientID(ctx),
		Shown:      res.Shown,
		Reason:     res.Reason,
		StartedAt:  req.started,
		FinishedAt: c.now(),
	}

	c.log.Debug().
		Str("request", req.id).
		Str("kind", req.kind.String()).
		Bool("shown", res.Shown).
		Str("reason", string(res.Reason)).
		Dur("duration", rec.Duration()).
		Msg("ad request finished")

	if c.recorder != nil {
		if err := c.recorder.RecordAd(context.WithoutCancel(ctx), rec); err != nil {
			c.log.Warn().Err(err).Str("request", req.id).Msg("failed to record ad request")
		}
	}

	// slow observers must not hold up the result
	c.emitAsync(ctx, hooks.EventAdFinished, map[string]any{
		"request": req.id,
		"kind":    req.kind.String(),
		"plugin":  c.caps.Name,
		"result":  res,
	})
}

func (c *Coordinator) emit(ctx context.Context, event string, data map[string]any) {
	if c.hooks == nil {
		return
	}
	c.hooks.Emit(context.WithoutCancel(ctx), event, data)
}

func (c *Coordinator) emitAsync(ctx context.Context, event string, data map[string]any) {
	if c.hooks == nil {
		return
	}
	c.hooks.EmitAsync(context.WithoutCancel(ctx), event, data)
}

// Status is a point-in-time view of the coordinator.
type Status struct {
	ActivePlugin string  `json:"activePlugin"`
	Ready        bool    `json:"ready"`
	InitError    string  `json:"initError,omitempty"`
	Playing      bool    `json:"playing"`
	PlayingKind  ad.Kind `json:"playingKind,omitempty"`
	InGameplay   bool    `json:"inGameplay"`
	Loading      bool    `json:"loading"`
}

// Status returns the current state.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		ActivePlugin: c.caps.Name,
		Ready:        c.gate.IsSettled(),
		Playing:      c.playing,
		PlayingKind:  c.playingKind,
		InGameplay:   c.inGameplay,
		Loading:      c.loading,
	}
	if err := c.gate.Err(); err != nil {
		s.InitError = err.Error()
	}
	return s
}

// Close stops lifecycle notifications and closes the active plugin.
// In-flight ad requests are not interrupted.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.queue = nil
	c.mu.Unlock()
	close(c.stop)

	if c.caps.Close == nil {
		return nil
	}
	if err := c.caps.Close(); err != nil {
		return fmt.Errorf("closing plugin %s: %w", c.caps.Name, err)
	}
	return nil
}

type clientIDKey struct{}

// WithClientID tags ctx with the id of the client issuing ad requests.
func WithClientID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, id)
}

// ClientID returns the client id stored by WithClientID, or "".
func ClientID(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
