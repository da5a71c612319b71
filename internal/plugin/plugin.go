// Package plugin defines the boundary between the ad coordinator and ad
// network adapters. A plugin only has to report its name; every other hook is
// an optional capability detected by type assertion.
package plugin

import (
	"context"

	"github.com/soyeahso/adlad/internal/ad"
)

// Plugin is the interface that all ad plugins must implement.
type Plugin interface {
	// Name identifies the plugin in logs and diagnostic reports.
	Name() string
}

// Initializer is implemented by plugins that need an asynchronous setup step
// before ads can be displayed.
type Initializer interface {
	Initialize(ctx context.Context) error
}

// FullScreenAdShower is implemented by plugins that can show full-screen ads.
type FullScreenAdShower interface {
	ShowFullScreenAd(ctx context.Context) (ad.Result, error)
}

// RewardedAdShower is implemented by plugins that can show rewarded ads.
type RewardedAdShower interface {
	ShowRewardedAd(ctx context.Context) (ad.Result, error)
}

// GameplayNotifier is implemented by plugins that want to know when the game
// is in active gameplay.
type GameplayNotifier interface {
	GameplayStart(ctx context.Context) error
	GameplayStop(ctx context.Context) error
}

// LoadingNotifier is implemented by plugins that want to know when the game
// is loading.
type LoadingNotifier interface {
	LoadStart(ctx context.Context) error
	LoadStop(ctx context.Context) error
}

// Closer is implemented by plugins holding resources.
type Closer interface {
	Close() error
}

// ShowFunc displays one ad.
type ShowFunc func(ctx context.Context) (ad.Result, error)

// HookFunc is a lifecycle notification.
type HookFunc func(ctx context.Context) error

// Capabilities holds the resolved hooks of one plugin. A nil field means the
// plugin does not implement that hook.
type Capabilities struct {
	Name           string
	Initialize     HookFunc
	ShowFullScreen ShowFunc
	ShowRewarded   ShowFunc
	GameplayStart  HookFunc
	GameplayStop   HookFunc
	LoadStart      HookFunc
	LoadStop       HookFunc
	Close          func() error
}

// Resolve inspects p once and records which optional hooks it implements.
func Resolve(p Plugin) Capabilities {
	c := Capabilities{Name: p.Name()}
	if v, ok := p.(Initializer); ok {
		c.Initialize = v.Initialize
	}
	if v, ok := p.(FullScreenAdShower); ok {
		c.ShowFullScreen = v.ShowFullScreenAd
	}
	if v, ok := p.(RewardedAdShower); ok {
		c.ShowRewarded = v.ShowRewardedAd
	}
	if v, ok := p.(GameplayNotifier); ok {
		c.GameplayStart = v.GameplayStart
		c.GameplayStop = v.GameplayStop
	}
	if v, ok := p.(LoadingNotifier); ok {
		c.LoadStart = v.LoadStart
		c.LoadStop = v.LoadStop
	}
	if v, ok := p.(Closer); ok {
		c.Close = v.Close
	}
	return c
}

// ShowHook returns the display hook for kind, or nil when unsupported.
func (c Capabilities) ShowHook(kind ad.Kind) ShowFunc {
	switch kind {
	case ad.KindFullScreen:
		return c.ShowFullScreen
	case ad.KindRewarded:
		return c.ShowRewarded
	default:
		return nil
	}
}

// List returns the names of the implemented hooks.
func (c Capabilities) List() []string {
	var out []string
	if c.Initialize != nil {
		out = append(out, "initialize")
	}
	if c.ShowFullScreen != nil {
		out = append(out, "showFullScreenAd")
	}
	if c.ShowRewarded != nil {
		out = append(out, "showRewardedAd")
	}
	if c.GameplayStart != nil {
		out = append(out, "gameplay")
	}
	if c.LoadStart != nil {
		out = append(out, "loading")
	}
	if c.Close != nil {
		out = append(out, "close")
	}
	return out
}
