package plugin

import (
	"context"
	"errors"
	"testing"

	"github.com/soyeahso/adlad/internal/ad"
	"github.com/soyeahso/adlad/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedPlugin struct {
	name string
}

func (p *namedPlugin) Name() string { return p.name }

type fullPlugin struct {
	namedPlugin
	closeErr   error
	closeCalls int
}

func (p *fullPlugin) Initialize(context.Context) error { return nil }
func (p *fullPlugin) ShowFullScreenAd(context.Context) (ad.Result, error) {
	return ad.Shown(), nil
}
func (p *fullPlugin) ShowRewardedAd(context.Context) (ad.Result, error) {
	return ad.Failed(ad.ReasonTime), nil
}
func (p *fullPlugin) GameplayStart(context.Context) error { return nil }
func (p *fullPlugin) GameplayStop(context.Context) error  { return nil }
func (p *fullPlugin) LoadStart(context.Context) error     { return nil }
func (p *fullPlugin) LoadStop(context.Context) error      { return nil }
func (p *fullPlugin) Close() error {
	p.closeCalls++
	return p.closeErr
}

func testRegistry() *Registry {
	return NewRegistry(logging.New(nil, "silent"))
}

func TestResolve_NameOnly(t *testing.T) {
	c := Resolve(&namedPlugin{name: "bare"})

	assert.Equal(t, "bare", c.Name)
	assert.Nil(t, c.Initialize)
	assert.Nil(t, c.ShowHook(ad.KindFullScreen))
	assert.Nil(t, c.ShowHook(ad.KindRewarded))
	assert.Nil(t, c.GameplayStart)
	assert.Nil(t, c.Close)
	assert.Empty(t, c.List())
}

func TestResolve_AllCapabilities(t *testing.T) {
	c := Resolve(&fullPlugin{namedPlugin: namedPlugin{name: "full"}})

	require.NotNil(t, c.ShowHook(ad.KindFullScreen))
	require.NotNil(t, c.ShowHook(ad.KindRewarded))
	assert.Nil(t, c.ShowHook(ad.Kind("banner")))

	res, err := c.ShowHook(ad.KindRewarded)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ad.Failed(ad.ReasonTime), res)

	assert.Equal(t, []string{
		"initialize", "showFullScreenAd", "showRewardedAd", "gameplay", "loading", "close",
	}, c.List())
}

func TestRegistry_Register(t *testing.T) {
	reg := testRegistry()

	require.NoError(t, reg.Register(&namedPlugin{name: "a"}))
	assert.Equal(t, 1, reg.Count())
}

func TestRegistry_Register_Duplicate(t *testing.T) {
	reg := testRegistry()
	p := &namedPlugin{name: "a"}

	require.NoError(t, reg.Register(p))
	err := reg.Register(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_Register_EmptyName(t *testing.T) {
	reg := testRegistry()
	err := reg.Register(&namedPlugin{})
	require.Error(t, err)
	assert.Equal(t, 0, reg.Count())
}

func TestRegistry_Get(t *testing.T) {
	reg := testRegistry()
	reg.Register(&namedPlugin{name: "a"})

	got := reg.Get("a")
	require.NotNil(t, got)
	assert.Equal(t, "a", got.Name())
	assert.Nil(t, reg.Get("nonexistent"))
}

func TestRegistry_List(t *testing.T) {
	reg := testRegistry()
	reg.Register(&namedPlugin{name: "b"})
	reg.Register(&namedPlugin{name: "a"})

	assert.Equal(t, []string{"b", "a"}, reg.List())
}

func TestRegistry_Select(t *testing.T) {
	reg := testRegistry()

	_, err := reg.Select("")
	assert.ErrorIs(t, err, ErrNoPlugins)

	reg.Register(&namedPlugin{name: "first"})
	reg.Register(&namedPlugin{name: "second"})

	p, err := reg.Select("")
	require.NoError(t, err)
	assert.Equal(t, "first", p.Name())

	p, err = reg.Select("second")
	require.NoError(t, err)
	assert.Equal(t, "second", p.Name())

	_, err = reg.Select("missing")
	assert.ErrorIs(t, err, ErrPluginNotFound)
}

func TestRegistry_CloseAll(t *testing.T) {
	reg := testRegistry()
	p1 := &fullPlugin{namedPlugin: namedPlugin{name: "a"}}
	p2 := &fullPlugin{namedPlugin: namedPlugin{name: "b"}, closeErr: errors.New("close failed")}
	reg.Register(p1)
	reg.Register(&namedPlugin{name: "no-close"})
	reg.Register(p2)

	reg.CloseAll()
	assert.Equal(t, 1, p1.closeCalls)
	assert.Equal(t, 1, p2.closeCalls)
}

func TestRegistry_CloseAllSkipsOwned(t *testing.T) {
	reg := testRegistry()
	active := &fullPlugin{namedPlugin: namedPlugin{name: "active"}}
	other := &fullPlugin{namedPlugin: namedPlugin{name: "other"}}
	reg.Register(active)
	reg.Register(other)

	reg.CloseAll("active")
	assert.Equal(t, 0, active.closeCalls)
	assert.Equal(t, 1, other.closeCalls)
}

func TestRegistry_Info(t *testing.T) {
	reg := testRegistry()
	reg.Register(&namedPlugin{name: "bare"})
	reg.Register(&fullPlugin{namedPlugin: namedPlugin{name: "full"}})

	infos := reg.Info()
	require.Len(t, infos, 2)
	assert.Equal(t, "bare", infos[0].Name)
	assert.Empty(t, infos[0].Capabilities)
	assert.Equal(t, "full", infos[1].Name)
	assert.Contains(t, infos[1].Capabilities, "showRewardedAd")
}
