package dummy

import (
	"context"
	"testing"
	"time"

	"github.com/soyeahso/adlad/internal/ad"
	"github.com/soyeahso/adlad/internal/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Capabilities(t *testing.T) {
	tests := []struct {
		name        string
		unsupported []ad.Kind
		full        bool
		rewarded    bool
	}{
		{"all supported", nil, true, true},
		{"no full-screen", []ad.Kind{ad.KindFullScreen}, false, true},
		{"no rewarded", []ad.Kind{ad.KindRewarded}, true, false},
		{"none", []ad.Kind{ad.KindRewarded, ad.KindFullScreen}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps := plugin.Resolve(New(Config{Unsupported: tt.unsupported}, nil))
			assert.Equal(t, Name, caps.Name)
			assert.Equal(t, tt.full, caps.ShowFullScreen != nil)
			assert.Equal(t, tt.rewarded, caps.ShowRewarded != nil)
			assert.NotNil(t, caps.Initialize)
			assert.NotNil(t, caps.GameplayStart)
			assert.NotNil(t, caps.LoadStart)
			assert.NotNil(t, caps.Close)
		})
	}
}

func TestInitialize(t *testing.T) {
	p := New(Config{InitDelay: 10 * time.Millisecond}, nil)
	start := time.Now()
	require.NoError(t, p.Initialize(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestInitialize_Fail(t *testing.T) {
	p := New(Config{FailInit: true}, nil)
	assert.ErrorIs(t, p.Initialize(context.Background()), ErrInitFailed)
}

func TestInitialize_Cancelled(t *testing.T) {
	p := New(Config{InitDelay: time.Hour}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Initialize(ctx), context.Canceled)
}

func TestShow(t *testing.T) {
	p := New(Config{AdDuration: time.Millisecond}, nil)
	caps := plugin.Resolve(p)
	ctx := context.Background()

	res, err := caps.ShowFullScreen(ctx)
	require.NoError(t, err)
	assert.Equal(t, ad.Shown(), res)

	res, err = caps.ShowRewarded(ctx)
	require.NoError(t, err)
	assert.Equal(t, ad.Shown(), res)

	assert.Equal(t, int64(2), p.Stats().Shown)
}

func TestShow_FailKinds(t *testing.T) {
	p := New(Config{FailKinds: []ad.Kind{ad.KindRewarded}}, nil)
	caps := plugin.Resolve(p)
	ctx := context.Background()

	_, err := caps.ShowRewarded(ctx)
	assert.ErrorIs(t, err, ErrAdFailed)

	res, err := caps.ShowFullScreen(ctx)
	require.NoError(t, err)
	assert.True(t, res.Shown)

	st := p.Stats()
	assert.Equal(t, int64(1), st.Shown)
	assert.Equal(t, int64(1), st.Failed)
}

func TestShow_ContextCancelled(t *testing.T) {
	p := New(Config{AdDuration: time.Hour}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := plugin.Resolve(p).ShowFullScreen(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), p.Stats().Failed)
}

func TestLifecycle(t *testing.T) {
	p := New(Config{}, nil)
	ctx := context.Background()

	require.NoError(t, p.GameplayStart(ctx))
	require.NoError(t, p.LoadStart(ctx))
	st := p.Stats()
	assert.True(t, st.Gameplay)
	assert.True(t, st.Loading)

	require.NoError(t, p.GameplayStop(ctx))
	require.NoError(t, p.LoadStop(ctx))
	st = p.Stats()
	assert.False(t, st.Gameplay)
	assert.False(t, st.Loading)
}

func TestClose(t *testing.T) {
	p := New(Config{}, nil)
	require.NoError(t, p.Close())

	_, err := plugin.Resolve(p).ShowFullScreen(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, p.GameplayStart(context.Background()), ErrClosed)
}
