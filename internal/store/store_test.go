package store

import (
	"context"
	"testing"
	"time"

	"github.com/soyeahso/adlad/internal/ad"
	"github.com/soyeahso/adlad/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func record(kind ad.Kind, res ad.Result, at time.Time) AdRecord {
	return AdRecord{
		Plugin:     "dummy",
		Kind:       kind,
		Shown:      res.Shown,
		Reason:     res.Reason,
		StartedAt:  at,
		FinishedAt: at.Add(250 * time.Millisecond),
	}
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	require.NoError(t, db.migrate())

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	var name string
	err := db.sql.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", "ad_requests",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "ad_requests", name)
}

// --- SQLite history tests ---

func TestSQLiteHistory_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	h := NewSQLiteHistory(testDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, h.RecordAd(ctx, record(ad.KindFullScreen, ad.Shown(), base)))
	second := record(ad.KindRewarded, ad.Failed(ad.ReasonAlreadyPlaying), base.Add(time.Second))
	second.ClientID = "conn-1"
	require.NoError(t, h.RecordAd(ctx, second))

	recs, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.NotEmpty(t, recs[0].ID)
	assert.Equal(t, ad.KindRewarded, recs[0].Kind)
	assert.False(t, recs[0].Shown)
	assert.Equal(t, ad.ReasonAlreadyPlaying, recs[0].Reason)
	assert.Equal(t, "conn-1", recs[0].ClientID)
	assert.True(t, recs[0].StartedAt.Equal(base.Add(time.Second)))

	assert.Equal(t, ad.KindFullScreen, recs[1].Kind)
	assert.True(t, recs[1].Shown)
	assert.Equal(t, ad.ReasonNone, recs[1].Reason)
	assert.Equal(t, 250*time.Millisecond, recs[1].Duration())
}

func TestSQLiteHistory_RecentLimit(t *testing.T) {
	ctx := context.Background()
	h := NewSQLiteHistory(testDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, h.RecordAd(ctx, record(ad.KindFullScreen, ad.Shown(), base.Add(time.Duration(i)*time.Second))))
	}

	recs, err := h.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.True(t, recs[0].StartedAt.Equal(base.Add(4*time.Second)))
}

func TestSQLiteHistory_RecentCorruptTimestamp(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	h := NewSQLiteHistory(db)

	_, err := db.SQL().ExecContext(ctx,
		`INSERT INTO ad_requests (id, kind, started_at, finished_at) VALUES ('bad', 'rewarded', 'yesterday', 'today')`)
	require.NoError(t, err)

	_, err = h.Recent(ctx, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ad request bad")
	var perr *time.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestSQLiteHistory_DuplicateID(t *testing.T) {
	ctx := context.Background()
	h := NewSQLiteHistory(testDB(t))

	rec := record(ad.KindFullScreen, ad.Shown(), time.Now())
	rec.ID = "fixed"
	require.NoError(t, h.RecordAd(ctx, rec))
	assert.Error(t, h.RecordAd(ctx, rec))
}

func TestSQLiteHistory_Stats(t *testing.T) {
	ctx := context.Background()
	h := NewSQLiteHistory(testDB(t))
	now := time.Now()

	require.NoError(t, h.RecordAd(ctx, record(ad.KindFullScreen, ad.Shown(), now)))
	require.NoError(t, h.RecordAd(ctx, record(ad.KindFullScreen, ad.Shown(), now)))
	require.NoError(t, h.RecordAd(ctx, record(ad.KindRewarded, ad.Failed(ad.ReasonNotSupported), now)))
	require.NoError(t, h.RecordAd(ctx, record(ad.KindFullScreen, ad.Failed(ad.ReasonAlreadyPlaying), now)))

	stats, err := h.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Shown)
	assert.Equal(t, 3, stats.ByKind["full-screen"])
	assert.Equal(t, 1, stats.ByKind["rewarded"])
	assert.Equal(t, 1, stats.ByReason["not-supported"])
	assert.Equal(t, 1, stats.ByReason["already-playing"])
}

func TestSQLiteHistory_StatsEmpty(t *testing.T) {
	stats, err := NewSQLiteHistory(testDB(t)).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Total)
	assert.NotNil(t, stats.ByReason)
}

// --- Memory history tests ---

func TestMemoryHistory_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(10)
	now := time.Now()

	require.NoError(t, h.RecordAd(ctx, record(ad.KindFullScreen, ad.Shown(), now)))
	require.NoError(t, h.RecordAd(ctx, record(ad.KindRewarded, ad.Failed(ad.ReasonUnknown), now)))

	recs, err := h.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, ad.KindRewarded, recs[0].Kind)
	assert.NotEmpty(t, recs[0].ID)
	assert.Equal(t, ad.KindFullScreen, recs[1].Kind)
}

func TestMemoryHistory_DropsOldest(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(2)
	now := time.Now()

	for i := 0; i < 3; i++ {
		rec := record(ad.KindFullScreen, ad.Shown(), now)
		rec.ClientID = string(rune('a' + i))
		require.NoError(t, h.RecordAd(ctx, rec))
	}

	recs, err := h.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].ClientID)
	assert.Equal(t, "b", recs[1].ClientID)

	stats, err := h.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
}

func TestMemoryHistory_StatsIsCopy(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistory(0)
	require.NoError(t, h.RecordAd(ctx, record(ad.KindRewarded, ad.Failed(ad.ReasonNoActivePlugin), time.Now())))

	stats, err := h.Stats(ctx)
	require.NoError(t, err)
	stats.ByReason["no-active-plugin"] = 100

	again, err := h.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, again.ByReason["no-active-plugin"])
}

func TestHistoryInterfaces(t *testing.T) {
	var _ History = (*SQLiteHistory)(nil)
	var _ History = (*MemoryHistory)(nil)
}
