package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create ad requests",
		SQL: `
			CREATE TABLE ad_requests (
				id           TEXT PRIMARY KEY,
				plugin       TEXT NOT NULL DEFAULT '',
				kind         TEXT NOT NULL,
				shown        INTEGER NOT NULL DEFAULT 0,
				reason       TEXT NOT NULL DEFAULT '',
				started_at   TEXT NOT NULL,
				finished_at  TEXT NOT NULL
			);

			CREATE INDEX idx_ad_requests_started ON ad_requests (started_at);
			CREATE INDEX idx_ad_requests_plugin ON ad_requests (plugin, kind);
		`,
	},
	{
		Version: 2,
		Name:    "record client id per request",
		SQL: `
			ALTER TABLE ad_requests ADD COLUMN client_id TEXT NOT NULL DEFAULT '';
		`,
	},
}
