package repository

type migration struct {
	version    int
	statements []string
}

// Both dialects share table and column names; only types differ.
var sqliteMigrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS subscribers (
				subscriber_id  TEXT PRIMARY KEY,
				keywords       TEXT NOT NULL DEFAULT '[]',
				sources        TEXT NOT NULL DEFAULT '[]',
				delivery_times TEXT NOT NULL DEFAULT '[]',
				timezone       TEXT NOT NULL DEFAULT 'Asia/Shanghai',
				report_mode    TEXT NOT NULL DEFAULT 'current',
				enabled        INTEGER NOT NULL DEFAULT 1,
				created_at     DATETIME NOT NULL,
				updated_at     DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_subscribers_enabled ON subscribers(enabled)`,
			`CREATE TABLE IF NOT EXISTS push_logs (
				id            TEXT PRIMARY KEY,
				subscriber_id TEXT NOT NULL,
				pushed_at     DATETIME NOT NULL,
				item_count    INTEGER NOT NULL DEFAULT 0,
				status        TEXT NOT NULL,
				error         TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_push_logs_subscriber ON push_logs(subscriber_id, pushed_at)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS delivered_items (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				subscriber_id TEXT NOT NULL,
				keyword       TEXT NOT NULL DEFAULT '',
				title         TEXT NOT NULL,
				url           TEXT NOT NULL DEFAULT '',
				source_name   TEXT NOT NULL DEFAULT '',
				is_new        INTEGER NOT NULL DEFAULT 0,
				delivered_at  DATETIME NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_delivered_subscriber ON delivered_items(subscriber_id, delivered_at)`,
		},
	},
}

var postgresMigrations = []migration{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS subscribers (
				subscriber_id  TEXT PRIMARY KEY,
				keywords       TEXT NOT NULL DEFAULT '[]',
				sources        TEXT NOT NULL DEFAULT '[]',
				delivery_times TEXT NOT NULL DEFAULT '[]',
				timezone       TEXT NOT NULL DEFAULT 'Asia/Shanghai',
				report_mode    TEXT NOT NULL DEFAULT 'current',
				enabled        BOOLEAN NOT NULL DEFAULT TRUE,
				created_at     TIMESTAMPTZ NOT NULL,
				updated_at     TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_subscribers_enabled ON subscribers(enabled)`,
			`CREATE TABLE IF NOT EXISTS push_logs (
				id            TEXT PRIMARY KEY,
				subscriber_id TEXT NOT NULL,
				pushed_at     TIMESTAMPTZ NOT NULL,
				item_count    INTEGER NOT NULL DEFAULT 0,
				status        TEXT NOT NULL,
				error         TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_push_logs_subscriber ON push_logs(subscriber_id, pushed_at)`,
		},
	},
	{
		version: 2,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS delivered_items (
				id            BIGSERIAL PRIMARY KEY,
				subscriber_id TEXT NOT NULL,
				keyword       TEXT NOT NULL DEFAULT '',
				title         TEXT NOT NULL,
				url           TEXT NOT NULL DEFAULT '',
				source_name   TEXT NOT NULL DEFAULT '',
				is_new        BOOLEAN NOT NULL DEFAULT FALSE,
				delivered_at  TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_delivered_subscriber ON delivered_items(subscriber_id, delivered_at)`,
		},
	},
}
