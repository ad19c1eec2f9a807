package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('admin', 'manager', 'user')),
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'planning',
	start_date  TIMESTAMPTZ,
	end_date    TIMESTAMPTZ,
	created_by  UUID REFERENCES users(id) ON DELETE SET NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS project_managers (
	project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS items (
	id          UUID PRIMARY KEY,
	project_id  UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	supplier    TEXT NOT NULL DEFAULT '',
	phase       TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	quantity    INTEGER NOT NULL DEFAULT 0,
	unit_price  NUMERIC(14, 2) NOT NULL DEFAULT 0,
	taxes       NUMERIC(14, 2) NOT NULL DEFAULT 0,
	total_cost  NUMERIC(14, 2) NOT NULL DEFAULT 0,
	deadline    TIMESTAMPTZ,
	assigned_to UUID REFERENCES users(id) ON DELETE SET NULL,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_project ON items(project_id);
CREATE INDEX IF NOT EXISTS idx_items_deadline ON items(deadline) WHERE status <> 'completed';

CREATE TABLE IF NOT EXISTS alerts (
	id           UUID PRIMARY KEY,
	item_id      UUID NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	project_id   UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	type         TEXT NOT NULL,
	message      TEXT NOT NULL,
	severity     TEXT NOT NULL CHECK (severity IN ('low', 'medium', 'high', 'critical')),
	triggered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_read      BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_alerts_dedupe ON alerts(item_id, type, triggered_at);

CREATE TABLE IF NOT EXISTS notifications (
	id         UUID PRIMARY KEY,
	user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	type       TEXT NOT NULL,
	message    TEXT NOT NULL,
	is_read    BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_dedupe ON notifications(user_id, type, is_read);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL CHECK (role IN ('admin', 'manager', 'user')),
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'planning',
	start_date  DATETIME,
	end_date    DATETIME,
	created_by  TEXT REFERENCES users(id) ON DELETE SET NULL,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS project_managers (
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS items (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	supplier    TEXT NOT NULL DEFAULT '',
	phase       TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	quantity    INTEGER NOT NULL DEFAULT 0,
	unit_price  REAL NOT NULL DEFAULT 0,
	taxes       REAL NOT NULL DEFAULT 0,
	total_cost  REAL NOT NULL DEFAULT 0,
	deadline    DATETIME,
	assigned_to TEXT REFERENCES users(id) ON DELETE SET NULL,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_project ON items(project_id);
CREATE INDEX IF NOT EXISTS idx_items_deadline ON items(deadline);

CREATE TABLE IF NOT EXISTS alerts (
	id           TEXT PRIMARY KEY,
	item_id      TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
	project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	type         TEXT NOT NULL,
	message      TEXT NOT NULL,
	severity     TEXT NOT NULL CHECK (severity IN ('low', 'medium', 'high', 'critical')),
	triggered_at DATETIME NOT NULL,
	is_read      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_alerts_dedupe ON alerts(item_id, type, triggered_at);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	type       TEXT NOT NULL,
	message    TEXT NOT NULL,
	is_read    INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_dedupe ON notifications(user_id, type, is_read);
`

// Migrate creates the schema for the connected driver. Statements are
// idempotent so it is safe to run on every start.
func Migrate(db *sqlx.DB) error {
	schema := postgresSchema
	if db.DriverName() == DriverSQLite {
		schema = sqliteSchema
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
