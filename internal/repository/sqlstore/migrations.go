package sqlstore

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrationSets holds the ordered migrations per driver. Versions must be
// sequential starting from 1 and kept in step across drivers.
var migrationSets = map[string][]migration{
	DriverSQLite: {
		{
			version: 1,
			sql: `
CREATE TABLE IF NOT EXISTS task_lists (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL CHECK(length(title) BETWEEN 1 AND 200),
	description TEXT,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME
);

CREATE TABLE IF NOT EXISTS tasks (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	title        TEXT NOT NULL CHECK(length(title) BETWEEN 1 AND 200),
	description  TEXT,
	status       TEXT NOT NULL DEFAULT 'pending'
		CHECK(status IN ('pending', 'in_progress', 'completed', 'cancelled')),
	percentage   INTEGER NOT NULL DEFAULT 0 CHECK(percentage BETWEEN 0 AND 100),
	priority     TEXT NOT NULL DEFAULT 'medium'
		CHECK(priority IN ('low', 'medium', 'high', 'urgent')),
	task_list_id INTEGER NOT NULL REFERENCES task_lists(id) ON DELETE CASCADE,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME
);

CREATE INDEX IF NOT EXISTS idx_tasks_task_list_id ON tasks(task_list_id);
CREATE INDEX IF NOT EXISTS idx_tasks_list_status_priority ON tasks(task_list_id, status, priority);
`,
		},
	},
	DriverPostgres: {
		{
			version: 1,
			sql: `
CREATE TABLE IF NOT EXISTS task_lists (
	id          BIGSERIAL PRIMARY KEY,
	title       VARCHAR(200) NOT NULL CHECK(char_length(title) >= 1),
	description VARCHAR(1000),
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS tasks (
	id           BIGSERIAL PRIMARY KEY,
	title        VARCHAR(200) NOT NULL CHECK(char_length(title) >= 1),
	description  VARCHAR(1000),
	status       VARCHAR(16) NOT NULL DEFAULT 'pending'
		CHECK(status IN ('pending', 'in_progress', 'completed', 'cancelled')),
	percentage   INTEGER NOT NULL DEFAULT 0 CHECK(percentage BETWEEN 0 AND 100),
	priority     VARCHAR(16) NOT NULL DEFAULT 'medium'
		CHECK(priority IN ('low', 'medium', 'high', 'urgent')),
	task_list_id BIGINT NOT NULL REFERENCES task_lists(id) ON DELETE CASCADE,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_tasks_task_list_id ON tasks(task_list_id);
CREATE INDEX IF NOT EXISTS idx_tasks_list_status_priority ON tasks(task_list_id, status, priority);
`,
		},
	},
}
