package sqlite

// schemaSQL is applied with CREATE TABLE IF NOT EXISTS on every Open, so it
// is safe to run against an already-initialized database.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
	id                     TEXT PRIMARY KEY,
	key                    TEXT NOT NULL UNIQUE,
	title                  TEXT NOT NULL,
	description            TEXT NOT NULL DEFAULT '',
	status                 TEXT NOT NULL,
	version                INTEGER NOT NULL DEFAULT 1,
	next_work_item_number  INTEGER NOT NULL DEFAULT 1,
	created_at             TEXT NOT NULL,
	updated_at             TEXT NOT NULL,
	created_by             TEXT NOT NULL,
	updated_by             TEXT NOT NULL,
	deleted_at             TEXT
);

CREATE TABLE IF NOT EXISTS sprints (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL REFERENCES projects(id),
	name        TEXT NOT NULL,
	goal        TEXT NOT NULL DEFAULT '',
	start_at    TEXT NOT NULL,
	end_at      TEXT NOT NULL,
	status      TEXT NOT NULL,
	version     INTEGER NOT NULL DEFAULT 1,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	created_by  TEXT NOT NULL,
	updated_by  TEXT NOT NULL,
	deleted_at  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sprints_project ON sprints(project_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS work_items (
	id           TEXT PRIMARY KEY,
	item_type    TEXT NOT NULL,
	parent_id    TEXT REFERENCES work_items(id),
	project_id   TEXT NOT NULL REFERENCES projects(id),
	position     INTEGER NOT NULL DEFAULT 0,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	priority     TEXT NOT NULL,
	story_points INTEGER,
	assignee_id  TEXT,
	sprint_id    TEXT REFERENCES sprints(id),
	item_number  INTEGER NOT NULL,
	version      INTEGER NOT NULL DEFAULT 1,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	created_by   TEXT NOT NULL,
	updated_by   TEXT NOT NULL,
	deleted_at   TEXT,
	UNIQUE(project_id, item_number)
);
CREATE INDEX IF NOT EXISTS idx_work_items_project ON work_items(project_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_work_items_parent ON work_items(parent_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_work_items_sprint ON work_items(sprint_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS comments (
	id           TEXT PRIMARY KEY,
	work_item_id TEXT NOT NULL REFERENCES work_items(id),
	content      TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	created_by   TEXT NOT NULL,
	updated_by   TEXT NOT NULL,
	deleted_at   TEXT
);
CREATE INDEX IF NOT EXISTS idx_comments_work_item ON comments(work_item_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS time_entries (
	id               TEXT PRIMARY KEY,
	work_item_id     TEXT NOT NULL REFERENCES work_items(id),
	user_id          TEXT NOT NULL,
	started_at       TEXT NOT NULL,
	ended_at         TEXT,
	duration_seconds INTEGER,
	description      TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL,
	created_by       TEXT NOT NULL,
	updated_by       TEXT NOT NULL,
	deleted_at       TEXT
);
CREATE INDEX IF NOT EXISTS idx_time_entries_work_item ON time_entries(work_item_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_time_entries_running ON time_entries(user_id, work_item_id) WHERE ended_at IS NULL AND deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS dependencies (
	id                TEXT PRIMARY KEY,
	blocking_item_id  TEXT NOT NULL REFERENCES work_items(id),
	blocked_item_id   TEXT NOT NULL REFERENCES work_items(id),
	type              TEXT NOT NULL,
	created_at        TEXT NOT NULL,
	updated_at        TEXT NOT NULL,
	created_by        TEXT NOT NULL,
	updated_by        TEXT NOT NULL,
	deleted_at        TEXT,
	UNIQUE(blocking_item_id, blocked_item_id, type)
);
CREATE INDEX IF NOT EXISTS idx_dependencies_blocking ON dependencies(blocking_item_id) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_dependencies_blocked ON dependencies(blocked_item_id) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS activity_log (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL REFERENCES projects(id),
	entity_type TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	action      TEXT NOT NULL,
	field_name  TEXT,
	old_value   TEXT,
	new_value   TEXT,
	user_id     TEXT NOT NULL,
	timestamp   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activity_log_entity ON activity_log(entity_type, entity_id);
CREATE INDEX IF NOT EXISTS idx_activity_log_project_ts ON activity_log(project_id, timestamp);

CREATE TABLE IF NOT EXISTS idempotency_records (
	message_id TEXT PRIMARY KEY,
	handler    TEXT NOT NULL,
	response   BLOB NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_idempotency_created ON idempotency_records(created_at);
`
