package store

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
  id               TEXT PRIMARY KEY,
  owner            TEXT NOT NULL,
  parent_id        TEXT,
  selected_lessons TEXT NOT NULL,
  questions        TEXT NOT NULL,
  answers          TEXT NOT NULL,
  current_index    INTEGER NOT NULL DEFAULT 0,
  status           TEXT NOT NULL,
  score            INTEGER,
  created_at       INTEGER NOT NULL,
  updated_at       INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_owner_created ON attempts(owner, created_at)`,
	`CREATE TABLE IF NOT EXISTS lesson_mastery (
  owner      TEXT NOT NULL,
  lesson_id  TEXT NOT NULL,
  granted_at INTEGER NOT NULL,
  PRIMARY KEY (owner, lesson_id)
)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS attempts (
  id               TEXT PRIMARY KEY,
  owner            TEXT NOT NULL,
  parent_id        TEXT,
  selected_lessons JSONB NOT NULL,
  questions        JSONB NOT NULL,
  answers          JSONB NOT NULL,
  current_index    INTEGER NOT NULL DEFAULT 0,
  status           TEXT NOT NULL,
  score            INTEGER,
  created_at       BIGINT NOT NULL,
  updated_at       BIGINT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_attempts_owner_created ON attempts(owner, created_at)`,
	`CREATE TABLE IF NOT EXISTS lesson_mastery (
  owner      TEXT NOT NULL,
  lesson_id  TEXT NOT NULL,
  granted_at BIGINT NOT NULL,
  PRIMARY KEY (owner, lesson_id)
)`,
}
