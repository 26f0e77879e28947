package report

const schema = `
-- One row per committed attempt, copied from the history log.
CREATE TABLE IF NOT EXISTS attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    reviewed_at TEXT NOT NULL,
    day TEXT NOT NULL,
    identifier TEXT NOT NULL,
    score REAL NOT NULL,
    box_before INTEGER NOT NULL,
    box_after INTEGER NOT NULL,
    session_id TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS attempts_identifier ON attempts(identifier);
CREATE INDEX IF NOT EXISTS attempts_day ON attempts(day);

-- How far into each history file the index has read.
CREATE TABLE IF NOT EXISTS sync_state (
    source TEXT PRIMARY KEY,
    position INTEGER NOT NULL
);
`
