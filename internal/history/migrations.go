package history

const schemaV1 = `
CREATE TABLE IF NOT EXISTS builds (
    build_id        INTEGER PRIMARY KEY AUTOINCREMENT,
    build_uuid      TEXT UNIQUE NOT NULL,
    version         TEXT NOT NULL DEFAULT '',
    target          TEXT NOT NULL DEFAULT '',
    platform_group  TEXT NOT NULL DEFAULT '',
    result          TEXT NOT NULL,
    output_path     TEXT NOT NULL DEFAULT '',
    installer       INTEGER NOT NULL DEFAULT 0,
    error           TEXT NOT NULL DEFAULT '',
    started_at      TEXT,
    finished_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_builds_finished
    ON builds(finished_at DESC);
`
