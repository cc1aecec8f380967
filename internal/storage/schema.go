// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// Schema creates the local tables. Timestamps are unix milliseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Summaries fetched or generated locally, newest first
CREATE TABLE IF NOT EXISTS summaries (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    channel_id TEXT NOT NULL DEFAULT '',
    channel_name TEXT NOT NULL DEFAULT '',
    root_post_id TEXT NOT NULL DEFAULT '',
    title TEXT NOT NULL DEFAULT '',
    message_count INTEGER NOT NULL DEFAULT 0,
    generated_at INTEGER NOT NULL DEFAULT 0,
    saved_at INTEGER NOT NULL,
    payload TEXT NOT NULL           -- full response as JSON
);

CREATE INDEX IF NOT EXISTS idx_summaries_saved_at ON summaries(saved_at);
CREATE INDEX IF NOT EXISTS idx_summaries_channel ON summaries(channel_id);

CREATE TABLE IF NOT EXISTS action_items (
    id TEXT PRIMARY KEY,
    channel_id TEXT NOT NULL DEFAULT '',
    post_id TEXT NOT NULL DEFAULT '',
    created_by TEXT NOT NULL DEFAULT '',
    assignee_id TEXT NOT NULL,
    description TEXT NOT NULL,
    due_date INTEGER NOT NULL DEFAULT 0,
    priority TEXT NOT NULL,
    status TEXT NOT NULL,
    completed_at INTEGER NOT NULL DEFAULT 0,
    create_at INTEGER NOT NULL,
    update_at INTEGER NOT NULL,
    delete_at INTEGER NOT NULL DEFAULT 0  -- soft delete
);

CREATE INDEX IF NOT EXISTS idx_action_items_assignee ON action_items(assignee_id, delete_at);
CREATE INDEX IF NOT EXISTS idx_action_items_channel ON action_items(channel_id, delete_at);
CREATE INDEX IF NOT EXISTS idx_action_items_due ON action_items(due_date);
`

// InitMetadata seeds the metadata table.
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
`
