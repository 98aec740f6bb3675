package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the relational schema on first boot.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	type TEXT NOT NULL,
	content BYTEA,
	chunk_size INTEGER NOT NULL DEFAULT 0,
	chunk_overlap INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL DEFAULT '',
	summary_vector BYTEA,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS embedding_chunks (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	vector BYTEA NOT NULL
);

CREATE TABLE IF NOT EXISTS bot_configs (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	destination_name TEXT NOT NULL,
	api_version TEXT NOT NULL DEFAULT '',
	resource_group TEXT NOT NULL DEFAULT 'default'
);

CREATE TABLE IF NOT EXISTS bots (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	initial_prompt TEXT NOT NULL DEFAULT '',
	hyde_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	rerank_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	doc_level_rank_enabled BOOLEAN NOT NULL DEFAULT FALSE,
	config_id TEXT NOT NULL REFERENCES bot_configs(id),
	config_name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS document_bot_relationships (
	id TEXT PRIMARY KEY,
	bot_id TEXT NOT NULL REFERENCES bots(id) ON DELETE CASCADE,
	bot_name TEXT NOT NULL DEFAULT '',
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	document_name TEXT NOT NULL DEFAULT '',
	UNIQUE (bot_id, document_id)
);

CREATE TABLE IF NOT EXISTS conversations (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL DEFAULT '',
	bot_id TEXT NOT NULL REFERENCES bots(id),
	title TEXT NOT NULL DEFAULT '',
	creation_time TIMESTAMPTZ NOT NULL,
	last_update_time TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	creation_time TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON embedding_chunks(document_id);
CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, creation_time DESC);
CREATE INDEX IF NOT EXISTS idx_relationships_bot ON document_bot_relationships(bot_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
