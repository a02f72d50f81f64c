package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createKnowledgeTable(ctx, db); err != nil {
		return err
	}
	return createIntentExamplesTable(ctx, db)
}

// knowledge holds one advice cell per row. crop is '' for defaults,
// clarifying questions and the fixed replies.
func createKnowledgeTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS knowledge (
		intent TEXT NOT NULL,
		crop TEXT NOT NULL DEFAULT '',
		kind TEXT CHECK(kind IN ('advice', 'clarify')) NOT NULL,
		text TEXT NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (intent, crop, kind)
	);
	CREATE INDEX IF NOT EXISTS idx_knowledge_updated_at ON knowledge(updated_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create knowledge table: %w", err)
	}
	return nil
}

func createIntentExamplesTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS intent_examples (
		intent TEXT NOT NULL,
		phrase TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (intent, phrase)
	);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create intent_examples table: %w", err)
	}
	return nil
}
