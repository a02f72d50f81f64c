package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// KnowledgeRows returns every advice row, oldest update first so later
// edits win when applied in order.
func (db *DB) KnowledgeRows(ctx context.Context) ([]KnowledgeRow, error) {
	query := `SELECT intent, crop, kind, text, updated_at FROM knowledge ORDER BY updated_at, intent, crop, kind`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query knowledge: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []KnowledgeRow
	for rows.Next() {
		var r KnowledgeRow
		if err := rows.Scan(&r.Intent, &r.Crop, &r.Kind, &r.Text, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge rows: %w", err)
	}
	return out, nil
}

// SaveKnowledgeRows upserts rows in one transaction. Rows without
// UpdatedAt are stamped with the current time.
func (db *DB) SaveKnowledgeRows(ctx context.Context, rows []KnowledgeRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO knowledge (intent, crop, kind, text, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(intent, crop, kind) DO UPDATE SET
			text = excluded.text,
			updated_at = excluded.updated_at
	`
	now := time.Now().Unix()
	err := db.execBatch(ctx, query, func(stmt *sql.Stmt) error {
		for _, r := range rows {
			updated := r.UpdatedAt
			if updated == 0 {
				updated = now
			}
			if _, err := stmt.ExecContext(ctx, r.Intent, r.Crop, r.Kind, r.Text, updated); err != nil {
				slog.ErrorContext(ctx, "failed to save knowledge row",
					"intent", r.Intent,
					"crop", r.Crop,
					"error", err)
				return fmt.Errorf("failed to save knowledge row %s/%s: %w", r.Intent, r.Crop, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.DebugContext(ctx, "batch operation completed",
		"operation", "SaveKnowledgeRows",
		"count", len(rows))
	return nil
}

// CountKnowledgeRows returns the number of stored advice rows.
func (db *DB) CountKnowledgeRows(ctx context.Context) (int, error) {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM knowledge`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count knowledge rows: %w", err)
	}
	return count, nil
}

// IntentExamples returns stored phrases grouped by intent. Rows naming an
// intent outside the taxonomy are skipped with a warning.
func (db *DB) IntentExamples(ctx context.Context) (map[intent.Label][]string, error) {
	query := `SELECT intent, phrase FROM intent_examples ORDER BY intent, created_at, phrase`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query intent examples: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[intent.Label][]string)
	for rows.Next() {
		var name, phrase string
		if err := rows.Scan(&name, &phrase); err != nil {
			return nil, fmt.Errorf("scan intent example: %w", err)
		}
		label, ok := intent.Parse(name)
		if !ok {
			slog.WarnContext(ctx, "skipping example for unknown intent", "intent", name)
			continue
		}
		if phrase = strings.TrimSpace(phrase); phrase != "" {
			out[label] = append(out[label], phrase)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intent examples: %w", err)
	}
	return out, nil
}

// SaveIntentExamples inserts phrases, ignoring exact duplicates.
func (db *DB) SaveIntentExamples(ctx context.Context, examples []IntentExample) error {
	if len(examples) == 0 {
		return nil
	}

	query := `INSERT INTO intent_examples (intent, phrase, created_at) VALUES (?, ?, ?)
		ON CONFLICT(intent, phrase) DO NOTHING`
	now := time.Now().Unix()
	return db.execBatch(ctx, query, func(stmt *sql.Stmt) error {
		for _, e := range examples {
			created := e.CreatedAt
			if created == 0 {
				created = now
			}
			if _, err := stmt.ExecContext(ctx, e.Intent, e.Phrase, created); err != nil {
				return fmt.Errorf("failed to save example for %s: %w", e.Intent, err)
			}
		}
		return nil
	})
}
