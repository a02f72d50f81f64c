package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/agri-advisor-go/internal/intent"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB(t.Context())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew_FileSystemDatabase(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nested", "knowledge.db")
	db, err := New(t.Context(), dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
	assert.Equal(t, dbPath, db.Path())
	require.NoError(t, db.Ping(t.Context()))

	require.NoError(t, db.SaveKnowledgeRows(t.Context(), []KnowledgeRow{
		{Intent: "ask_soil", Kind: "advice", Text: "Mulch."},
	}))
	require.NoError(t, db.Close())

	// reopening keeps data and tolerates an existing schema
	db2, err := New(t.Context(), dbPath)
	require.NoError(t, err)
	defer func() { _ = db2.Close() }()
	count, err := db2.CountKnowledgeRows(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestKnowledgeRows(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()

	rows, err := db.KnowledgeRows(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, db.SaveKnowledgeRows(ctx, []KnowledgeRow{
		{Intent: "ask_pest", Crop: "onion", Kind: "advice", Text: "Thrips: blue sticky traps.", UpdatedAt: 20},
		{Intent: "ask_pest", Kind: "clarify", Text: "Which crop?", UpdatedAt: 10},
	}))

	rows, err = db.KnowledgeRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "clarify", rows[0].Kind, "ordered by update time")
	assert.Equal(t, "onion", rows[1].Crop)

	// upsert replaces text for the same key
	require.NoError(t, db.SaveKnowledgeRows(ctx, []KnowledgeRow{
		{Intent: "ask_pest", Crop: "onion", Kind: "advice", Text: "Updated.", UpdatedAt: 30},
	}))
	rows, err = db.KnowledgeRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Updated.", rows[1].Text)

	require.NoError(t, db.SaveKnowledgeRows(ctx, nil))
}

func TestSaveKnowledgeRowsRejectsBadKind(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	err := db.SaveKnowledgeRows(t.Context(), []KnowledgeRow{
		{Intent: "ask_soil", Kind: "advice", Text: "ok"},
		{Intent: "ask_soil", Kind: "rumour", Text: "bad"},
	})
	require.Error(t, err)

	// the batch is atomic
	count, err := db.CountKnowledgeRows(t.Context())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIntentExamples(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := t.Context()

	require.NoError(t, db.SaveIntentExamples(ctx, []IntentExample{
		{Intent: "ask_market", Phrase: "cold storage rates", CreatedAt: 1},
		{Intent: "ask_market", Phrase: "cold storage rates", CreatedAt: 2},
		{Intent: "ask_market", Phrase: "export prices", CreatedAt: 3},
		{Intent: "ask_horoscope", Phrase: "stars", CreatedAt: 1},
		{Intent: "greeting", Phrase: "  ", CreatedAt: 1},
	}))

	got, err := db.IntentExamples(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[intent.Label][]string{
		intent.AskMarket: {"cold storage rates", "export prices"},
	}, got)
}
