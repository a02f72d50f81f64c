package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/agri-advisor-go/internal/config"
	"github.com/garyellow/agri-advisor-go/internal/knowledge"
	"github.com/garyellow/agri-advisor-go/internal/storage"
)

func TestSeed(t *testing.T) {
	t.Parallel()

	db, err := storage.NewTestDB(t.Context())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	n, err := seed(t.Context(), db, false)
	require.NoError(t, err)
	assert.Equal(t, len(knowledge.Builtin().Rows()), n)

	n, err = seed(t.Context(), db, false)
	require.NoError(t, err)
	assert.Zero(t, n, "curated database is left alone")

	n, err = seed(t.Context(), db, true)
	require.NoError(t, err)
	assert.Positive(t, n)

	tbl, err := knowledge.Load(t.Context(), db)
	require.NoError(t, err)
	assert.NoError(t, knowledge.Validate(tbl))
}

func TestSeedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "knowledge.db")
	n, err := seedFile(t.Context(), path, false)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.FileExists(t, path)
}

func TestTargetPath(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{DataDir: "/data"}
	assert.Equal(t, filepath.Join("/data", "knowledge.db"), targetPath("", cfg))
	cfg.KnowledgeDB = "/srv/k.db"
	assert.Equal(t, "/srv/k.db", targetPath("", cfg))
	assert.Equal(t, "x.db", targetPath("x.db", cfg))
}
