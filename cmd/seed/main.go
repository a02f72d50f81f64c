// Command seed writes the built-in knowledge table into a SQLite database so
// curators can edit it, and optionally publishes a compressed copy to R2.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/garyellow/agri-advisor-go/internal/config"
	"github.com/garyellow/agri-advisor-go/internal/knowledge"
	"github.com/garyellow/agri-advisor-go/internal/logger"
	"github.com/garyellow/agri-advisor-go/internal/r2client"
	"github.com/garyellow/agri-advisor-go/internal/snapshot"
	"github.com/garyellow/agri-advisor-go/internal/storage"
)

var (
	dbFlag     = flag.String("db", "", "Target database (default: AGRI_KNOWLEDGE_DB or $AGRI_DATA_DIR/knowledge.db)")
	forceFlag  = flag.Bool("force", false, "Write even if the database already holds knowledge rows")
	uploadFlag = flag.String("upload", "", "R2 key prefix to publish the zstd-compressed database under")
	timeout    = flag.Duration("timeout", 2*time.Minute, "Overall timeout")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	dbPath := targetPath(*dbFlag, cfg)
	start := time.Now()
	written, err := seedFile(ctx, dbPath, *forceFlag)
	if err != nil {
		log.WithError(err).Error("Seeding failed")
		fmt.Fprintf(os.Stderr, "\n❌ Seeding %s failed: %v\n", dbPath, err)
		os.Exit(1)
	}
	if written == 0 {
		fmt.Printf("⏭️  %s already holds knowledge rows, skipping (use -force to overwrite)\n", dbPath)
	} else {
		log.WithField("rows", written).WithField("path", dbPath).Info("Knowledge rows written")
		fmt.Printf("✅ Wrote %d knowledge rows to %s in %v\n", written, dbPath, time.Since(start).Round(time.Millisecond))
	}

	if *uploadFlag == "" {
		return
	}
	if !cfg.R2.Enabled() {
		fmt.Fprintln(os.Stderr, "❌ -upload needs the AGRI_R2_* settings")
		os.Exit(1)
	}
	key, etag, err := publish(ctx, cfg.R2, dbPath, *uploadFlag)
	if err != nil {
		log.WithError(err).Error("Upload failed")
		fmt.Fprintf(os.Stderr, "❌ Upload failed: %v\n", err)
		os.Exit(1)
	}
	log.WithField("key", key).WithField("etag", etag).Info("Knowledge database published")
	fmt.Printf("☁️  Published %s (etag %s)\n", key, etag)
}

func targetPath(flagValue string, cfg *config.Config) string {
	switch {
	case flagValue != "":
		return flagValue
	case cfg.KnowledgeDB != "":
		return cfg.KnowledgeDB
	default:
		return filepath.Join(cfg.DataDir, "knowledge.db")
	}
}

// seedFile opens path and seeds it, closing the database so the WAL is
// checkpointed before any upload.
func seedFile(ctx context.Context, path string, force bool) (int, error) {
	db, err := storage.New(ctx, path)
	if err != nil {
		return 0, err
	}
	n, err := seed(ctx, db, force)
	if cerr := db.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close database: %w", cerr)
	}
	return n, err
}

// seed writes every built-in row and reports how many were written. It is
// a no-op on a curated database unless force is set.
func seed(ctx context.Context, db storage.KnowledgeRepository, force bool) (int, error) {
	existing, err := db.CountKnowledgeRows(ctx)
	if err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	if existing > 0 && !force {
		return 0, nil
	}

	rows := knowledge.ToStorage(knowledge.Builtin().Rows())
	now := time.Now().Unix()
	for i := range rows {
		rows[i].UpdatedAt = now
	}
	if err := db.SaveKnowledgeRows(ctx, rows); err != nil {
		return 0, fmt.Errorf("save rows: %w", err)
	}
	return len(rows), nil
}

func publish(ctx context.Context, r2 config.R2Config, dbPath, prefix string) (string, string, error) {
	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    r2.Endpoint,
		AccessKeyID: r2.AccessKeyID,
		SecretKey:   r2.SecretAccessKey,
		BucketName:  r2.Bucket,
	})
	if err != nil {
		return "", "", err
	}

	key := snapshot.Key(prefix, dbPath)
	etag, err := snapshot.Publish(ctx, client, dbPath, key)
	if err != nil {
		return "", "", err
	}
	return key, etag, nil
}
