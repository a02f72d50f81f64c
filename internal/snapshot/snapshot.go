// Package snapshot moves the knowledge database to and from R2 as a single
// zstd-compressed object.
//
// cmd/seed publishes a curated database with Publish; the server refreshes
// its local copy with Fetch before opening it. An ETag sidecar next to the
// database lets Fetch skip unchanged snapshots.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/garyellow/agri-advisor-go/internal/r2client"
)

// ContentType is the MIME type snapshots are uploaded with.
const ContentType = "application/zstd"

const etagSuffix = ".etag"

// Store is the read side of *r2client.Client.
type Store interface {
	HeadObject(ctx context.Context, key string) (string, error)
	Download(ctx context.Context, key string) (body io.ReadCloser, etag string, err error)
}

// Uploader is the write side of *r2client.Client.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Result reports what Fetch did.
type Result struct {
	Key        string
	ETag       string
	Downloaded bool
}

// Key is prefix/<db file name>.zst.
func Key(prefix, dbPath string) string {
	return path.Join(strings.Trim(prefix, "/"), filepath.Base(dbPath)+".zst")
}

// Fetch replaces dbPath with the snapshot stored under key unless the local
// ETag sidecar already matches. Stale SQLite WAL files are removed with the
// old database. A missing object wraps r2client.ErrNotFound.
func Fetch(ctx context.Context, store Store, key, dbPath string) (Result, error) {
	res := Result{Key: key}

	etag, err := store.HeadObject(ctx, key)
	if err != nil {
		return res, fmt.Errorf("snapshot: head %s: %w", key, err)
	}
	res.ETag = etag

	if etag != "" && localETag(dbPath) == etag {
		return res, nil
	}

	body, gotETag, err := store.Download(ctx, key)
	if err != nil {
		return res, fmt.Errorf("snapshot: download %s: %w", key, err)
	}
	defer func() { _ = body.Close() }()

	if err := r2client.DecompressStream(body, dbPath); err != nil {
		return res, err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("snapshot: remove %s: %w", suffix, err)
		}
	}

	if gotETag != "" {
		res.ETag = gotETag
	}
	if err := writeETag(dbPath, res.ETag); err != nil {
		return res, err
	}
	res.Downloaded = true
	return res, nil
}

// Publish compresses dbPath and uploads it under key. The database must be
// closed so its WAL is checkpointed. The returned ETag is also recorded in
// the sidecar, which makes a following Fetch on this host a no-op.
func Publish(ctx context.Context, up Uploader, dbPath, key string) (string, error) {
	compressed := dbPath + ".zst"
	if err := r2client.CompressFile(dbPath, compressed); err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(compressed) }()

	f, err := os.Open(compressed)
	if err != nil {
		return "", fmt.Errorf("snapshot: open %s: %w", compressed, err)
	}
	defer func() { _ = f.Close() }()

	etag, err := up.Upload(ctx, key, f, ContentType)
	if err != nil {
		return "", fmt.Errorf("snapshot: upload %s: %w", key, err)
	}
	if etag != "" {
		if err := writeETag(dbPath, etag); err != nil {
			return etag, err
		}
	}
	return etag, nil
}

// localETag returns the recorded ETag, or "" when dbPath or its sidecar is missing.
func localETag(dbPath string) string {
	if _, err := os.Stat(dbPath); err != nil {
		return ""
	}
	cached, err := os.ReadFile(dbPath + etagSuffix)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(cached))
}

func writeETag(dbPath, etag string) error {
	if err := os.WriteFile(dbPath+etagSuffix, []byte(etag+"\n"), 0o644); err != nil {
		return fmt.Errorf("snapshot: write etag sidecar: %w", err)
	}
	return nil
}
