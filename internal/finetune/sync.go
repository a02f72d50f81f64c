package finetune

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/garyellow/agri-advisor-go/internal/r2client"
)

// ObjectStore is the subset of *r2client.Client used to fetch artifacts.
type ObjectStore interface {
	HeadObject(ctx context.Context, key string) (string, error)
	Download(ctx context.Context, key string) (body io.ReadCloser, etag string, err error)
}

const etagSuffix = ".etag"

// SyncResult reports what Sync did for one artifact.
type SyncResult struct {
	Name       string
	Key        string
	ETag       string
	Downloaded bool
}

// Sync mirrors every artifact under prefix into dir. Remote objects may be
// plain or zstd-compressed; both land in dir as plain JSON. An artifact is
// skipped when its ETag sidecar matches the remote ETag.
func Sync(ctx context.Context, store ObjectStore, prefix, dir string) ([]SyncResult, error) {
	results := make([]SyncResult, 0, len(Artifacts))
	for _, name := range Artifacts {
		res, err := syncOne(ctx, store, prefix, dir, name)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func syncOne(ctx context.Context, store ObjectStore, prefix, dir, name string) (SyncResult, error) {
	key, etag, err := resolveRemote(ctx, store, prefix, name)
	if err != nil {
		return SyncResult{Name: name}, err
	}
	res := SyncResult{Name: name, Key: key, ETag: etag}

	local := filepath.Join(dir, name)
	sidecar := local + etagSuffix
	if cached, err := os.ReadFile(sidecar); err == nil && etag != "" && strings.TrimSpace(string(cached)) == etag {
		if _, err := os.Stat(local); err == nil {
			return res, nil
		}
	}

	body, gotETag, err := store.Download(ctx, key)
	if err != nil {
		return res, fmt.Errorf("download %s: %w", key, err)
	}
	defer body.Close()

	if strings.HasSuffix(key, compressedSuffix) {
		err = r2client.DecompressStream(body, local)
	} else {
		err = r2client.WriteFileAtomic(local, body)
	}
	if err != nil {
		return res, err
	}

	if gotETag != "" {
		res.ETag = gotETag
	}
	if err := os.WriteFile(sidecar, []byte(res.ETag+"\n"), 0o644); err != nil {
		return res, fmt.Errorf("write etag sidecar: %w", err)
	}
	res.Downloaded = true
	return res, nil
}

// resolveRemote finds name or its .zst twin under prefix.
func resolveRemote(ctx context.Context, store ObjectStore, prefix, name string) (string, string, error) {
	for _, key := range []string{path.Join(prefix, name), path.Join(prefix, name+compressedSuffix)} {
		etag, err := store.HeadObject(ctx, key)
		if err == nil {
			return key, etag, nil
		}
		if !errors.Is(err, r2client.ErrNotFound) {
			return "", "", fmt.Errorf("head %s: %w", key, err)
		}
	}
	return "", "", fmt.Errorf("artifact %s not found under %q: %w", name, prefix, r2client.ErrNotFound)
}
