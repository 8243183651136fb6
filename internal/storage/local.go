package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
)

// LocalPrefix is the URL path the server exposes the upload directory under.
const LocalPrefix = "/uploads"

type localUploader struct {
	dir string
}

func NewLocalUploader(dir string) Uploader {
	return &localUploader{
		dir: dir,
	}
}

func (u *localUploader) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	clean := path.Clean("/" + key)
	target := filepath.Join(u.dir, filepath.FromSlash(clean))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}

	return LocalPrefix + clean, nil
}
