package storage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Uploader stores an object under key and returns the URL it is served from.
type Uploader interface {
	Upload(ctx context.Context, key string, contentType string, data []byte) (string, error)
}

type fallbackUploader struct {
	primary  Uploader
	fallback Uploader
	log      logrus.FieldLogger
}

// NewFallbackUploader tries primary first and, when it fails, writes to
// fallback instead. The two backends hand out differently shaped URLs.
func NewFallbackUploader(primary, fallback Uploader, log logrus.FieldLogger) Uploader {
	return &fallbackUploader{
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

func (u *fallbackUploader) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	if u.primary != nil {
		url, err := u.primary.Upload(ctx, key, contentType, data)
		if err == nil {
			return url, nil
		}
		u.log.WithError(err).WithField("key", key).Warn("primary upload failed, storing locally")
	}

	url, err := u.fallback.Upload(ctx, key, contentType, data)
	if err != nil {
		return "", fmt.Errorf("fallback upload: %w", err)
	}
	return url, nil
}
