package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

type bucketUploader struct {
	bucket *gcs.BucketHandle
	name   string
}

// NewBucketUploader writes public objects into a Cloud Storage bucket, the
// one backing Firebase Storage.
func NewBucketUploader(bucket *gcs.BucketHandle, name string) Uploader {
	return &bucketUploader{
		bucket: bucket,
		name:   name,
	}
}

func (u *bucketUploader) Upload(ctx context.Context, key string, contentType string, data []byte) (string, error) {
	obj := u.bucket.Object(key)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", key, err)
	}

	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", fmt.Errorf("make object %s public: %w", key, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.name, key), nil
}
