package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

var ErrExist = os.ErrExist

func storageClient(ctx context.Context) (*storage.Client, error) {
	var opts []option.ClientOption
	if conf.GCPKeyPath != "" {
		opts = append(opts, option.WithCredentialsFile(conf.GCPKeyPath))
	}
	return storage.NewClient(ctx, opts...)
}

func objectExists(ctx context.Context, bucket *storage.BucketHandle, objectName string) (bool, error) {
	_, err := bucket.Object(objectName).Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("Object(%q).Attrs: %v", objectName, err)
	}
	return true, nil
}

// publishBundle uploads the archive at localPath to the configured bucket.
// An existing object is never overwritten.
func publishBundle(ctx context.Context, localPath string) (string, error) {
	if conf.GCSBucket == "" {
		return "", errors.New("MPKFONT_GCS_BUCKET is not set")
	}
	objectName := path.Join(conf.GCSPrefix, path.Base(localPath))

	client, err := storageClient(ctx)
	if err != nil {
		return "", errors.Wrap(err, "storage.NewClient failed")
	}
	defer client.Close()

	bucket := client.Bucket(conf.GCSBucket)
	exists, err := objectExists(ctx, bucket, objectName)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrExist
	}

	r, err := os.Open(localPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to open bundle")
	}
	defer r.Close()

	w := bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = "application/zip"
	w.CacheControl = "no-transform"
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return "", errors.Wrap(err, "io.Copy failed")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "Writer.Close failed")
	}

	url := fmt.Sprintf("gs://%s/%s", conf.GCSBucket, objectName)
	logger.Info("bundle published", zap.String("url", url))
	return url, nil
}
