package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

// ErrObjectNotFound is returned when an object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// EnsureBucket creates the bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, c Client, bucket, region string) error {
	exists, err := c.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucket, err)
	}
	if exists {
		return nil
	}
	if err := c.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
	}
	return nil
}

// ReadObject downloads a whole object. Missing objects yield ErrObjectNotFound.
func ReadObject(ctx context.Context, c Client, bucket, name string) ([]byte, error) {
	obj, err := c.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, objectError(name, err)
	}
	defer obj.Close()

	// Minio defers the request until the first read
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, objectError(name, err)
	}
	return data, nil
}

// WriteObject uploads data under name.
func WriteObject(ctx context.Context, c Client, bucket, name string, data []byte, contentType string) error {
	_, err := c.PutObject(ctx, bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	return nil
}

// ListNames returns the base names of the objects directly below prefix, with ext trimmed.
// Objects without the extension are ignored.
func ListNames(ctx context.Context, c Client, bucket, prefix, ext string) ([]string, error) {
	var names []string
	for obj := range c.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: strings.TrimSuffix(prefix, "/") + "/"}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		base := path.Base(obj.Key)
		if strings.HasSuffix(base, ext) {
			names = append(names, strings.TrimSuffix(base, ext))
		}
	}
	return names, nil
}

func objectError(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%s: %w", name, ErrObjectNotFound)
	}
	return fmt.Errorf("failed to download %s: %w", name, err)
}
