package uploadsvc

import (
	"context"
	"io"

	"github.com/kurin/blazer/b2"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
)

type b2Storage struct {
	bucket *b2.Bucket
}

var _ core.FileStorage = (*b2Storage)(nil)

// NewB2Storage stores uploads in a Backblaze B2 bucket.
func NewB2Storage(ctx context.Context, account, key, bucketName string) (core.FileStorage, error) {
	client, err := b2.NewClient(ctx, account, key)
	if err != nil {
		return nil, errors.Wrap(err, "creating b2 client")
	}
	bucket, err := client.Bucket(ctx, bucketName)
	if err != nil {
		return nil, errors.Wrap(err, "getting b2 bucket")
	}
	return &b2Storage{bucket: bucket}, nil
}

func (s *b2Storage) Save(ctx context.Context, key string, r io.Reader) (string, error) {
	if !core.ValidUploadKey(key) {
		return "", errors.Errorf("invalid upload key: %q", key)
	}
	w := s.bucket.Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "writing object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "closing object writer")
	}
	// served through the API so access stays behind authentication
	return core.UploadPath(key), nil
}

func (s *b2Storage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if !core.ValidUploadKey(key) {
		return nil, core.ErrFileNotFound
	}
	obj := s.bucket.Object(key)
	if _, err := obj.Attrs(ctx); err != nil {
		if b2.IsNotExist(err) {
			return nil, core.ErrFileNotFound
		}
		return nil, errors.Wrap(err, "reading object attrs")
	}
	return obj.NewReader(ctx), nil
}
