package uploadsvc

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
)

// New returns the storage backend selected by conf.Upload.Backend.
func New(ctx context.Context, conf *core.Config) (core.FileStorage, error) {
	switch conf.Upload.Backend {
	case "", "local":
		return NewLocalStorage(conf.Upload.Dir)
	case "b2":
		return NewB2Storage(ctx, conf.Upload.B2Account, conf.Upload.B2Key, conf.Upload.B2Bucket)
	default:
		return nil, errors.Errorf("unknown upload backend: %q", conf.Upload.Backend)
	}
}
