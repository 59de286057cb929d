package uploadsvc

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
)

type localStorage struct {
	dir string
}

var _ core.FileStorage = (*localStorage)(nil)

// NewLocalStorage keeps uploads on disk under dir.
func NewLocalStorage(dir string) (core.FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating upload dir")
	}
	return &localStorage{dir: dir}, nil
}

func (s *localStorage) Save(_ context.Context, key string, r io.Reader) (string, error) {
	if !core.ValidUploadKey(key) {
		return "", errors.Errorf("invalid upload key: %q", key)
	}
	path := filepath.Join(s.dir, key)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating upload")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", errors.Wrap(err, "writing upload")
	}
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "closing upload")
	}
	return core.UploadPath(key), nil
}

func (s *localStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if !core.ValidUploadKey(key) {
		return nil, core.ErrFileNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrFileNotFound
		}
		return nil, errors.Wrap(err, "opening upload")
	}
	return f, nil
}
