package core

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// FileStorage stores uploaded evidence files under opaque keys.
type FileStorage interface {
	// Save writes r under key and returns the public path of the file.
	Save(ctx context.Context, key string, r io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

var ErrFileNotFound = errors.New("file not found")

// UploadPath is the public path under which a stored file is served.
func UploadPath(key string) string {
	return "/uploads/" + key
}

// ValidUploadKey reports whether key is a plain file name.
func ValidUploadKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}
