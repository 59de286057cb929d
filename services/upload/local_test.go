package uploadsvc

import (
	"context"
	"errors"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ayudantias/core"
)

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage() failed: %v", err)
	}

	url, err := store.Save(ctx, "evidence.txt", strings.NewReader("hello"))
	assert.NoError(t, err)
	assert.Equal(t, "/uploads/evidence.txt", url)

	r, err := store.Open(ctx, "evidence.txt")
	if assert.NoError(t, err) {
		data, _ := ioutil.ReadAll(r)
		_ = r.Close()
		assert.Equal(t, "hello", string(data))
	}

	tests := []struct {
		name string
		key  string
	}{
		{"missing", "nope.txt"},
		{"traversal", "../secret"},
		{"nested", "a/b.txt"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Open(ctx, tt.key)
			assert.Equal(t, core.ErrFileNotFound, err)
		})
	}

	_, err = store.Save(ctx, "../escape", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestLocalStorage_failedWriteLeavesNoFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("NewLocalStorage() failed: %v", err)
	}

	errBroken := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errBroken))
	_, err = store.Save(ctx, "evidence.pdf", r)
	assert.Error(t, err)

	_, err = os.Stat(filepath.Join(dir, "evidence.pdf"))
	assert.True(t, os.IsNotExist(err))
	_, err = store.Open(ctx, "evidence.pdf")
	assert.Equal(t, core.ErrFileNotFound, err)
}
