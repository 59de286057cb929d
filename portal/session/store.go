package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var (
	sessionsBucket = []byte("Sessions")
	currentKey     = []byte("current")
)

// MemoryStore keeps the session for the life of the process.
type MemoryStore struct {
	mu sync.Mutex
	s  *Session
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	s := *m.s
	return &s, nil
}

func (m *MemoryStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = &s
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}

// BoltStore persists the session in a bbolt file so it survives between CLI invocations.
type BoltStore struct {
	db *bbolt.DB
}

var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens (or creates) the session file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(err, "creating session directory")
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening session file")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating sessions bucket")
	}
	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}

func (b *BoltStore) Load() (*Session, error) {
	var s *Session
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get(currentKey)
		if v == nil {
			return nil
		}
		s = new(Session)
		return json.Unmarshal(v, s)
	})
	if err != nil {
		return nil, errors.Wrap(err, "reading session")
	}
	return s, nil
}

func (b *BoltStore) Save(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put(currentKey, data)
	})
}

func (b *BoltStore) Clear() error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete(currentKey)
	})
}
