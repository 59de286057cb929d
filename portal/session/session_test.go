package session

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newToken(t *testing.T, exp time.Time) string {
	t.Helper()
	return issueToken(t, time.Time{}, exp)
}

func issueToken(t *testing.T, iat, exp time.Time) string {
	t.Helper()
	claims := jwt.StandardClaims{Subject: "1204567890", ExpiresAt: exp.Unix()}
	if !iat.IsZero() {
		claims.IssuedAt = iat.Unix()
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func stores(t *testing.T) map[string]Store {
	bolt, err := OpenBoltStore(filepath.Join(t.TempDir(), "portal", "session.db"))
	if err != nil {
		t.Fatalf("OpenBoltStore() failed: %v", err)
	}
	t.Cleanup(func() { _ = bolt.Close() })
	return map[string]Store{
		"memory": new(MemoryStore),
		"bolt":   bolt,
	}
}

func TestStore(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			s, err := store.Load()
			assert.NoError(t, err)
			assert.Nil(t, s)

			want := Session{Token: "x.y.z", Role: "ayudante", Email: "ana.vera@uteq.edu.ec", Name: "Ana Vera", ID: "1204567890"}
			assert.NoError(t, store.Save(want))
			s, err = store.Load()
			if assert.NoError(t, err) && assert.NotNil(t, s) {
				assert.Equal(t, want, *s)
			}

			assert.NoError(t, store.Clear())
			s, err = store.Load()
			assert.NoError(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestBoltStore_survivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	store, err := OpenBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.NoError(t, store.Save(Session{Token: "x.y.z", Role: "admin"}))
	assert.NoError(t, store.Close())

	store, err = OpenBoltStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = store.Close() }()
	s, err := store.Load()
	if assert.NoError(t, err) && assert.NotNil(t, s) {
		assert.Equal(t, "admin", s.Role)
	}
}

func TestGuard(t *testing.T) {
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	valid := Session{Token: newToken(t, now.Add(time.Hour)), Role: "supervisor", ID: "0912345678"}

	tests := []struct {
		name      string
		stored    *Session
		roles     []string
		wantErr   error
		wantClear bool
	}{
		{name: "no session", wantErr: ErrLoginRequired},
		{name: "valid", stored: &valid, roles: []string{"supervisor"}},
		{name: "any role", stored: &valid},
		{name: "other role", stored: &valid, roles: []string{"admin", "ayudante"}, wantErr: ErrLoginRequired},
		{
			name:      "expired",
			stored:    &Session{Token: newToken(t, now.Add(-time.Second)), Role: "supervisor"},
			wantErr:   ErrLoginRequired,
			wantClear: true,
		},
		{
			name:      "malformed token",
			stored:    &Session{Token: "true", Role: "supervisor"},
			wantErr:   ErrLoginRequired,
			wantClear: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MemoryStore)
			if tt.stored != nil {
				_ = store.Save(*tt.stored)
			}

			s, err := Guard(store, tt.roles...)
			assert.Equal(t, tt.wantErr, err)
			if tt.wantErr == nil {
				assert.Equal(t, *tt.stored, s)
			}
			left, _ := store.Load()
			assert.Equal(t, tt.wantClear, left == nil && tt.stored != nil)
		})
	}
}

func TestSession_ExpiresAt(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := Session{Token: newToken(t, exp)}.ExpiresAt()
	if assert.NoError(t, err) {
		assert.True(t, exp.Equal(got))
	}
}

func TestRenew(t *testing.T) {
	now := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return now }
	defer func() { NowFunc = time.Now }()

	profile := json.RawMessage(`{"cedula":"0912345678"}`)
	renewed := issueToken(t, now, now.Add(time.Hour))
	errDown := errors.New("api down")

	tests := []struct {
		name       string
		token      string
		refreshErr error
		wantToken  string
		wantCalled bool
		wantErr    bool
	}{
		{
			name:  "plenty of time left",
			token: issueToken(t, now.Add(-10*time.Minute), now.Add(50*time.Minute)),
		},
		{
			name:       "near expiry",
			token:      issueToken(t, now.Add(-50*time.Minute), now.Add(10*time.Minute)),
			wantToken:  renewed,
			wantCalled: true,
		},
		{
			name:       "refresh fails",
			token:      issueToken(t, now.Add(-50*time.Minute), now.Add(10*time.Minute)),
			refreshErr: errDown,
			wantCalled: true,
			wantErr:    true,
		},
		{
			name:  "no iat",
			token: newToken(t, now.Add(time.Minute)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MemoryStore)
			old := Session{Token: tt.token, Role: "supervisor", ID: "0912345678", Profile: profile}
			_ = store.Save(old)

			var called bool
			got, err := Renew(context.Background(), store, old, func(_ context.Context, s Session) (Session, error) {
				called = true
				assert.Equal(t, tt.token, s.Token)
				if tt.refreshErr != nil {
					return Session{}, tt.refreshErr
				}
				return Session{Token: renewed, Role: s.Role, ID: s.ID}, nil
			})
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantErr {
				assert.Equal(t, tt.refreshErr, errors.Cause(err))
			} else {
				assert.NoError(t, err)
			}

			want := old
			if tt.wantToken != "" {
				want.Token = tt.wantToken
			}
			assert.Equal(t, want, got)
			stored, _ := store.Load()
			if assert.NotNil(t, stored) {
				assert.Equal(t, want, *stored)
			}
		})
	}
}
