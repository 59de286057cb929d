// Package session keeps the portal session: the token issued by the API at login
// and the identity it was issued for.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

var (
	ErrLoginRequired = errors.New("login required")

	NowFunc = time.Now // mockable
)

// a token is renewed once 1/renewWhenLeft of its lifetime is left
const renewWhenLeft = 4

type Session struct {
	Token string `json:"token"`
	Role  string `json:"rol"`
	Email string `json:"correo"`
	Name  string `json:"nombre"`
	ID    string `json:"id"` // cedula, or email for admins

	// Profile is the account record as returned by the API, cached for display.
	Profile json.RawMessage `json:"perfil,omitempty"`
}

// Store persists at most one session. Load returns nil, nil when there is none.
type Store interface {
	Load() (*Session, error)
	Save(s Session) error
	Clear() error
}

func (s Session) claims() (jwt.StandardClaims, error) {
	var claims jwt.StandardClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(s.Token, &claims); err != nil {
		return jwt.StandardClaims{}, errors.Wrap(err, "parsing token")
	}
	if claims.ExpiresAt == 0 {
		return jwt.StandardClaims{}, errors.New("token has no expiry")
	}
	return claims, nil
}

// ExpiresAt reads the exp claim of the token. The signature is not checked:
// the API does that on every request.
func (s Session) ExpiresAt() (time.Time, error) {
	claims, err := s.claims()
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}

// Expiring reports whether less than a quarter of the token lifetime is left.
// Tokens without an iat claim never report expiring.
func (s Session) Expiring() bool {
	claims, err := s.claims()
	if err != nil || claims.IssuedAt == 0 || claims.IssuedAt >= claims.ExpiresAt {
		return false
	}
	exp := time.Unix(claims.ExpiresAt, 0)
	lifetime := exp.Sub(time.Unix(claims.IssuedAt, 0))
	return !NowFunc().Before(exp.Add(-lifetime / renewWhenLeft))
}

// Valid reports whether the session has a token that has not expired yet.
func (s Session) Valid() bool {
	exp, err := s.ExpiresAt()
	return err == nil && NowFunc().Before(exp)
}

// Guard returns the stored session when it is valid and belongs to one of roles (any role when empty).
// An expired or malformed session is cleared. Callers send the user to login on ErrLoginRequired.
func Guard(store Store, roles ...string) (Session, error) {
	s, err := store.Load()
	if err != nil {
		return Session{}, errors.Wrap(err, "loading session")
	}
	if s == nil {
		return Session{}, ErrLoginRequired
	}
	if !s.Valid() {
		if err = store.Clear(); err != nil {
			return Session{}, errors.Wrap(err, "clearing expired session")
		}
		return Session{}, ErrLoginRequired
	}
	if len(roles) == 0 {
		return *s, nil
	}
	for _, role := range roles {
		if s.Role == role {
			return *s, nil
		}
	}
	return Session{}, ErrLoginRequired
}

// Refresher exchanges the token of s for a fresh session.
type Refresher func(ctx context.Context, s Session) (Session, error)

// Renew refreshes s through refresh once it is Expiring and saves the result,
// keeping the cached profile. s is returned unchanged when it is not expiring
// or when the refresh fails.
func Renew(ctx context.Context, store Store, s Session, refresh Refresher) (Session, error) {
	if !s.Expiring() {
		return s, nil
	}
	fresh, err := refresh(ctx, s)
	if err != nil {
		return s, errors.Wrap(err, "refreshing token")
	}
	if fresh.Profile == nil {
		fresh.Profile = s.Profile
	}
	if err = store.Save(fresh); err != nil {
		return fresh, errors.Wrap(err, "saving refreshed session")
	}
	return fresh, nil
}
