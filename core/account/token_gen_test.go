package account

import (
	"testing"
	"time"
)

type fakeAccount struct {
	id    string
	creds Credentials
}

func (a fakeAccount) AccountID() string               { return a.id }
func (a fakeAccount) AccountRole() string             { return RoleAssistant }
func (a fakeAccount) AccountEmail() string            { return "t@uteq.edu.ec" }
func (a fakeAccount) AccountName() string             { return "T" }
func (a fakeAccount) AccountCredentials() Credentials { return a.creds }

func TestMakeVerifyToken(t *testing.T) {
	timeout := 3 * 24 * time.Hour
	tg := NewTokenGenerator("secret", timeout)

	now := time.Now()
	acc := fakeAccount{id: "1204567890", creds: Credentials{LastLogin: &now}}
	_ = acc.creds.SetPassword("pwd")

	validToken, _ := tg.MakeToken(acc)

	// generate an expired token
	dayLate := timeout + (24 * time.Hour)
	NowFunc = func() time.Time { return time.Now().Add(-dayLate) }
	expiredToken, _ := tg.MakeToken(acc)
	NowFunc = time.Now // reset

	// logging in again voids the token
	later := now.Add(time.Minute)
	loggedIn := acc
	loggedIn.creds.LastLogin = &later

	otherSecret, _ := NewTokenGenerator("other", timeout).MakeToken(acc)

	tests := []struct {
		name    string
		acc     Account
		token   string
		wantErr error
	}{
		{name: "no token", acc: acc, wantErr: errInvalidToken},
		{name: "invalid parts len", acc: acc, token: "lmaooolol", wantErr: errInvalidToken},
		{name: "invalid base32", acc: acc, token: "hahaha-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid timestamp", acc: acc, token: "NRXWY-sigsig-sig", wantErr: errInvalidToken},
		{name: "invalid token", acc: acc, token: "HE4TS-sigsig-sig", wantErr: errInvalidToken},
		{name: "other secret", acc: acc, token: otherSecret, wantErr: errInvalidToken},
		{name: "account changed", acc: loggedIn, token: validToken, wantErr: errInvalidToken},
		{name: "expired token", acc: acc, token: expiredToken, wantErr: errTokenExpired},
		{name: "valid token", acc: acc, token: validToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tg.VerifyToken(tt.acc, tt.token); err != tt.wantErr {
				t.Errorf("VerifyToken() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEncodeDecodeUID(t *testing.T) {
	acc := fakeAccount{id: "admin@uteq.edu.ec"}
	id, err := DecodeUID(EncodeUID(acc))
	if err != nil || id != acc.id {
		t.Errorf("DecodeUID(EncodeUID()) = %q, %v; want %q", id, err, acc.id)
	}
	if _, err = DecodeUID("%%%"); err == nil {
		t.Error("DecodeUID() accepted a malformed uid")
	}
}
