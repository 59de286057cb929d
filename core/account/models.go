package account

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Roles
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleAssistant  = "ayudante"
)

var (
	AllRoles = []string{RoleAdmin, RoleSupervisor, RoleAssistant}

	roleLabels = map[string]string{
		RoleAdmin:      "Administrador",
		RoleSupervisor: "Supervisor",
		RoleAssistant:  "Ayudante",
	}

	ErrNoPassword = errors.New("account has no password set")
)

func ValidRole(role string) bool {
	_, ok := roleLabels[role]
	return ok
}

// RoleLabel returns the human readable name of role.
func RoleLabel(role string) string {
	return roleLabels[role]
}

// Credentials holds the login data shared by every kind of account.
type Credentials struct {
	PasswordHash []byte     `json:"-" db:"password_hash"`
	LastLogin    *time.Time `json:"-" db:"last_login"` // UTC
}

func (c *Credentials) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	return nil
}

func (c Credentials) CheckPassword(pwd string) error {
	if len(c.PasswordHash) == 0 {
		return ErrNoPassword
	}
	return bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(pwd))
}

// Account is implemented by admins, supervisors and assistants.
type Account interface {
	AccountID() string
	AccountRole() string
	AccountEmail() string
	AccountName() string
	AccountCredentials() Credentials
}

// ResetPassword is the payload confirming a password reset.
type ResetPassword struct {
	Role            string `json:"rol" validate:"required,oneof=admin supervisor ayudante"`
	Token           string `json:"token" validate:"required"`
	UID             string `json:"uid" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}
