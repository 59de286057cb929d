package shared

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/admin"
	"github.com/trezcool/ayudantias/services/email"
)

func TestOpenRepositories(t *testing.T) {
	conf := core.NewTestConfig()

	t.Run("memory", func(t *testing.T) {
		conf.Database.Engine = EngineMemory
		repos, db, err := OpenRepositories(conf)
		assert.NoError(t, err)
		assert.Nil(t, db)
		assert.NotNil(t, repos.Placements)
	})

	t.Run("unknown engine", func(t *testing.T) {
		conf.Database.Engine = "mongodb"
		_, _, err := OpenRepositories(conf)
		assert.Equal(t, ErrUnknownEngine, errors.Cause(err))
	})
}

func TestNewServices(t *testing.T) {
	conf := core.NewTestConfig()
	svcs := NewServices(MemoryRepositories(), emailsvc.NewConsoleServiceMock(conf), conf)
	ctx := context.Background()

	_, err := svcs.Admins.Save(ctx, admin.NewAdmin{Email: "admin@uteq.edu.ec", Name: "Administrador", Password: "Ay!d4nte-2024"})
	if !assert.NoError(t, err) {
		return
	}

	// every role must be registered for login
	acc, err := svcs.Accounts.Authenticate(ctx, account.RoleAdmin, "ADMIN@uteq.edu.ec", "Ay!d4nte-2024")
	if assert.NoError(t, err) {
		assert.Equal(t, "admin@uteq.edu.ec", acc.AccountID())
	}
	for _, role := range []string{account.RoleAssistant, account.RoleSupervisor} {
		_, err = svcs.Accounts.Authenticate(ctx, role, "nadie@uteq.edu.ec", "x")
		assert.Equal(t, account.ErrAuthenticationFailed, err, role)
	}
}
