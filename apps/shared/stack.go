// Package shared builds the dependencies every binary needs: loggers, mail,
// validators, repositories for the configured database engine and services.
package shared

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/admin"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/core/supervisor"
	appfs "github.com/trezcool/ayudantias/fs"
	"github.com/trezcool/ayudantias/services/email"
	"github.com/trezcool/ayudantias/services/logger"
	"github.com/trezcool/ayudantias/storage/database"
	"github.com/trezcool/ayudantias/storage/database/inmem"
	"github.com/trezcool/ayudantias/storage/database/sqlx"
)

const (
	EngineMemory   = "memory"
	EnginePostgres = "postgres"
)

var ErrUnknownEngine = errors.New("unknown database engine")

type (
	Repositories struct {
		Admins      admin.Repository
		Academic    academic.Repository
		Assistants  assistant.Repository
		Supervisors supervisor.Repository
		Placements  placement.Repository
	}

	Services struct {
		Accounts    *account.Service
		Admins      *admin.Service
		Academic    *academic.Service
		Assistants  *assistant.Service
		Supervisors *supervisor.Service
		Placements  *placement.Service
	}
)

// NewLogger returns a rollbar logger writing to stdout with prefix; rollbar stays off in debug mode.
func NewLogger(prefix string, conf *core.Config) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)
	return logger
}

// NewEmailService prints emails in debug mode and sends them through sendgrid otherwise.
func NewEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

// NewValidator returns the validator with every domain rule registered,
// and loads the resources the rules depend on.
func NewValidator(conf *core.Config, logger core.Logger) (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator(conf.InstitutionalDomain)
	account.InitValidators(validate, translator)
	assistant.InitValidators(validate)
	supervisor.InitValidators(validate)

	core.ParseEmailTemplates(appfs.FS, conf, logger)
	account.LoadCommonPasswords(appfs.FS, logger)
	return validate, translator
}

// OpenDB creates the postgres database if needed and opens it. Migrations are not applied.
func OpenDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	return db, nil
}

// MemoryRepositories returns repositories sharing one empty in-memory database.
func MemoryRepositories() Repositories {
	db := inmemdb.Open()
	return Repositories{
		Admins:      inmemdb.NewAdminRepository(db),
		Academic:    inmemdb.NewAcademicRepository(db),
		Assistants:  inmemdb.NewAssistantRepository(db),
		Supervisors: inmemdb.NewSupervisorRepository(db),
		Placements:  inmemdb.NewPlacementRepository(db),
	}
}

func SQLRepositories(db *sql.DB) Repositories {
	xdb := sqlxrepos.NewDB(db)
	return Repositories{
		Admins:      sqlxrepos.NewAdminRepository(xdb),
		Academic:    sqlxrepos.NewAcademicRepository(xdb),
		Assistants:  sqlxrepos.NewAssistantRepository(xdb),
		Supervisors: sqlxrepos.NewSupervisorRepository(xdb),
		Placements:  sqlxrepos.NewPlacementRepository(xdb),
	}
}

// OpenRepositories returns the repositories of the configured engine.
// For postgres, pending migrations are applied and the returned *sql.DB must be closed by the caller;
// it is nil for the memory engine.
func OpenRepositories(conf *core.Config) (Repositories, *sql.DB, error) {
	switch conf.Database.Engine {
	case EngineMemory:
		return MemoryRepositories(), nil, nil
	case EnginePostgres, "":
		db, err := OpenDB(conf)
		if err != nil {
			return Repositories{}, nil, err
		}
		if err = database.Migrate(db, "up"); err != nil {
			_ = db.Close()
			return Repositories{}, nil, errors.Wrap(err, "migrating database")
		}
		return SQLRepositories(db), db, nil
	default:
		return Repositories{}, nil, errors.Wrap(ErrUnknownEngine, fmt.Sprintf("%q", conf.Database.Engine))
	}
}

// NewServices wires the domain services and registers every role for authentication.
func NewServices(repos Repositories, mailSvc core.EmailService, conf *core.Config) Services {
	svcs := Services{
		Accounts: account.NewService(mailSvc, conf),
		Admins:   admin.NewService(repos.Admins),
		Academic: academic.NewService(repos.Academic),
	}
	svcs.Assistants = assistant.NewService(repos.Assistants, svcs.Academic, mailSvc)
	svcs.Supervisors = supervisor.NewService(repos.Supervisors, mailSvc)
	svcs.Placements = placement.NewService(repos.Placements, svcs.Assistants, svcs.Supervisors, svcs.Academic)

	svcs.Accounts.Register(account.RoleAdmin, svcs.Admins)
	svcs.Accounts.Register(account.RoleAssistant, svcs.Assistants)
	svcs.Accounts.Register(account.RoleSupervisor, svcs.Supervisors)
	return svcs
}
