// Package testutil wires the whole application on top of the in-memory database
// so handlers and API clients can be tested end-to-end.
package testutil

import (
	"bytes"
	"context"
	"log"
	"net/http/httptest"
	"testing"

	"github.com/trezcool/ayudantias/apps/api/echo"
	"github.com/trezcool/ayudantias/apps/shared"
	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/admin"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/core/supervisor"
	"github.com/trezcool/ayudantias/services/email"
	"github.com/trezcool/ayudantias/services/logger"
	"github.com/trezcool/ayudantias/services/upload"
)

// Password satisfies the password policy for every account created by this package.
const Password = "Ay!d4nte-2024"

// Seeded faculties: the first one has majors, the second has none.
const (
	FacultyWithMajors = "Ciencias de la Computación y Diseño Digital"
	FacultyNoMajors   = "Ciencias Sociales, Económicas y Financieras"
	Major             = "Software"
	OtherMajor        = "Telemática"
)

type App struct {
	Conf   *core.Config
	Server *echoapi.Server
	Mail   *emailsvc.ConsoleServiceMock
	Logs   *bytes.Buffer

	Accounts    *account.Service
	Admins      *admin.Service
	Academic    *academic.Service
	Assistants  *assistant.Service
	Supervisors *supervisor.Service
	Placements  *placement.Service
}

// NewLogger returns a logger writing to the returned buffer, with rollbar off.
func NewLogger(conf *core.Config) (core.Logger, *bytes.Buffer) {
	logs := new(bytes.Buffer)
	logger := logsvc.NewRollbarLogger(log.New(logs, "TEST : ", 0), conf)
	logger.Enable(false)
	return logger, logs
}

// NewApp returns a fully wired application with seeded faculties and majors.
func NewApp(t testing.TB) *App {
	t.Helper()
	ctx := context.Background()

	conf := core.NewTestConfig()
	conf.Upload.Dir = t.TempDir()

	logger, logs := NewLogger(conf)

	validate, translator := shared.NewValidator(conf, logger)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	files, err := uploadsvc.New(ctx, conf)
	if err != nil {
		t.Fatalf("uploadsvc.New() failed: %v", err)
	}
	svcs := shared.NewServices(shared.MemoryRepositories(), mailSvc, conf)

	app := &App{
		Conf:        conf,
		Mail:        mailSvc,
		Logs:        logs,
		Accounts:    svcs.Accounts,
		Admins:      svcs.Admins,
		Academic:    svcs.Academic,
		Assistants:  svcs.Assistants,
		Supervisors: svcs.Supervisors,
		Placements:  svcs.Placements,
	}

	app.Server = echoapi.NewServer(echoapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
		AccountSvc:     app.Accounts,
		AcademicSvc:    app.Academic,
		AssistantSvc:   app.Assistants,
		SupervisorSvc:  app.Supervisors,
		PlacementSvc:   app.Placements,
		MailSvc:        mailSvc,
		Files:          files,
	})

	app.seed(t)
	return app
}

func (app *App) seed(t testing.TB) {
	ctx := context.Background()
	for _, name := range []string{FacultyWithMajors, FacultyNoMajors} {
		if _, err := app.Academic.CreateFaculty(ctx, academic.NewFaculty{Name: name}); err != nil {
			t.Fatalf("seeding faculty %q: %v", name, err)
		}
	}
	for _, name := range []string{Major, OtherMajor} {
		if _, err := app.Academic.CreateMajor(ctx, FacultyWithMajors, academic.NewMajor{Name: name}); err != nil {
			t.Fatalf("seeding major %q: %v", name, err)
		}
	}
}

// StartHTTP serves the application on a local port until the test ends.
func (app *App) StartHTTP(t testing.TB) string {
	srv := httptest.NewServer(app.Server)
	t.Cleanup(srv.Close)
	return srv.URL
}

// Token returns a valid session token for acc.
func (app *App) Token(t testing.TB, acc account.Account) string {
	token, err := echoapi.GenerateToken(echoapi.NewClaims(acc, app.Conf), app.Conf)
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	return token
}

func (app *App) CreateAdmin(t testing.TB, email, name string) admin.Admin {
	adm, err := app.Admins.Save(context.Background(), admin.NewAdmin{Email: email, Name: name, Password: Password})
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return adm
}

func (app *App) CreateAssistant(t testing.TB, cedula, name, email string) assistant.Assistant {
	a, err := app.Assistants.Create(context.Background(), assistant.NewAssistant{
		Cedula:          cedula,
		Name:            name,
		Email:           email,
		Level:           "Quinto",
		Faculty:         FacultyWithMajors,
		Major:           Major,
		Password:        Password,
		PasswordConfirm: Password,
	})
	if err != nil {
		t.Fatalf("CreateAssistant() failed: %v", err)
	}
	return a
}

func (app *App) CreateSupervisor(t testing.TB, cedula, name, email string) supervisor.Supervisor {
	s, err := app.Supervisors.Create(context.Background(), supervisor.NewSupervisor{
		Cedula:          cedula,
		Name:            name,
		Email:           email,
		Password:        Password,
		PasswordConfirm: Password,
	})
	if err != nil {
		t.Fatalf("CreateSupervisor() failed: %v", err)
	}
	return s
}

func (app *App) CreatePlacement(t testing.TB, assistantCedula, supervisorCedula string) placement.Placement {
	p, err := app.Placements.Assign(context.Background(), placement.NewPlacement{
		AssistantCedula:  assistantCedula,
		SupervisorCedula: supervisorCedula,
		Position:         "Laboratorio de Redes",
		AssistantType:    "Docencia",
		Objective:        "Apoyar las prácticas de laboratorio",
	})
	if err != nil {
		t.Fatalf("CreatePlacement() failed: %v", err)
	}
	return p
}

func (app *App) CreatePeriod(t testing.TB, name string, current bool) academic.Period {
	p, err := app.Academic.CreatePeriod(context.Background(), academic.NewPeriod{Name: name, Current: current})
	if err != nil {
		t.Fatalf("CreatePeriod() failed: %v", err)
	}
	return p
}

func (app *App) SetWindow(t testing.TB, open bool) {
	if _, err := app.Placements.SetWindow(context.Background(), open); err != nil {
		t.Fatalf("SetWindow() failed: %v", err)
	}
}
