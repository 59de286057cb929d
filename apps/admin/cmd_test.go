package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/apps/shared"
	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/admin"
	"github.com/trezcool/ayudantias/services/email"
	"github.com/trezcool/ayudantias/tests"
)

var svcs shared.Services

func setup(t *testing.T) *commandLine {
	conf := core.NewTestConfig()
	validate, _ := core.NewValidator(conf.InstitutionalDomain)
	account.InitValidators(validate, core.NewTranslator())
	svcs = shared.NewServices(shared.MemoryRepositories(), emailsvc.NewConsoleServiceMock(conf), conf)

	// start CLI
	return &commandLine{
		db:       new(sql.DB),
		admins:   svcs.Admins,
		accounts: svcs.Accounts,
		validate: validate,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

type extra struct {
	pwd string
}

func mockPassword(tt cliTest) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if extra, ok := tt.extra.(extra); ok {
			return []byte(extra.pwd), nil
		}
		return nil, nil
	}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, wantErr %v%s", tt.wantErr, tt.wantErrStr)
		}
	case tt.wantErr != nil:
		if errors.Cause(err) != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	migrateFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "ventanas", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	t.Run("memory engine", func(t *testing.T) {
		cli := setup(t)
		cli.db = nil
		checkErr(t, cliTest{wantErr: errNoDatabase}, cli.run([]string{"admin", "migrate", "up"}))
	})
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "no name", args: []string{"adduser", "-email", "jefe@uteq.edu.ec"}, wantErr: errHelp},
		{name: "no password", args: []string{"adduser", "-email", "jefe@uteq.edu.ec", "-name", "Jefe"}, wantErr: errHelp},
		{name: "weak password", args: []string{"adduser", "-email", "jefe@uteq.edu.ec", "-name", "Jefe"}, extra: extra{pwd: "12345678"}, wantErrStr: "password cannot be entirely numeric"},
		{name: "create", args: []string{"adduser", "-email", "Jefe@uteq.edu.ec", "-name", "Jefe"}, extra: extra{pwd: testutil.Password}},
		{name: "update", args: []string{"adduser", "-email", "jefe@uteq.edu.ec", "-name", "Jefa de Carrera"}, extra: extra{pwd: testutil.Password}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	adm, err := svcs.Admins.GetByEmail(context.Background(), "jefe@uteq.edu.ec")
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}
	if adm.Name != "Jefa de Carrera" {
		t.Errorf("adm.Name = %q, want %q", adm.Name, "Jefa de Carrera")
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	adm, err := svcs.Admins.Save(ctx, admin.NewAdmin{Email: "jefe@uteq.edu.ec", Name: "Jefe", Password: testutil.Password})
	if err != nil {
		t.Fatalf("Save() failed, %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "email but no password", args: []string{"resetpassword", "-email", "lol@uteq.edu.ec"}, wantErr: errHelp},
		{name: "account not found", args: []string{"resetpassword", "-email", "lol@uteq.edu.ec"}, extra: extra{pwd: "N3w!passw0rd"}, wantErr: account.ErrNotFound},
		{name: "unknown role", args: []string{"resetpassword", "-email", adm.Email, "-role", "decano"}, extra: extra{pwd: "N3w!passw0rd"}, wantErr: account.ErrUnknownRole},
		{name: "reset", args: []string{"resetpassword", "-email", adm.Email}, extra: extra{pwd: "N3w!passw0rd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)
		mockPassword(tt)

		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(args))
		})
	}

	refreshed, err := svcs.Admins.GetByEmail(ctx, adm.Email)
	if err != nil {
		t.Fatalf("GetByEmail() failed, %v", err)
	}
	if bytes.Equal(refreshed.PasswordHash, adm.PasswordHash) {
		t.Error("failed to update new password")
	}
	if err = refreshed.CheckPassword("N3w!passw0rd"); err != nil {
		t.Errorf("CheckPassword() error = %v", err)
	}
}
