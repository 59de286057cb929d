package dashboard_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/portal/api"
	. "github.com/trezcool/ayudantias/portal/dashboard"
	"github.com/trezcool/ayudantias/portal/forms"
	"github.com/trezcool/ayudantias/portal/session"
	"github.com/trezcool/ayudantias/services/email"
	"github.com/trezcool/ayudantias/tests"
)

const domain = "@uteq.edu.ec"

type env struct {
	app    *testutil.App
	client *api.Client
	logger core.Logger
	logs   interface{ String() string }
	forms  *forms.Validator
}

func newEnv(t *testing.T) *env {
	app := testutil.NewApp(t)
	logger, logs := testutil.NewLogger(app.Conf)
	return &env{
		app:    app,
		client: api.New(app.StartHTTP(t), nil),
		logger: logger,
		logs:   logs,
		forms:  forms.NewValidator(domain),
	}
}

// login returns a session for acc and a client acting on its behalf.
func (e *env) login(t *testing.T, role, email string) (session.Session, *api.Client) {
	t.Helper()
	l, err := e.client.Login(context.Background(), role, email, testutil.Password)
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	sess := session.Session{Token: l.Token, Role: l.Role, Email: l.Email, Name: l.Name, ID: l.ID}
	return sess, e.client.WithToken(l.Token)
}

func failure(t *testing.T, err error) *Failure {
	t.Helper()
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("want *Failure, got %v", err)
	}
	return f
}

func newAssistantForm() forms.AssistantForm {
	return forms.AssistantForm{
		Cedula:          "1309876543",
		Name:            "Carla Ruiz",
		Email:           "carla.ruiz@uteq.edu.ec",
		Level:           "Quinto",
		Faculty:         testutil.FacultyWithMajors,
		Major:           testutil.Major,
		Password:        testutil.Password,
		PasswordConfirm: testutil.Password,
	}
}

func TestAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.app.CreateAdmin(t, "admin@uteq.edu.ec", "Administrador")
	e.app.CreateAssistant(t, "1204567890", "Ana Vera", "ana.vera@uteq.edu.ec")
	e.app.CreateSupervisor(t, "0912345678", "Luis Mora", "luis.mora@uteq.edu.ec")
	_, client := e.login(t, account.RoleAdmin, "admin@uteq.edu.ec")

	d := NewAdmin(client, e.forms, e.logger)
	if !assert.NoError(t, d.Load(ctx)) {
		return
	}
	assert.Len(t, d.Assistants(), 1)
	assert.Len(t, d.Supervisors(), 1)
	assert.Contains(t, d.Faculties(ctx), testutil.FacultyNoMajors)

	t.Run("create assistant", func(t *testing.T) {
		a, err := d.CreateAssistant(ctx, newAssistantForm())
		if assert.NoError(t, err) {
			assert.Equal(t, "1309876543", a.Cedula)
		}
		assert.Len(t, d.Assistants(), 2)
	})

	t.Run("search", func(t *testing.T) {
		d.SetSearch("carla")
		defer d.SetSearch("")
		if assert.Len(t, d.Assistants(), 1) {
			assert.Equal(t, "Carla Ruiz", d.Assistants()[0].Name)
		}
		assert.Empty(t, d.Supervisors())
	})

	tests := []struct {
		name       string
		form       func(f *forms.AssistantForm)
		wantMsg    string
		wantFields []string
	}{
		{
			name:    "duplicate cedula",
			form:    func(f *forms.AssistantForm) { f.Email = "otra@uteq.edu.ec" },
			wantMsg: MsgCedulaTaken,
		},
		{
			name:    "duplicate email",
			form:    func(f *forms.AssistantForm) { f.Cedula = "1711111111" },
			wantMsg: MsgEmailTaken,
		},
		{
			name:       "invalid form",
			form:       func(f *forms.AssistantForm) { f.Cedula, f.Email = "123", "carla@gmail.com" },
			wantMsg:    MsgInvalid,
			wantFields: []string{"cedula", "correo"},
		},
		{
			name: "faculty without majors",
			form: func(f *forms.AssistantForm) {
				f.Cedula, f.Email = "1711111111", "otra@uteq.edu.ec"
				f.Faculty, f.Major = testutil.FacultyNoMajors, ""
			},
			wantMsg:    MsgInvalid,
			wantFields: []string{"carrera"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newAssistantForm()
			tc.form(&f)
			_, err := d.CreateAssistant(ctx, f)
			fail := failure(t, err)
			assert.Equal(t, tc.wantMsg, fail.Message)
			for _, field := range tc.wantFields {
				assert.Contains(t, fail.Fields, field)
			}
		})
	}

	t.Run("edit assistant", func(t *testing.T) {
		f, ok := d.EditForm("1309876543")
		if !assert.True(t, ok) {
			return
		}
		f.Name, f.Major = "Carla Ruiz Paz", testutil.OtherMajor
		a, err := d.EditAssistant(ctx, f)
		if assert.NoError(t, err) {
			assert.Equal(t, "Carla Ruiz Paz", a.Name)
			assert.Equal(t, testutil.OtherMajor, a.Major)
		}
		_, ok = d.EditForm("0000000000")
		assert.False(t, ok)
	})

	t.Run("create supervisor", func(t *testing.T) {
		_, err := d.CreateSupervisor(ctx, forms.SupervisorForm{
			Cedula:          "0923456789",
			Name:            "Rosa Díaz",
			Email:           "rosa.diaz@uteq.edu.ec",
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		})
		assert.NoError(t, err)
		assert.Len(t, d.Supervisors(), 2)
	})

	t.Run("assign placement", func(t *testing.T) {
		f := forms.PlacementForm{
			AssistantCedula:  "1309876543",
			SupervisorCedula: "0923456789",
			Position:         "Laboratorio de Redes",
			AssistantType:    "Docencia",
		}
		p, err := d.AssignPlacement(ctx, f)
		if assert.NoError(t, err) {
			assert.NotZero(t, p.ID)
		}

		_, err = d.AssignPlacement(ctx, f)
		fail := failure(t, err)
		assert.Equal(t, MsgInvalid, fail.Message)
		assert.NotEmpty(t, fail.Fields)
	})

	t.Run("failed reload keeps the record", func(t *testing.T) {
		broken := NewAdmin(listErrClient{AdminClient: client, err: errors.New("list down")}, e.forms, e.logger)
		s, err := broken.CreateSupervisor(ctx, forms.SupervisorForm{
			Cedula:          "0934567890",
			Name:            "Marta León",
			Email:           "marta.leon@uteq.edu.ec",
			Password:        testutil.Password,
			PasswordConfirm: testutil.Password,
		})
		if assert.NoError(t, err) {
			assert.Equal(t, "0934567890", s.Cedula)
		}
		assert.Contains(t, e.logs.String(), "reloading lists")

		assert.NoError(t, d.Load(ctx))
		assert.Len(t, d.Supervisors(), 3)
	})
}

type listErrClient struct {
	AdminClient
	err error
}

func (c listErrClient) Assistants(context.Context, string) ([]assistant.Assistant, error) {
	return nil, c.err
}

func TestAdmin_offline(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := NewAdmin(api.New("http://127.0.0.1:1", nil), e.forms, e.logger)

	err := d.Load(ctx)
	assert.Equal(t, MsgNetwork, failure(t, err).Message)
	assert.Equal(t, MsgNetwork, Describe(err))

	// forms keep working on the built-in catalog
	assert.NotEmpty(t, d.Faculties(ctx))
	d.Cascade.Select(ctx, testutil.FacultyWithMajors)
	assert.True(t, d.Cascade.Fallback)
	assert.Contains(t, d.Cascade.Majors, testutil.Major)
}

func TestAssistant(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.app.CreateAssistant(t, "1204567890", "Ana Vera", "ana.vera@uteq.edu.ec")
	luis := e.app.CreateSupervisor(t, "0912345678", "Luis Mora", "luis.mora@uteq.edu.ec")
	sess, client := e.login(t, account.RoleAssistant, ana.Email)

	d := NewAssistant(client, e.forms, e.logger, sess)
	if !assert.NoError(t, d.Load(ctx)) {
		return
	}
	assert.Equal(t, "Ana Vera", d.Profile.Name)
	assert.Nil(t, d.Placement)
	assert.Equal(t, MsgNoPlacement, failure(t, d.BeginEdit()).Message)

	p := e.app.CreatePlacement(t, ana.Cedula, luis.Cedula)
	if !assert.NoError(t, d.Load(ctx)) || !assert.NotNil(t, d.Placement) {
		return
	}
	assert.Equal(t, p.ID, d.Placement.ID)

	t.Run("objective", func(t *testing.T) {
		assert.Equal(t, ErrNotEditing, d.SetDraft("x"))
		assert.Equal(t, ErrNotEditing, d.Save(ctx))

		assert.NoError(t, d.BeginEdit())
		assert.Equal(t, p.Objective, d.Draft)
		assert.NoError(t, d.SetDraft("Descartado"))
		d.Cancel()
		assert.False(t, d.Editing())
		assert.Equal(t, p.Objective, d.Placement.Objective)

		assert.NoError(t, d.BeginEdit())
		assert.NoError(t, d.SetDraft("Preparar guías de práctica"))
		assert.NoError(t, d.Save(ctx))
		assert.False(t, d.Editing())
		assert.Equal(t, "Preparar guías de práctica", d.Placement.Objective)
	})

	t.Run("activity with evidence", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "acta.txt")
		if err := os.WriteFile(path, []byte("acta de reunión"), 0o600); err != nil {
			t.Fatal(err)
		}
		act, err := d.RecordActivity(ctx, forms.ActivityForm{Date: "2024-03-12", Description: "Reunión inicial", EvidenceFile: path})
		if assert.NoError(t, err) {
			assert.True(t, strings.HasPrefix(act.Evidence, "/uploads/"), act.Evidence)
			assert.Equal(t, p.ID, act.PlacementID)
		}
		assert.Len(t, d.Activities, 1)
	})

	t.Run("invalid activity", func(t *testing.T) {
		_, err := d.RecordActivity(ctx, forms.ActivityForm{Date: "12/03/2024", Description: " "})
		fail := failure(t, err)
		assert.Equal(t, MsgInvalid, fail.Message)
		assert.Contains(t, fail.Fields, "fecha")
		assert.Contains(t, fail.Fields, "descripcion")
	})
}

func TestSupervisor(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.app.CreateAssistant(t, "1204567890", "Ana Vera", "ana.vera@uteq.edu.ec")
	carla := e.app.CreateAssistant(t, "1309876543", "Carla Ruiz", "carla.ruiz@uteq.edu.ec")
	luis := e.app.CreateSupervisor(t, "0912345678", "Luis Mora", "luis.mora@uteq.edu.ec")
	pAna := e.app.CreatePlacement(t, ana.Cedula, luis.Cedula)
	e.app.CreatePlacement(t, carla.Cedula, luis.Cedula)

	_, asAna := e.login(t, account.RoleAssistant, ana.Email)
	_, err := asAna.CreateActivity(ctx, forms.ActivityForm{PlacementID: pAna.ID, Date: "2024-03-12", Description: "Reunión inicial"}.New())
	if !assert.NoError(t, err) {
		return
	}

	sess, client := e.login(t, account.RoleSupervisor, luis.Email)
	d := NewSupervisor(client, e.logger, sess, e.app.Conf.Portal.PollInterval)
	if !assert.NoError(t, d.Refresh(ctx)) {
		return
	}

	rows, open, at := d.Snapshot()
	assert.False(t, open)
	assert.False(t, at.IsZero())
	if assert.Len(t, rows, 2) {
		names := map[string]int{}
		for _, r := range rows {
			names[r.AssistantName] = len(r.Activities)
		}
		assert.Equal(t, map[string]int{"Ana Vera": 1, "Carla Ruiz": 0}, names)
	}

	open, err = d.ToggleWindow(ctx)
	assert.NoError(t, err)
	assert.True(t, open)
	open, err = asAna.Window(ctx)
	assert.NoError(t, err)
	assert.True(t, open)

	open, err = d.ToggleWindow(ctx)
	assert.NoError(t, err)
	assert.False(t, open)

	t.Run("renewed session is used", func(t *testing.T) {
		var renewals int
		renewing := NewSupervisor(api.New("http://127.0.0.1:1", nil), e.logger, session.Session{ID: sess.ID}, time.Second)
		renewing.Renew = func(_ context.Context, s session.Session) (session.Session, SupervisorClient, error) {
			renewals++
			assert.Equal(t, sess.ID, s.ID)
			return sess, client, nil
		}
		assert.NoError(t, renewing.Refresh(ctx))
		rows, _, _ := renewing.Snapshot()
		assert.Len(t, rows, 2)
		assert.Equal(t, 1, renewals)
	})

	t.Run("failed renewal keeps the session", func(t *testing.T) {
		kept := NewSupervisor(client, e.logger, sess, time.Second)
		kept.Renew = func(context.Context, session.Session) (session.Session, SupervisorClient, error) {
			return session.Session{}, nil, errors.New("refresh expired")
		}
		assert.NoError(t, kept.Refresh(ctx))
		rows, _, _ := kept.Snapshot()
		assert.Len(t, rows, 2)
		assert.Contains(t, e.logs.String(), "renewing session")
	})

	t.Run("failed refresh keeps the snapshot", func(t *testing.T) {
		offline := NewSupervisor(api.New("http://127.0.0.1:1", nil), e.logger, sess, time.Second)
		assert.Equal(t, MsgNetwork, failure(t, offline.Refresh(ctx)).Message)
		rows, _, at := offline.Snapshot()
		assert.Empty(t, rows)
		assert.True(t, at.IsZero())
	})
}

type approveErrClient struct {
	EvaluationClient
	err error
}

func (c approveErrClient) Approve(context.Context, placement.NewApproval) (placement.Approval, error) {
	return placement.Approval{}, c.err
}

func TestEvaluation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	ana := e.app.CreateAssistant(t, "1204567890", "Ana Vera", "ana.vera@uteq.edu.ec")
	carla := e.app.CreateAssistant(t, "1309876543", "Carla Ruiz", "carla.ruiz@uteq.edu.ec")
	luis := e.app.CreateSupervisor(t, "0912345678", "Luis Mora", "luis.mora@uteq.edu.ec")
	pAna := e.app.CreatePlacement(t, ana.Cedula, luis.Cedula)
	pCarla := e.app.CreatePlacement(t, carla.Cedula, luis.Cedula)
	sess, client := e.login(t, account.RoleSupervisor, luis.Email)

	d := NewEvaluation(client, e.logger, sess)
	assert.Equal(t, MsgNoPeriod, failure(t, d.Load(ctx)).Message)

	e.app.CreatePeriod(t, "2024-1S", true)
	if !assert.NoError(t, d.Load(ctx)) {
		return
	}
	assert.Equal(t, "2024-1S", d.Period())
	assert.False(t, d.WindowOpen())
	assert.Empty(t, d.Approved())
	assert.Len(t, d.Pending(), 2)

	assert.Equal(t, MsgWindowClosed, failure(t, d.Approve(ctx, pAna.ID)).Message)
	assert.Len(t, d.Pending(), 2)

	e.app.SetWindow(t, true)
	emailsvc.ResetSentMessages()

	// loaded before any approval goes through, so it goes stale
	stale := NewEvaluation(client, e.logger, sess)
	if !assert.NoError(t, stale.Load(ctx)) {
		return
	}

	t.Run("permission denied keeps the window open", func(t *testing.T) {
		denied := NewEvaluation(approveErrClient{
			EvaluationClient: client,
			err:              &api.APIError{Status: http.StatusForbidden, Message: "permission denied"},
		}, e.logger, sess)
		if !assert.NoError(t, denied.Load(ctx)) {
			return
		}
		assert.Equal(t, MsgForbidden, failure(t, denied.Approve(ctx, pAna.ID)).Message)
		assert.True(t, denied.WindowOpen())
		assert.Len(t, denied.Pending(), 2)
	})

	t.Run("approve and notify", func(t *testing.T) {
		assert.NoError(t, d.Approve(ctx, pAna.ID))
		if assert.Len(t, d.Approved(), 1) {
			assert.Equal(t, pAna.ID, d.Approved()[0].ID)
		}
		assert.Len(t, d.Pending(), 1)

		sent := emailsvc.SentMessages()
		if assert.Len(t, sent, 1) {
			assert.Equal(t, ana.Email, sent[0].To[0].Address)
			assert.Contains(t, sent[0].HTMLContent, "Ana Vera")
			assert.Contains(t, sent[0].HTMLContent, "2024-1S")
		}
	})

	t.Run("already approved", func(t *testing.T) {
		err := stale.Approve(ctx, pAna.ID)
		assert.Equal(t, MsgAlreadyApproved, failure(t, err).Message)
		if assert.Len(t, stale.Approved(), 1) {
			assert.Equal(t, pAna.ID, stale.Approved()[0].ID)
		}
		if assert.Len(t, stale.Pending(), 1) {
			assert.Equal(t, pCarla.ID, stale.Pending()[0].ID)
		}
		assert.Len(t, emailsvc.SentMessages(), 1)
	})

	t.Run("unknown placement", func(t *testing.T) {
		assert.Equal(t, MsgNotFound, failure(t, d.Approve(ctx, pAna.ID)).Message)
	})

	t.Run("notification failure is not surfaced", func(t *testing.T) {
		e.app.Mail.FailWith(errors.New("smtp down"))
		defer e.app.Mail.FailWith(nil)

		assert.NoError(t, d.Approve(ctx, pCarla.ID))
		assert.Empty(t, d.Pending())
		assert.Contains(t, e.logs.String(), "approval notice")
	})

	t.Run("reload keeps the partition", func(t *testing.T) {
		assert.NoError(t, d.Load(ctx))
		assert.Len(t, d.Approved(), 2)
		assert.Empty(t, d.Pending())
	})
}
