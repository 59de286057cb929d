package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/supervisor"
	"github.com/trezcool/ayudantias/services/email"
	"github.com/trezcool/ayudantias/tests"
)

func newAssistantBody(t *testing.T, cedula, name, email, faculty, major string) []byte {
	return marchallObj(t, assistant.NewAssistant{
		Cedula:          cedula,
		Name:            name,
		Email:           email,
		Level:           "Sexto",
		Faculty:         faculty,
		Major:           major,
		Password:        testutil.Password,
		PasswordConfirm: testutil.Password,
	})
}

func TestAssistantAPI_Create(t *testing.T) {
	app := newApp(t)
	adm := app.CreateAdmin(t, "admin@uteq.edu.ec", "Administrador")
	app.CreateAssistant(t, "1204567890", "Ana Vera", "ana.vera@uteq.edu.ec")
	token := app.Token(t, adm)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "duplicate cedula",
			method:   http.MethodPost,
			path:     "/ayudantes",
			body:     newAssistantBody(t, "1204567890", "Otra Persona", "otra@uteq.edu.ec", testutil.FacultyWithMajors, testutil.Major),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"cedula": assistant.ErrCedulaExists.Error()}),
		},
		{
			name:     "duplicate email",
			method:   http.MethodPost,
			path:     "/ayudantes",
			body:     newAssistantBody(t, "1299999999", "Otra Persona", "ana.vera@uteq.edu.ec", testutil.FacultyWithMajors, testutil.Major),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"correo": assistant.ErrEmailExists.Error()}),
		},
		{
			name:     "foreign email domain",
			method:   http.MethodPost,
			path:     "/ayudantes",
			body:     newAssistantBody(t, "1299999999", "Otra Persona", "otra@gmail.com", testutil.FacultyWithMajors, testutil.Major),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"correo": "an institutional email is required"}),
		},
		{
			name:     "bad cedula",
			method:   http.MethodPost,
			path:     "/ayudantes",
			body:     newAssistantBody(t, "12AB", "Otra Persona", "otra@uteq.edu.ec", testutil.FacultyWithMajors, testutil.Major),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"cedula": "must be a 10 digit national ID"}),
		},
		{
			name:     "major required",
			method:   http.MethodPost,
			path:     "/ayudantes",
			body:     newAssistantBody(t, "1299999999", "Otra Persona", "otra@uteq.edu.ec", testutil.FacultyWithMajors, ""),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"carrera": "a major of the selected faculty is required"}),
		},
		{
			name:     "faculty without majors",
			method:   http.MethodPost,
			path:     "/ayudantes",
			body:     newAssistantBody(t, "1299999999", "Otra Persona", "otra@uteq.edu.ec", testutil.FacultyNoMajors, testutil.Major),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"carrera": "the selected faculty has no majors"}),
		},
		{
			name:     "weak password",
			method:   http.MethodPost,
			path:     "/ayudantes",
			body:     []byte(`{"cedula":"1299999999","nombre":"Otra Persona","correo":"otra@uteq.edu.ec","nivel":"Sexto","facultad":"` + testutil.FacultyNoMajors + `","password":"abc","password_confirm":"abc"}`),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password": "password must contain at least 8 characters"}),
		},
	})

	t.Run("success", func(t *testing.T) {
		emailsvc.ResetSentMessages()
		body := newAssistantBody(t, "1299999999", "Otra Persona", "OTRA@uteq.edu.ec", testutil.FacultyNoMajors, "")
		req, rec := newAuthRequest(http.MethodPost, "/ayudantes", token, body)
		app.Server.ServeHTTP(rec, req)
		if !assert.Equal(t, http.StatusCreated, rec.Code) {
			return
		}
		var got assistant.Assistant
		decode(t, rec, &got)
		assert.Equal(t, "1299999999", got.Cedula)
		assert.Equal(t, "otra@uteq.edu.ec", got.Email)
		assert.NotContains(t, rec.Body.String(), "password")

		sent := emailsvc.SentMessages()
		if assert.Len(t, sent, 1) {
			assert.Equal(t, "otra@uteq.edu.ec", sent[0].To[0].Address)
		}

		// appears after refresh
		req, rec = newAuthRequest(http.MethodGet, "/ayudantes?search=otra", token)
		app.Server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallList(t, got)}, rec)
	})
}

func TestAssistantAPI_Query(t *testing.T) {
	app := newApp(t)
	adm := app.CreateAdmin(t, "admin@uteq.edu.ec", "Administrador")
	sup := app.CreateSupervisor(t, "0912345678", "Luis Mora", "luis.mora@uteq.edu.ec")
	ana := app.CreateAssistant(t, "1204567890", "Ana Vera", "ana.vera@uteq.edu.ec")
	beto := app.CreateAssistant(t, "1300000001", "Beto Alava", "beto.alava@uteq.edu.ec")
	token := app.Token(t, adm)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "all sorted by name",
			method:   http.MethodGet,
			path:     "/ayudantes",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallList(t, ana, beto),
		},
		{
			name:     "ordering",
			method:   http.MethodGet,
			path:     "/ayudantes?ordering=-cedula",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallList(t, beto, ana),
		},
		{
			name:     "search name ignores case",
			method:   http.MethodGet,
			path:     "/ayudantes?search=ALAVA",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallList(t, beto),
		},
		{
			name:     "search cedula substring",
			method:   http.MethodGet,
			path:     "/ayudantes?search=4567",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallList(t, ana),
		},
		{
			name:     "no match",
			method:   http.MethodGet,
			path:     "/ayudantes?search=zzz",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
		{
			name:     "supervisor can list",
			method:   http.MethodGet,
			path:     "/ayudantes?search=ana",
			token:    app.Token(t, sup),
			wantCode: http.StatusOK,
			wantData: marchallList(t, ana),
		},
		{
			name:     "self detail",
			method:   http.MethodGet,
			path:     "/ayudantes/1204567890",
			token:    app.Token(t, ana),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, ana),
		},
		{
			name:     "other detail hidden",
			method:   http.MethodGet,
			path:     "/ayudantes/1300000001",
			token:    app.Token(t, ana),
			wantCode: http.StatusNotFound,
		},
		{
			name:     "by email",
			method:   http.MethodGet,
			path:     "/ayudantes/correo/ana.vera@uteq.edu.ec",
			token:    app.Token(t, ana),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, ana),
		},
		{
			name:     "unknown",
			method:   http.MethodGet,
			path:     "/ayudantes/1999999999",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	})
}

func TestAssistantAPI_Update(t *testing.T) {
	app := newApp(t)
	adm := app.CreateAdmin(t, "admin@uteq.edu.ec", "Administrador")
	app.CreateAssistant(t, "1204567890", "Ana Vera", "ana.vera@uteq.edu.ec")
	app.CreateAssistant(t, "1300000001", "Beto Alava", "beto.alava@uteq.edu.ec")
	token := app.Token(t, adm)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "email taken",
			method:   http.MethodPut,
			path:     "/ayudantes",
			body:     marchallObj(t, assistant.UpdateAssistant{Cedula: "1204567890", Email: "beto.alava@uteq.edu.ec"}),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"correo": assistant.ErrEmailExists.Error()}),
		},
		{
			name:     "unknown",
			method:   http.MethodPut,
			path:     "/ayudantes",
			body:     marchallObj(t, assistant.UpdateAssistant{Cedula: "1999999999", Name: "Nadie"}),
			token:    token,
			wantCode: http.StatusNotFound,
		},
	})

	body := marchallObj(t, assistant.UpdateAssistant{Cedula: "1204567890", Name: "Ana María Vera", Major: testutil.OtherMajor})
	req, rec := newAuthRequest(http.MethodPut, "/ayudantes", token, body)
	app.Server.ServeHTTP(rec, req)
	if assert.Equal(t, http.StatusOK, rec.Code) {
		var got assistant.Assistant
		decode(t, rec, &got)
		assert.Equal(t, "Ana María Vera", got.Name)
		assert.Equal(t, "ana.vera@uteq.edu.ec", got.Email)
		assert.Equal(t, testutil.OtherMajor, got.Major)
	}
}

func TestSupervisorAPI(t *testing.T) {
	app := newApp(t)
	adm := app.CreateAdmin(t, "admin@uteq.edu.ec", "Administrador")
	luis := app.CreateSupervisor(t, "0912345678", "Luis Mora", "luis.mora@uteq.edu.ec")
	token := app.Token(t, adm)

	newSup := supervisor.NewSupervisor{
		Cedula:          "0900000002",
		Name:            "Marta Ruiz",
		Email:           "marta.ruiz@uteq.edu.ec",
		Password:        testutil.Password,
		PasswordConfirm: testutil.Password,
	}
	dupCedula := newSup
	dupCedula.Cedula = luis.Cedula

	runHTTPTests(t, app, []httpTest{
		{
			name:     "duplicate cedula",
			method:   http.MethodPost,
			path:     "/supervisores",
			body:     marchallObj(t, dupCedula),
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"cedula": supervisor.ErrCedulaExists.Error()}),
		},
		{
			name:     "create",
			method:   http.MethodPost,
			path:     "/supervisores",
			body:     marchallObj(t, newSup),
			token:    token,
			wantCode: http.StatusCreated,
		},
		{
			name:     "supervisors cannot list",
			method:   http.MethodGet,
			path:     "/supervisores",
			token:    app.Token(t, luis),
			wantCode: http.StatusForbidden,
		},
		{
			name:     "self by email",
			method:   http.MethodGet,
			path:     "/supervisores/correo/luis.mora@uteq.edu.ec",
			token:    app.Token(t, luis),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, luis),
		},
		{
			name:     "other by email hidden",
			method:   http.MethodGet,
			path:     "/supervisores/correo/marta.ruiz@uteq.edu.ec",
			token:    app.Token(t, luis),
			wantCode: http.StatusNotFound,
		},
	})

	req, rec := newAuthRequest(http.MethodGet, "/supervisores?search=mar", token)
	app.Server.ServeHTTP(rec, req)
	var got []supervisor.Supervisor
	decode(t, rec, &got)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "Marta Ruiz", got[0].Name)
	}
}
