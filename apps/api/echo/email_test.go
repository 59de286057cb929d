package echoapi_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/ayudantias/apps/api/echo"
	"github.com/trezcool/ayudantias/services/email"
)

func TestSendEmailAPI(t *testing.T) {
	app := newApp(t)
	luis := app.CreateSupervisor(t, "0912345678", "Luis Mora", "luis.mora@uteq.edu.ec")
	token := app.Token(t, luis)
	emailsvc.ResetSentMessages()

	body := marchallObj(t, SendEmailRequest{
		To:      "ana.vera@uteq.edu.ec",
		Subject: "Ayudantía aprobada",
		HTML:    "<p>Tu ayudantía fue aprobada.</p>",
	})

	runHTTPTests(t, app, []httpTest{
		{
			name:     "needs a session",
			method:   http.MethodPost,
			path:     "/api/send-email",
			body:     body,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "invalid recipient",
			method:   http.MethodPost,
			path:     "/api/send-email",
			body:     marchallObj(t, SendEmailRequest{To: "nope", Subject: "x", HTML: "<p>x</p>"}),
			token:    token,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "relay",
			method:   http.MethodPost,
			path:     "/api/send-email",
			body:     body,
			token:    token,
			wantCode: http.StatusOK,
			wantData: []byte(`{"success": true}`),
		},
	})

	sent := emailsvc.SentMessages()
	if assert.Len(t, sent, 1) {
		assert.Equal(t, "ana.vera@uteq.edu.ec", sent[0].To[0].Address)
		assert.Equal(t, "Ayudantía aprobada", sent[0].Subject)
		assert.Equal(t, "<p>Tu ayudantía fue aprobada.</p>", sent[0].HTMLContent)
	}

	t.Run("delivery failure", func(t *testing.T) {
		app.Mail.FailWith(errors.New("smtp down"))
		defer app.Mail.FailWith(nil)

		req, rec := newAuthRequest(http.MethodPost, "/api/send-email", token, body)
		app.Server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadGateway,
			wantData: marchallObj(t, httpErr{Error: "the email could not be sent"}),
		}, rec)
		assert.True(t, strings.Contains(app.Logs.String(), "smtp down"))
	})
}
