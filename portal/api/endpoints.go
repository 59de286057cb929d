package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/core/supervisor"
)

var loginPaths = map[string]string{
	account.RoleAdmin:      "/admin/login",
	account.RoleAssistant:  "/ayudantes/login",
	account.RoleSupervisor: "/supervisores/login",
}

type (
	credentials struct {
		Email    string `json:"correo"`
		Password string `json:"password"`
	}

	// Login is the answer to a successful login or token refresh.
	Login struct {
		Token string `json:"token"`
		Role  string `json:"rol"`
		Email string `json:"correo"`
		Name  string `json:"nombre"`
		ID    string `json:"id"`
	}

	passwordReset struct {
		Email string `json:"correo"`
		Role  string `json:"rol"`
	}

	window struct {
		Open bool `json:"abierta"`
	}

	objective struct {
		Objective string `json:"objetivo"`
	}

	emailRequest struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		HTML    string `json:"html"`
	}

	uploadResponse struct {
		URL string `json:"url"`
	}
)

// Accounts

func (c *Client) Login(ctx context.Context, role, email, pwd string) (Login, error) {
	path, ok := loginPaths[role]
	if !ok {
		return Login{}, account.ErrUnknownRole
	}
	var login Login
	err := c.do(ctx, rest.Post, path, nil, credentials{Email: email, Password: pwd}, &login)
	return login, err
}

func (c *Client) RefreshToken(ctx context.Context) (Login, error) {
	var login Login
	err := c.do(ctx, rest.Post, "/auth/token-refresh", nil, nil, &login)
	return login, err
}

func (c *Client) RequestPasswordReset(ctx context.Context, role, email string) error {
	return c.do(ctx, rest.Post, "/auth/password-reset", nil, passwordReset{Email: email, Role: role}, nil)
}

// Reference data

func (c *Client) Faculties(ctx context.Context) ([]academic.Faculty, error) {
	var faculties []academic.Faculty
	err := c.do(ctx, rest.Get, "/facultades", nil, nil, &faculties)
	return faculties, err
}

func (c *Client) Majors(ctx context.Context, faculty string) ([]academic.Major, error) {
	var majors []academic.Major
	err := c.do(ctx, rest.Get, "/facultades/"+seg(faculty)+"/carreras", nil, nil, &majors)
	return majors, err
}

// CurrentPeriod returns nil when no period is current.
func (c *Client) CurrentPeriod(ctx context.Context) (*academic.Period, error) {
	var p academic.Period
	if err := c.do(ctx, rest.Get, "/periodos/actual", nil, nil, &p); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Assistants

func (c *Client) Assistants(ctx context.Context, search string) ([]assistant.Assistant, error) {
	var query map[string]string
	if search != "" {
		query = map[string]string{"search": search}
	}
	var assistants []assistant.Assistant
	err := c.do(ctx, rest.Get, "/ayudantes", query, nil, &assistants)
	return assistants, err
}

func (c *Client) Assistant(ctx context.Context, cedula string) (assistant.Assistant, error) {
	var a assistant.Assistant
	err := c.do(ctx, rest.Get, "/ayudantes/"+seg(cedula), nil, nil, &a)
	return a, err
}

func (c *Client) AssistantByEmail(ctx context.Context, email string) (assistant.Assistant, error) {
	var a assistant.Assistant
	err := c.do(ctx, rest.Get, "/ayudantes/correo/"+seg(email), nil, nil, &a)
	return a, err
}

func (c *Client) CreateAssistant(ctx context.Context, na assistant.NewAssistant) (assistant.Assistant, error) {
	var a assistant.Assistant
	err := c.do(ctx, rest.Post, "/ayudantes", nil, na, &a)
	return a, err
}

func (c *Client) UpdateAssistant(ctx context.Context, ua assistant.UpdateAssistant) (assistant.Assistant, error) {
	var a assistant.Assistant
	err := c.do(ctx, rest.Put, "/ayudantes", nil, ua, &a)
	return a, err
}

// Supervisors

func (c *Client) Supervisors(ctx context.Context, search string) ([]supervisor.Supervisor, error) {
	var query map[string]string
	if search != "" {
		query = map[string]string{"search": search}
	}
	var supervisors []supervisor.Supervisor
	err := c.do(ctx, rest.Get, "/supervisores", query, nil, &supervisors)
	return supervisors, err
}

func (c *Client) SupervisorByEmail(ctx context.Context, email string) (supervisor.Supervisor, error) {
	var s supervisor.Supervisor
	err := c.do(ctx, rest.Get, "/supervisores/correo/"+seg(email), nil, nil, &s)
	return s, err
}

func (c *Client) CreateSupervisor(ctx context.Context, ns supervisor.NewSupervisor) (supervisor.Supervisor, error) {
	var s supervisor.Supervisor
	err := c.do(ctx, rest.Post, "/supervisores", nil, ns, &s)
	return s, err
}

// Placements

func (c *Client) Placements(ctx context.Context) ([]placement.Placement, error) {
	var placements []placement.Placement
	err := c.do(ctx, rest.Get, "/ayudantias", nil, nil, &placements)
	return placements, err
}

func (c *Client) CreatePlacement(ctx context.Context, np placement.NewPlacement) (placement.Placement, error) {
	var p placement.Placement
	err := c.do(ctx, rest.Post, "/ayudantias", nil, np, &p)
	return p, err
}

// PlacementByAssistant returns nil when the assistant has no placement yet.
func (c *Client) PlacementByAssistant(ctx context.Context, cedula string) (*placement.Placement, error) {
	var p placement.Placement
	if err := c.do(ctx, rest.Get, "/ayudantias/cedula/"+seg(cedula), nil, nil, &p); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (c *Client) SupervisorPlacements(ctx context.Context, cedula string) ([]placement.Placement, error) {
	var placements []placement.Placement
	err := c.do(ctx, rest.Get, "/ayudantias/supervisor/"+seg(cedula), nil, nil, &placements)
	return placements, err
}

func (c *Client) Objective(ctx context.Context, placementID int) (string, error) {
	var obj objective
	err := c.do(ctx, rest.Get, "/ayudantias/"+strconv.Itoa(placementID)+"/objetivo", nil, nil, &obj)
	return obj.Objective, err
}

func (c *Client) UpdateObjective(ctx context.Context, placementID int, text string) (placement.Placement, error) {
	var p placement.Placement
	err := c.do(ctx, rest.Put, "/ayudantias/"+strconv.Itoa(placementID)+"/objetivo", nil, objective{Objective: text}, &p)
	return p, err
}

// Activities

func (c *Client) Activities(ctx context.Context, placementID int) ([]placement.Activity, error) {
	var activities []placement.Activity
	err := c.do(ctx, rest.Get, "/actividades/ayudantia/"+strconv.Itoa(placementID), nil, nil, &activities)
	return activities, err
}

func (c *Client) CreateActivity(ctx context.Context, na placement.NewActivity) (placement.Activity, error) {
	var a placement.Activity
	err := c.do(ctx, rest.Post, "/actividades", nil, na, &a)
	return a, err
}

// Approvals

// Approvals lists the approvals of period, or all of them when period is empty.
func (c *Client) Approvals(ctx context.Context, period string) ([]placement.Approval, error) {
	path := "/aprobado"
	if period != "" {
		path += "/periodo/" + seg(period)
	}
	var approvals []placement.Approval
	err := c.do(ctx, rest.Get, path, nil, nil, &approvals)
	return approvals, err
}

func (c *Client) Approve(ctx context.Context, na placement.NewApproval) (placement.Approval, error) {
	var a placement.Approval
	err := c.do(ctx, rest.Post, "/aprobado", nil, na, &a)
	return a, err
}

func (c *Client) Window(ctx context.Context) (bool, error) {
	var w window
	err := c.do(ctx, rest.Get, "/ventana-aprob", nil, nil, &w)
	return w.Open, err
}

func (c *Client) SetWindow(ctx context.Context, open bool) (bool, error) {
	var w window
	err := c.do(ctx, rest.Put, "/ventana-aprob", nil, window{Open: open}, &w)
	return w.Open, err
}

// Email & files

func (c *Client) SendEmail(ctx context.Context, to, subject, html string) error {
	return c.do(ctx, rest.Post, "/api/send-email", nil, emailRequest{To: to, Subject: subject, HTML: html}, nil)
}

// Upload stores an evidence file and returns its /uploads path.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", errors.Wrap(err, "creating form file")
	}
	if _, err = io.Copy(part, r); err != nil {
		return "", errors.Wrap(err, "reading evidence")
	}
	if err = w.Close(); err != nil {
		return "", errors.Wrap(err, "closing form")
	}

	resp, err := c.send(ctx, c.request(rest.Post, "/uploads", nil, body.Bytes(), w.FormDataContentType()))
	if err != nil {
		return "", err
	}
	var up uploadResponse
	if err = decodeString(resp.Body, &up); err != nil {
		return "", &TransportError{Op: "POST /uploads", Err: err}
	}
	return up.URL, nil
}

// Download fetches an /uploads file.
func (c *Client) Download(ctx context.Context, path string) ([]byte, string, error) {
	resp, err := c.send(ctx, c.request(rest.Get, path, nil, nil, ""))
	if err != nil {
		return nil, "", err
	}
	var ctype string
	if v := resp.Headers["Content-Type"]; len(v) > 0 {
		ctype = v[0]
	}
	return []byte(resp.Body), ctype, nil
}
