package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/portal/api"
	"github.com/trezcool/ayudantias/portal/session"
	"github.com/trezcool/ayudantias/portal/views"
)

type EvaluationClient interface {
	CurrentPeriod(ctx context.Context) (*academic.Period, error)
	SupervisorPlacements(ctx context.Context, cedula string) ([]placement.Placement, error)
	Approvals(ctx context.Context, period string) ([]placement.Approval, error)
	Approve(ctx context.Context, na placement.NewApproval) (placement.Approval, error)
	Window(ctx context.Context) (bool, error)
	Assistant(ctx context.Context, cedula string) (assistant.Assistant, error)
	SendEmail(ctx context.Context, to, subject, html string) error
}

const approvalSubject = "Ayudantía aprobada"

var approvalTmpl = template.Must(template.New("approval").Parse(
	`<p>Hola {{.Name}},</p>` +
		`<p>Tu ayudantía <strong>{{.Position}}</strong> fue aprobada para el periodo {{.Period}}.</p>`,
))

// Evaluation splits the supervised placements of the current period into
// approved and pending, and approves them.
type Evaluation struct {
	client EvaluationClient
	logger core.Logger
	sess   session.Session

	mu         sync.RWMutex
	period     *academic.Period
	windowOpen bool
	approved   []placement.Placement
	pending    []placement.Placement
}

func NewEvaluation(client EvaluationClient, logger core.Logger, sess session.Session) *Evaluation {
	return &Evaluation{client: client, logger: logger, sess: sess}
}

func (d *Evaluation) Load(ctx context.Context) error {
	period, err := d.client.CurrentPeriod(ctx)
	if err != nil {
		return fail(err)
	}
	if period == nil {
		return &Failure{Message: MsgNoPeriod}
	}
	placements, err := d.client.SupervisorPlacements(ctx, d.sess.ID)
	if err != nil {
		return fail(err)
	}
	approvals, err := d.client.Approvals(ctx, period.Name)
	if err != nil {
		return fail(err)
	}
	open, err := d.client.Window(ctx)
	if err != nil {
		return fail(err)
	}

	approved, pending := views.Partition(placements, approvals, period.Name)
	d.mu.Lock()
	d.period, d.windowOpen = period, open
	d.approved, d.pending = approved, pending
	d.mu.Unlock()
	return nil
}

func (d *Evaluation) Period() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.period == nil {
		return ""
	}
	return d.period.Name
}

func (d *Evaluation) WindowOpen() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.windowOpen
}

func (d *Evaluation) Approved() []placement.Placement {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]placement.Placement(nil), d.approved...)
}

func (d *Evaluation) Pending() []placement.Placement {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]placement.Placement(nil), d.pending...)
}

// Approve approves the pending placement id for the current period, notifies its
// assistant and moves it to the approved list. A failed notification is only logged.
func (d *Evaluation) Approve(ctx context.Context, id int) error {
	d.mu.RLock()
	period, idx := d.period, d.indexPending(id)
	d.mu.RUnlock()
	if period == nil {
		return &Failure{Message: MsgNoPeriod}
	}
	if idx < 0 {
		return &Failure{Message: MsgNotFound}
	}

	_, err := d.client.Approve(ctx, placement.NewApproval{PlacementID: id, Period: period.Name})
	var apiErr *api.APIError
	switch {
	case err == nil:
	case errors.As(err, &apiErr) && apiErr.Has("ayudantia_id"):
		d.move(id)
		return &Failure{Message: MsgAlreadyApproved, Err: err}
	case errors.As(err, &apiErr) && windowClosed(apiErr):
		d.mu.Lock()
		d.windowOpen = false
		d.mu.Unlock()
		return &Failure{Message: MsgWindowClosed, Err: err}
	default:
		return fail(err)
	}

	plc := d.move(id)
	d.notify(ctx, plc, period.Name)
	return nil
}

// windowClosed tells a closed evaluation window apart from the other 403s, such as
// a placement under another supervisor.
func windowClosed(apiErr *api.APIError) bool {
	return apiErr.Status == http.StatusForbidden && apiErr.Message == placement.ErrWindowClosed.Error()
}

func (d *Evaluation) indexPending(id int) int {
	for i, p := range d.pending {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (d *Evaluation) move(id int) placement.Placement {
	d.mu.Lock()
	defer d.mu.Unlock()
	i := d.indexPending(id)
	if i < 0 {
		return placement.Placement{ID: id}
	}
	plc := d.pending[i]
	d.pending = append(d.pending[:i:i], d.pending[i+1:]...)
	d.approved = append(d.approved, plc)
	return plc
}

func (d *Evaluation) notify(ctx context.Context, plc placement.Placement, period string) {
	a, err := d.client.Assistant(ctx, plc.AssistantCedula)
	if err != nil {
		d.logger.Warn(fmt.Sprintf("approval notice for placement %d: %v", plc.ID, err))
		return
	}

	var body bytes.Buffer
	data := struct{ Name, Position, Period string }{a.Name, plc.Position, period}
	if err = approvalTmpl.Execute(&body, data); err != nil {
		d.logger.Error(fmt.Sprintf("approval notice for placement %d: %v", plc.ID, err), err)
		return
	}
	if err = d.client.SendEmail(ctx, a.Email, approvalSubject, body.String()); err != nil {
		d.logger.Warn(fmt.Sprintf("approval notice for placement %d: %v", plc.ID, err))
	}
}
