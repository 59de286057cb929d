package dashboard

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/portal/session"
)

type SupervisorClient interface {
	SupervisorPlacements(ctx context.Context, cedula string) ([]placement.Placement, error)
	Assistant(ctx context.Context, cedula string) (assistant.Assistant, error)
	Activities(ctx context.Context, placementID int) ([]placement.Activity, error)
	Window(ctx context.Context) (bool, error)
	SetWindow(ctx context.Context, open bool) (bool, error)
}

// Row is a supervised placement with its assistant's name and activities.
type Row struct {
	placement.Placement
	AssistantName string
	Activities    []placement.Activity
}

// Supervisor is the portal of the logged in supervisor.
type Supervisor struct {
	client   SupervisorClient
	logger   core.Logger
	sess     session.Session
	interval time.Duration

	// Renew, if set, is called before every refresh and may swap in a renewed
	// session with a client acting on its behalf.
	Renew func(ctx context.Context, sess session.Session) (session.Session, SupervisorClient, error)

	mu          sync.RWMutex
	rows        []Row
	windowOpen  bool
	refreshedAt time.Time
}

func NewSupervisor(client SupervisorClient, logger core.Logger, sess session.Session, interval time.Duration) *Supervisor {
	return &Supervisor{client: client, logger: logger, sess: sess, interval: interval}
}

// Refresh reloads the placements, their details and the window state.
// On failure the previous snapshot is kept.
func (d *Supervisor) Refresh(ctx context.Context) error {
	client, sess := d.renew(ctx)
	var (
		placements []placement.Placement
		open       bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		placements, err = client.SupervisorPlacements(gctx, sess.ID)
		return err
	})
	g.Go(func() (err error) {
		open, err = client.Window(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(err)
	}

	rows := make([]Row, len(placements))
	g, gctx = errgroup.WithContext(ctx)
	for i := range placements {
		row := &rows[i]
		row.Placement = placements[i]
		g.Go(func() error {
			a, err := client.Assistant(gctx, row.AssistantCedula)
			if err != nil {
				return err
			}
			row.AssistantName = a.Name
			return nil
		})
		g.Go(func() error {
			acts, err := client.Activities(gctx, row.ID)
			if err != nil {
				return err
			}
			row.Activities = acts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fail(err)
	}

	d.mu.Lock()
	d.rows, d.windowOpen, d.refreshedAt = rows, open, time.Now()
	d.mu.Unlock()
	return nil
}

// renew returns the client and session to refresh with. A failed renewal keeps the current ones.
func (d *Supervisor) renew(ctx context.Context) (SupervisorClient, session.Session) {
	d.mu.RLock()
	client, sess := d.client, d.sess
	d.mu.RUnlock()
	if d.Renew == nil {
		return client, sess
	}

	s, c, err := d.Renew(ctx, sess)
	if err != nil {
		d.logger.Warn("renewing session", err)
		return client, sess
	}
	d.mu.Lock()
	d.client, d.sess = c, s
	d.mu.Unlock()
	return c, s
}

// Snapshot returns the rows and window state of the last successful refresh.
func (d *Supervisor) Snapshot() (rows []Row, windowOpen bool, refreshedAt time.Time) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]Row(nil), d.rows...), d.windowOpen, d.refreshedAt
}

// ToggleWindow flips the evaluation window and returns its new state.
func (d *Supervisor) ToggleWindow(ctx context.Context) (bool, error) {
	d.mu.RLock()
	want := !d.windowOpen
	d.mu.RUnlock()
	return d.SetWindow(ctx, want)
}

func (d *Supervisor) SetWindow(ctx context.Context, open bool) (bool, error) {
	d.mu.RLock()
	client := d.client
	d.mu.RUnlock()
	open, err := client.SetWindow(ctx, open)
	if err != nil {
		return false, fail(err)
	}
	d.mu.Lock()
	d.windowOpen = open
	d.mu.Unlock()
	return open, nil
}

// Watch refreshes every interval until ctx is done, calling onRefresh after each refresh.
func (d *Supervisor) Watch(ctx context.Context, onRefresh func(err error)) error {
	p := NewPoller(d.interval, d.Refresh, d.logger)
	p.OnRefresh = onRefresh
	return p.Run(ctx)
}
