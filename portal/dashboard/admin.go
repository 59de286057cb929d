package dashboard

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/academic"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/core/supervisor"
	"github.com/trezcool/ayudantias/portal/forms"
	"github.com/trezcool/ayudantias/portal/views"
)

type AdminClient interface {
	Assistants(ctx context.Context, search string) ([]assistant.Assistant, error)
	Supervisors(ctx context.Context, search string) ([]supervisor.Supervisor, error)
	Faculties(ctx context.Context) ([]academic.Faculty, error)
	Majors(ctx context.Context, faculty string) ([]academic.Major, error)
	CreateAssistant(ctx context.Context, na assistant.NewAssistant) (assistant.Assistant, error)
	UpdateAssistant(ctx context.Context, ua assistant.UpdateAssistant) (assistant.Assistant, error)
	CreateSupervisor(ctx context.Context, ns supervisor.NewSupervisor) (supervisor.Supervisor, error)
	CreatePlacement(ctx context.Context, np placement.NewPlacement) (placement.Placement, error)
}

// Admin lists assistants and supervisors and manages their records.
type Admin struct {
	client  AdminClient
	forms   *forms.Validator
	logger  core.Logger
	Cascade *views.MajorCascade

	mu          sync.RWMutex
	search      string
	assistants  []assistant.Assistant
	supervisors []supervisor.Supervisor
}

func NewAdmin(client AdminClient, validator *forms.Validator, logger core.Logger) *Admin {
	return &Admin{
		client:  client,
		forms:   validator,
		logger:  logger,
		Cascade: views.NewMajorCascade(client, logger),
	}
}

// Load fetches both lists.
func (d *Admin) Load(ctx context.Context) error {
	var (
		assistants  []assistant.Assistant
		supervisors []supervisor.Supervisor
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		assistants, err = d.client.Assistants(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		supervisors, err = d.client.Supervisors(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(err)
	}

	d.mu.Lock()
	d.assistants, d.supervisors = assistants, supervisors
	d.mu.Unlock()
	return nil
}

// reload refreshes the lists after a successful mutation; a failure only leaves them stale.
func (d *Admin) reload(ctx context.Context) {
	if err := d.Load(ctx); err != nil {
		d.logger.Warn("reloading lists", err)
	}
}

// SetSearch changes the search term applied to both lists.
func (d *Admin) SetSearch(term string) {
	d.mu.Lock()
	d.search = term
	d.mu.Unlock()
}

func (d *Admin) Assistants() []assistant.Assistant {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return views.FilterAssistants(d.assistants, d.search)
}

func (d *Admin) Supervisors() []supervisor.Supervisor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return views.FilterSupervisors(d.supervisors, d.search)
}

// Faculties lists the faculties for the assistant form, from the built-in catalog when offline.
func (d *Admin) Faculties(ctx context.Context) []string {
	faculties, err := d.client.Faculties(ctx)
	if err != nil {
		d.logger.Warn("fetching faculties, using built-in catalog", err)
		return views.FallbackFaculties()
	}
	names := make([]string, 0, len(faculties))
	for _, f := range faculties {
		names = append(names, f.Name)
	}
	return names
}

// CreateAssistant submits f and reloads the lists.
func (d *Admin) CreateAssistant(ctx context.Context, f forms.AssistantForm) (assistant.Assistant, error) {
	f.Edit = false
	if errs := f.Validate(d.forms, d.Cascade.Select(ctx, f.Faculty)); len(errs) > 0 {
		return assistant.Assistant{}, invalid(errs)
	}
	a, err := d.client.CreateAssistant(ctx, f.New())
	if err != nil {
		return assistant.Assistant{}, fail(err)
	}
	d.reload(ctx)
	return a, nil
}

// EditAssistant submits f for the assistant f.Cedula and reloads the lists.
func (d *Admin) EditAssistant(ctx context.Context, f forms.AssistantForm) (assistant.Assistant, error) {
	f.Edit = true
	if errs := f.Validate(d.forms, d.Cascade.Select(ctx, f.Faculty)); len(errs) > 0 {
		return assistant.Assistant{}, invalid(errs)
	}
	a, err := d.client.UpdateAssistant(ctx, f.Update())
	if err != nil {
		return assistant.Assistant{}, fail(err)
	}
	d.reload(ctx)
	return a, nil
}

// EditForm returns the edit form prefilled with the assistant's record.
func (d *Admin) EditForm(cedula string) (forms.AssistantForm, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.assistants {
		if a.Cedula == cedula {
			return forms.AssistantForm{
				Cedula:  a.Cedula,
				Name:    a.Name,
				Email:   a.Email,
				Level:   a.Level,
				Faculty: a.Faculty,
				Major:   a.Major,
				Edit:    true,
			}, true
		}
	}
	return forms.AssistantForm{}, false
}

func (d *Admin) CreateSupervisor(ctx context.Context, f forms.SupervisorForm) (supervisor.Supervisor, error) {
	if errs := f.Validate(d.forms); len(errs) > 0 {
		return supervisor.Supervisor{}, invalid(errs)
	}
	s, err := d.client.CreateSupervisor(ctx, f.New())
	if err != nil {
		return supervisor.Supervisor{}, fail(err)
	}
	d.reload(ctx)
	return s, nil
}

// AssignPlacement places an assistant under a supervisor.
func (d *Admin) AssignPlacement(ctx context.Context, f forms.PlacementForm) (placement.Placement, error) {
	if errs := f.Validate(d.forms); len(errs) > 0 {
		return placement.Placement{}, invalid(errs)
	}
	p, err := d.client.CreatePlacement(ctx, f.New())
	if err != nil {
		return placement.Placement{}, fail(err)
	}
	return p, nil
}
