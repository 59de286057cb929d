package dashboard

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/core/assistant"
	"github.com/trezcool/ayudantias/core/placement"
	"github.com/trezcool/ayudantias/portal/forms"
	"github.com/trezcool/ayudantias/portal/session"
)

type AssistantClient interface {
	Assistant(ctx context.Context, cedula string) (assistant.Assistant, error)
	PlacementByAssistant(ctx context.Context, cedula string) (*placement.Placement, error)
	UpdateObjective(ctx context.Context, placementID int, text string) (placement.Placement, error)
	Activities(ctx context.Context, placementID int) ([]placement.Activity, error)
	CreateActivity(ctx context.Context, na placement.NewActivity) (placement.Activity, error)
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

var ErrNotEditing = errors.New("the objective is not being edited")

// Assistant is the portal of the logged in assistant: own record, placement,
// objective and activities.
type Assistant struct {
	client AssistantClient
	forms  *forms.Validator
	logger core.Logger
	sess   session.Session

	Profile    assistant.Assistant
	Placement  *placement.Placement // nil until one is assigned
	Activities []placement.Activity

	editing bool
	Draft   string
}

func NewAssistant(client AssistantClient, validator *forms.Validator, logger core.Logger, sess session.Session) *Assistant {
	return &Assistant{client: client, forms: validator, logger: logger, sess: sess}
}

func (d *Assistant) Load(ctx context.Context) error {
	profile, err := d.client.Assistant(ctx, d.sess.ID)
	if err != nil {
		return fail(err)
	}
	plc, err := d.client.PlacementByAssistant(ctx, d.sess.ID)
	if err != nil {
		return fail(err)
	}

	var activities []placement.Activity
	if plc != nil {
		if activities, err = d.client.Activities(ctx, plc.ID); err != nil {
			return fail(err)
		}
	}

	d.Profile, d.Placement, d.Activities = profile, plc, activities
	return nil
}

func (d *Assistant) Editing() bool { return d.editing }

// BeginEdit starts editing the objective from its saved text.
func (d *Assistant) BeginEdit() error {
	if d.Placement == nil {
		return &Failure{Message: MsgNoPlacement}
	}
	d.editing, d.Draft = true, d.Placement.Objective
	return nil
}

func (d *Assistant) SetDraft(text string) error {
	if !d.editing {
		return ErrNotEditing
	}
	d.Draft = text
	return nil
}

// Cancel drops the draft; the saved objective is untouched.
func (d *Assistant) Cancel() {
	d.editing, d.Draft = false, ""
}

// Save stores the draft as the objective and leaves edit mode. On failure the draft is kept.
func (d *Assistant) Save(ctx context.Context) error {
	if !d.editing {
		return ErrNotEditing
	}
	plc, err := d.client.UpdateObjective(ctx, d.Placement.ID, d.Draft)
	if err != nil {
		return fail(err)
	}
	d.Placement = &plc
	d.Cancel()
	return nil
}

// RecordActivity registers an activity of the own placement.
// The file named by f.EvidenceFile, if any, is uploaded and becomes the evidence.
func (d *Assistant) RecordActivity(ctx context.Context, f forms.ActivityForm) (placement.Activity, error) {
	if d.Placement == nil {
		return placement.Activity{}, &Failure{Message: MsgNoPlacement}
	}
	f.PlacementID = d.Placement.ID
	if errs := f.Validate(d.forms); len(errs) > 0 {
		return placement.Activity{}, invalid(errs)
	}

	if f.EvidenceFile != "" {
		url, err := d.upload(ctx, f.EvidenceFile)
		if err != nil {
			return placement.Activity{}, err
		}
		f.Evidence = url
	}

	act, err := d.client.CreateActivity(ctx, f.New())
	if err != nil {
		return placement.Activity{}, fail(err)
	}
	d.Activities = append([]placement.Activity{act}, d.Activities...)
	return act, nil
}

func (d *Assistant) upload(ctx context.Context, path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", &Failure{Message: MsgInvalid, Fields: forms.Errors{"archivo": err.Error()}, Err: err}
	}
	defer file.Close()

	url, err := d.client.Upload(ctx, filepath.Base(path), file)
	if err != nil {
		return "", fail(err)
	}
	return url, nil
}
