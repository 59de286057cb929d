package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/portal/dashboard"
	"github.com/trezcool/ayudantias/portal/session"
	"github.com/trezcool/ayudantias/portal/views"
)

func (cli *commandLine) supervisorDashboard(ctx context.Context) (*dashboard.Supervisor, error) {
	sess, client, err := cli.authed(ctx, account.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	return dashboard.NewSupervisor(client, cli.logger, sess, cli.conf.Portal.PollInterval), nil
}

func (cli *commandLine) watch([]string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := cli.supervisorDashboard(ctx)
	if err != nil {
		return err
	}
	d.Renew = func(ctx context.Context, sess session.Session) (session.Session, dashboard.SupervisorClient, error) {
		sess, client := cli.renew(ctx, sess)
		return sess, client, nil
	}

	err = d.Watch(ctx, func(err error) {
		if err != nil {
			fmt.Fprintln(cli.out, describe(err))
			return
		}
		cli.printRows(d)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (cli *commandLine) printRows(d *dashboard.Supervisor) {
	rows, open, at := d.Snapshot()
	state := "cerrada"
	if open {
		state = "abierta"
	}
	fmt.Fprintf(cli.out, "\n%s  ventana de evaluación %s\n", at.Local().Format("15:04:05"), state)

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAYUDANTE\tPLAZA\tTIPO\tACTIVIDADES")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", r.ID, r.AssistantName, r.Position, r.AssistantType, len(r.Activities))
	}
	_ = w.Flush()
	for _, r := range rows {
		if len(r.Activities) == 0 {
			continue
		}
		fmt.Fprintf(cli.out, "\n%s (%d)\n", r.AssistantName, r.ID)
		for _, a := range r.Activities {
			printActivity(cli, a.ID, a.Date, a.Description, a.Evidence)
		}
	}
}

func (cli *commandLine) window(args []string) error {
	fs := cli.flagSet("window")
	open := fs.Bool("open", false, "Open the evaluation window.")
	closeIt := fs.Bool("close", false, "Close the evaluation window.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *open && *closeIt {
		return cli.usage(fs)
	}

	ctx := context.Background()
	d, err := cli.supervisorDashboard(ctx)
	if err != nil {
		return err
	}
	var state bool
	switch {
	case *open || *closeIt:
		state, err = d.SetWindow(ctx, *open)
	default:
		if err = d.Refresh(ctx); err != nil {
			return err
		}
		_, state, _ = d.Snapshot()
	}
	if err != nil {
		return err
	}
	if state {
		fmt.Fprintln(cli.out, "Ventana de evaluación abierta")
	} else {
		fmt.Fprintln(cli.out, "Ventana de evaluación cerrada")
	}
	return nil
}

func (cli *commandLine) evaluationDashboard(ctx context.Context) (*dashboard.Evaluation, error) {
	sess, client, err := cli.authed(ctx, account.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	d := dashboard.NewEvaluation(client, cli.logger, sess)
	return d, d.Load(ctx)
}

func (cli *commandLine) evaluate([]string) error {
	d, err := cli.evaluationDashboard(context.Background())
	if err != nil {
		return err
	}
	state := "cerrada"
	if d.WindowOpen() {
		state = "abierta"
	}
	fmt.Fprintf(cli.out, "Periodo %s, ventana %s\n", d.Period(), state)

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAYUDANTE\tPLAZA\tESTADO")
	for _, p := range d.Pending() {
		fmt.Fprintf(w, "%d\t%s\t%s\tpendiente\n", p.ID, p.AssistantCedula, p.Position)
	}
	for _, p := range d.Approved() {
		fmt.Fprintf(w, "%d\t%s\t%s\taprobada\n", p.ID, p.AssistantCedula, p.Position)
	}
	return w.Flush()
}

func (cli *commandLine) approve(args []string) error {
	fs := cli.flagSet("approve")
	id := fs.Int("id", 0, "The placement ID.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *id <= 0 {
		return cli.usage(fs)
	}

	ctx := context.Background()
	d, err := cli.evaluationDashboard(ctx)
	if err != nil {
		return err
	}
	if err = d.Approve(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Ayudantía %d aprobada para el periodo %s\n", *id, d.Period())
	return nil
}

func (cli *commandLine) evidence(args []string) error {
	fs := cli.flagSet("evidence")
	placementID := fs.Int("placement", 0, "The placement ID.")
	activityID := fs.Int("activity", 0, "The activity ID.")
	outDir := fs.String("out", ".", "Where to save downloaded evidence.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *placementID <= 0 || *activityID <= 0 {
		return cli.usage(fs)
	}

	ctx := context.Background()
	_, client, err := cli.authed(ctx, account.RoleSupervisor, account.RoleAssistant, account.RoleAdmin)
	if err != nil {
		return err
	}
	activities, err := client.Activities(ctx, *placementID)
	if err != nil {
		return err
	}
	var evidence *string
	for i := range activities {
		if activities[i].ID == *activityID {
			evidence = &activities[i].Evidence
		}
	}
	if evidence == nil {
		return &dashboard.Failure{Message: dashboard.MsgNotFound}
	}

	ev, err := views.ResolveEvidence(*evidence)
	if err != nil {
		return err
	}
	switch ev.Kind {
	case views.EvidenceNone:
		fmt.Fprintln(cli.out, "La actividad no tiene evidencia")
	case views.EvidenceOpen:
		if !strings.HasPrefix(ev.URL, "/uploads/") {
			fmt.Fprintln(cli.out, ev.URL)
			break
		}
		data, mediaType, err := client.Download(ctx, ev.URL)
		if err != nil {
			return err
		}
		path := filepath.Join(*outDir, filepath.Base(ev.URL))
		if err = os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Evidencia guardada en %s (%s)\n", path, mediaType)
	case views.EvidenceDownload:
		path := filepath.Join(*outDir, ev.Filename)
		if err = os.WriteFile(path, ev.Data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Evidencia guardada en %s (%s)\n", path, ev.MediaType)
	case views.EvidenceCopy:
		fmt.Fprintln(cli.out, ev.Text)
	}
	return nil
}

func evidenceLabel(evidence string) string {
	ev, err := views.ResolveEvidence(evidence)
	if err != nil {
		return "inválida"
	}
	switch ev.Kind {
	case views.EvidenceOpen:
		return ev.URL
	case views.EvidenceDownload:
		return "archivo adjunto (" + ev.MediaType + ")"
	}
	return ev.Text
}
