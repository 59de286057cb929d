package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/portal/dashboard"
	"github.com/trezcool/ayudantias/portal/forms"
)

func (cli *commandLine) assistantDashboard(ctx context.Context) (*dashboard.Assistant, error) {
	sess, client, err := cli.authed(ctx, account.RoleAssistant)
	if err != nil {
		return nil, err
	}
	d := dashboard.NewAssistant(client, cli.forms, cli.logger, sess)
	return d, d.Load(ctx)
}

func (cli *commandLine) me([]string) error {
	d, err := cli.assistantDashboard(context.Background())
	if err != nil {
		return err
	}
	p := d.Profile
	fmt.Fprintf(cli.out, "%s (%s) <%s>\n%s, %s, %s\n", p.Name, p.Cedula, p.Email, p.Level, p.Faculty, p.Major)
	if d.Placement == nil {
		fmt.Fprintln(cli.out, dashboard.MsgNoPlacement)
		return nil
	}
	fmt.Fprintf(cli.out, "\nAyudantía %d: %s (%s)\nObjetivo: %s\n", d.Placement.ID, d.Placement.Position, d.Placement.AssistantType, d.Placement.Objective)
	if len(d.Activities) == 0 {
		fmt.Fprintln(cli.out, "Sin actividades registradas")
		return nil
	}
	fmt.Fprintln(cli.out, "\nActividades:")
	for _, a := range d.Activities {
		printActivity(cli, a.ID, a.Date, a.Description, a.Evidence)
	}
	return nil
}

func (cli *commandLine) objective(args []string) error {
	fs := cli.flagSet("objective")
	text := fs.String("set", "", "The new objective.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}

	ctx := context.Background()
	d, err := cli.assistantDashboard(ctx)
	if err != nil {
		return err
	}
	if *text == "" {
		if d.Placement == nil {
			return &dashboard.Failure{Message: dashboard.MsgNoPlacement}
		}
		fmt.Fprintln(cli.out, d.Placement.Objective)
		return nil
	}

	if err = d.BeginEdit(); err != nil {
		return err
	}
	if err = d.SetDraft(*text); err != nil {
		return err
	}
	if err = d.Save(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Objetivo actualizado")
	return nil
}

func (cli *commandLine) activity(args []string) error {
	fs := cli.flagSet("activity")
	var f forms.ActivityForm
	fs.StringVar(&f.Date, "date", "", "Date, YYYY-MM-DD.")
	fs.StringVar(&f.Description, "description", "", "What was done.")
	fs.StringVar(&f.Evidence, "evidence", "", "Evidence text, link or data URL.")
	fs.StringVar(&f.EvidenceFile, "file", "", "Evidence file to upload.")
	fs.StringVar(&f.Period, "period", "", "Academic period.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if f.Date == "" || f.Description == "" {
		return cli.usage(fs)
	}

	ctx := context.Background()
	d, err := cli.assistantDashboard(ctx)
	if err != nil {
		return err
	}
	a, err := d.RecordActivity(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Actividad %d registrada\n", a.ID)
	return nil
}

func printActivity(cli *commandLine, id int, date, description, evidence string) {
	fmt.Fprintf(cli.out, "  [%d] %s  %s\n", id, date, description)
	if evidence != "" {
		fmt.Fprintln(cli.out, "       evidencia: "+evidenceLabel(evidence))
	}
}
