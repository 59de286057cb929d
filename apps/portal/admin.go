package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/portal/dashboard"
	"github.com/trezcool/ayudantias/portal/forms"
)

func (cli *commandLine) adminDashboard(ctx context.Context) (*dashboard.Admin, error) {
	_, client, err := cli.authed(ctx, account.RoleAdmin)
	if err != nil {
		return nil, err
	}
	d := dashboard.NewAdmin(client, cli.forms, cli.logger)
	return d, d.Load(ctx)
}

func (cli *commandLine) assistants(args []string) error {
	fs := cli.flagSet("assistants")
	search := fs.String("search", "", "Filter by name or cédula.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	d, err := cli.adminDashboard(context.Background())
	if err != nil {
		return err
	}
	d.SetSearch(*search)

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CÉDULA\tNOMBRE\tCORREO\tNIVEL\tFACULTAD\tCARRERA")
	for _, a := range d.Assistants() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.Cedula, a.Name, a.Email, a.Level, a.Faculty, a.Major)
	}
	return w.Flush()
}

func (cli *commandLine) supervisors(args []string) error {
	fs := cli.flagSet("supervisors")
	search := fs.String("search", "", "Filter by name or cédula.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	d, err := cli.adminDashboard(context.Background())
	if err != nil {
		return err
	}
	d.SetSearch(*search)

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CÉDULA\tNOMBRE\tCORREO")
	for _, s := range d.Supervisors() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Cedula, s.Name, s.Email)
	}
	return w.Flush()
}

func (cli *commandLine) addAssistant(args []string) error {
	fs := cli.flagSet("add-assistant")
	var f forms.AssistantForm
	fs.StringVar(&f.Cedula, "cedula", "", "The 10 digit national ID.")
	fs.StringVar(&f.Name, "name", "", "Full name.")
	fs.StringVar(&f.Email, "email", "", "Institutional email.")
	fs.StringVar(&f.Level, "level", "", "Semester or level.")
	fs.StringVar(&f.Faculty, "faculty", "", "Faculty name.")
	fs.StringVar(&f.Major, "major", "", "Major offered by the faculty.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if f.Cedula == "" || f.Email == "" {
		return cli.usage(fs)
	}
	var err error
	if f.Password, f.PasswordConfirm, err = promptNewPassword(); err != nil {
		return err
	}

	ctx := context.Background()
	d, err := cli.adminDashboard(ctx)
	if err != nil {
		return err
	}
	a, err := d.CreateAssistant(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Ayudante %s (%s) registrado\n", a.Name, a.Cedula)
	return nil
}

func (cli *commandLine) editAssistant(args []string) error {
	fs := cli.flagSet("edit-assistant")
	cedula := fs.String("cedula", "", "The assistant's cédula.")
	name := fs.String("name", "", "New full name.")
	email := fs.String("email", "", "New institutional email.")
	level := fs.String("level", "", "New level.")
	faculty := fs.String("faculty", "", "New faculty.")
	major := fs.String("major", "", "New major.")
	changePwd := fs.Bool("password", false, "Prompt for a new password.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *cedula == "" {
		return cli.usage(fs)
	}

	ctx := context.Background()
	d, err := cli.adminDashboard(ctx)
	if err != nil {
		return err
	}
	f, ok := d.EditForm(*cedula)
	if !ok {
		return &dashboard.Failure{Message: dashboard.MsgNotFound}
	}
	for dst, src := range map[*string]string{&f.Name: *name, &f.Email: *email, &f.Level: *level, &f.Faculty: *faculty, &f.Major: *major} {
		if src != "" {
			*dst = src
		}
	}
	if *changePwd {
		if f.Password, f.PasswordConfirm, err = promptNewPassword(); err != nil {
			return err
		}
	}

	a, err := d.EditAssistant(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Ayudante %s (%s) actualizado\n", a.Name, a.Cedula)
	return nil
}

func (cli *commandLine) addSupervisor(args []string) error {
	fs := cli.flagSet("add-supervisor")
	var f forms.SupervisorForm
	fs.StringVar(&f.Cedula, "cedula", "", "The 10 digit national ID.")
	fs.StringVar(&f.Name, "name", "", "Full name.")
	fs.StringVar(&f.Email, "email", "", "Institutional email.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if f.Cedula == "" || f.Email == "" {
		return cli.usage(fs)
	}
	var err error
	if f.Password, f.PasswordConfirm, err = promptNewPassword(); err != nil {
		return err
	}

	ctx := context.Background()
	d, err := cli.adminDashboard(ctx)
	if err != nil {
		return err
	}
	s, err := d.CreateSupervisor(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Supervisor %s (%s) registrado\n", s.Name, s.Cedula)
	return nil
}

func (cli *commandLine) assignPlacement(args []string) error {
	fs := cli.flagSet("placement")
	var f forms.PlacementForm
	fs.StringVar(&f.AssistantCedula, "assistant", "", "The assistant's cédula.")
	fs.StringVar(&f.SupervisorCedula, "supervisor", "", "The supervisor's cédula.")
	fs.StringVar(&f.Position, "position", "", "Position name.")
	fs.StringVar(&f.AssistantType, "type", "", "Assistantship type.")
	fs.StringVar(&f.Objective, "objective", "", "Initial objective.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if f.AssistantCedula == "" || f.SupervisorCedula == "" {
		return cli.usage(fs)
	}

	ctx := context.Background()
	_, client, err := cli.authed(ctx, account.RoleAdmin)
	if err != nil {
		return err
	}
	p, err := dashboard.NewAdmin(client, cli.forms, cli.logger).AssignPlacement(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Ayudantía %d asignada\n", p.ID)
	return nil
}

func promptNewPassword() (pwd, confirm string, err error) {
	if pwd, err = promptPassword("Contraseña:"); err != nil {
		return "", "", err
	}
	if confirm, err = promptPassword("Confirmar contraseña:"); err != nil {
		return "", "", err
	}
	return pwd, confirm, nil
}
