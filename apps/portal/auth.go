package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/trezcool/ayudantias/core/account"
	"github.com/trezcool/ayudantias/portal/dashboard"
	"github.com/trezcool/ayudantias/portal/forms"
	"github.com/trezcool/ayudantias/portal/session"
)

func (cli *commandLine) login(args []string) error {
	fs := cli.flagSet("login")
	role := fs.String("role", account.RoleAssistant, "admin, supervisor or ayudante.")
	email := fs.String("email", "", "The institutional email. The password will be prompted next.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		return cli.usage(fs)
	}
	pwd, err := promptPassword("Contraseña:")
	if err != nil {
		return err
	}

	f := forms.LoginForm{Role: *role, Email: *email, Password: pwd}
	if errs := f.Validate(cli.forms); len(errs) > 0 {
		return &dashboard.Failure{Message: dashboard.MsgInvalid, Fields: errs}
	}

	ctx := context.Background()
	l, err := cli.client.Login(ctx, f.Role, f.Email, f.Password)
	if err != nil {
		return err
	}
	sess := session.Session{Token: l.Token, Role: l.Role, Email: l.Email, Name: l.Name, ID: l.ID}
	sess.Profile = cli.profile(ctx, sess)
	if err = cli.store.Save(sess); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Bienvenido, %s (%s)\n", sess.Name, sess.Role)
	return nil
}

// profile fetches the account record kept with the session. Admins have none.
func (cli *commandLine) profile(ctx context.Context, sess session.Session) json.RawMessage {
	client := cli.client.WithToken(sess.Token)
	var (
		record interface{}
		err    error
	)
	switch sess.Role {
	case account.RoleAssistant:
		record, err = client.AssistantByEmail(ctx, sess.Email)
	case account.RoleSupervisor:
		record, err = client.SupervisorByEmail(ctx, sess.Email)
	default:
		return nil
	}
	if err != nil {
		cli.logger.Warn(fmt.Sprintf("fetching profile of %s: %v", sess.Email, err))
		return nil
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil
	}
	return data
}

func (cli *commandLine) logout([]string) error {
	if err := cli.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Sesión cerrada")
	return nil
}

func (cli *commandLine) whoami([]string) error {
	sess, _, err := cli.authed(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "%s <%s>\nrol: %s\nid: %s\n", sess.Name, sess.Email, sess.Role, sess.ID)
	if exp, err := sess.ExpiresAt(); err == nil && !exp.IsZero() {
		fmt.Fprintf(cli.out, "expira: %s\n", exp.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func (cli *commandLine) forgotPassword(args []string) error {
	fs := cli.flagSet("forgot-password")
	role := fs.String("role", account.RoleAssistant, "admin, supervisor or ayudante.")
	email := fs.String("email", "", "The institutional email.")
	if err := cli.parse(fs, args); err != nil {
		return err
	}
	if *email == "" {
		return cli.usage(fs)
	}
	if err := cli.client.RequestPasswordReset(context.Background(), *role, *email); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Si la cuenta existe, recibirás un correo con las instrucciones.")
	return nil
}
