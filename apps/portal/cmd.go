package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/portal/api"
	"github.com/trezcool/ayudantias/portal/dashboard"
	"github.com/trezcool/ayudantias/portal/forms"
	"github.com/trezcool/ayudantias/portal/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	store  session.Store
	client *api.Client
	forms  *forms.Validator
	out    io.Writer
}

type command struct {
	usage string
	run   func(cli *commandLine, args []string) error
}

var commands = map[string]command{
	"login":           {"login -role admin|supervisor|ayudante -email EMAIL - start a session", (*commandLine).login},
	"logout":          {"logout - end the session", (*commandLine).logout},
	"whoami":          {"whoami - show the session", (*commandLine).whoami},
	"forgot-password": {"forgot-password -role ROLE -email EMAIL - request a password reset email", (*commandLine).forgotPassword},
	"assistants":      {"assistants [-search TERM] - list assistants (admin)", (*commandLine).assistants},
	"supervisors":     {"supervisors [-search TERM] - list supervisors (admin)", (*commandLine).supervisors},
	"add-assistant":   {"add-assistant -cedula C -name N -email E -level L -faculty F [-major M] - register an assistant (admin)", (*commandLine).addAssistant},
	"edit-assistant":  {"edit-assistant -cedula C [-name N -email E -level L -faculty F -major M -password] - edit an assistant (admin)", (*commandLine).editAssistant},
	"add-supervisor":  {"add-supervisor -cedula C -name N -email E - register a supervisor (admin)", (*commandLine).addSupervisor},
	"placement":       {"placement -assistant C -supervisor C -position P -type T [-objective O] - assign a placement (admin)", (*commandLine).assignPlacement},
	"me":              {"me - show the own record, placement and activities (ayudante)", (*commandLine).me},
	"objective":       {"objective [-set TEXT] - show or change the objective (ayudante)", (*commandLine).objective},
	"activity":        {"activity -date YYYY-MM-DD -description D [-evidence TEXT|-file PATH] - record an activity (ayudante)", (*commandLine).activity},
	"watch":           {"watch - follow the supervised placements (supervisor)", (*commandLine).watch},
	"window":          {"window [-open|-close] - show or change the evaluation window (supervisor)", (*commandLine).window},
	"evaluate":        {"evaluate - list approved and pending placements of the current period (supervisor)", (*commandLine).evaluate},
	"approve":         {"approve -id ID - approve a placement for the current period (supervisor)", (*commandLine).approve},
	"evidence":        {"evidence -placement ID -activity ID [-out DIR] - open an activity's evidence", (*commandLine).evidence},
}

var commandOrder = []string{
	"login", "logout", "whoami", "forgot-password",
	"assistants", "supervisors", "add-assistant", "edit-assistant", "add-supervisor", "placement",
	"me", "objective", "activity",
	"watch", "window", "evaluate", "approve", "evidence",
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	for _, name := range commandOrder {
		fmt.Fprintln(cli.out, "  "+commands[name].usage)
	}
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	cmd, ok := commands[args[1]]
	if !ok {
		cli.printUsage()
		return errHelp
	}
	return cmd.run(cli, args[2:])
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	return nil
}

func (cli *commandLine) usage(fs *flag.FlagSet) error {
	fs.Usage()
	return errHelp
}

// authed returns the stored session, renewed when its token nears expiry,
// and a client acting on its behalf.
func (cli *commandLine) authed(ctx context.Context, roles ...string) (session.Session, *api.Client, error) {
	sess, err := session.Guard(cli.store, roles...)
	if err != nil {
		return session.Session{}, nil, err
	}
	sess, client := cli.renew(ctx, sess)
	return sess, client, nil
}

// renew refreshes sess once its token nears expiry. On failure the current session is kept.
func (cli *commandLine) renew(ctx context.Context, sess session.Session) (session.Session, *api.Client) {
	sess, err := session.Renew(ctx, cli.store, sess, cli.refreshSession)
	if err != nil {
		cli.logger.Warn("renewing session", err)
	}
	return sess, cli.client.WithToken(sess.Token)
}

func (cli *commandLine) refreshSession(ctx context.Context, sess session.Session) (session.Session, error) {
	l, err := cli.client.WithToken(sess.Token).RefreshToken(ctx)
	if err != nil {
		return session.Session{}, err
	}
	return session.Session{Token: l.Token, Role: l.Role, Email: l.Email, Name: l.Name, ID: l.ID}, nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// describe renders err for the user.
func describe(err error) string {
	if errors.Is(err, session.ErrLoginRequired) {
		return "Inicia sesión con el rol adecuado (portal login)."
	}
	return dashboard.Describe(err)
}
