package main

import (
	"fmt"
	"os"

	"github.com/trezcool/ayudantias/apps/shared"
	"github.com/trezcool/ayudantias/core"
	"github.com/trezcool/ayudantias/portal/api"
	"github.com/trezcool/ayudantias/portal/forms"
	"github.com/trezcool/ayudantias/portal/session"
)

func main() {
	conf := core.NewConfig()
	logger := shared.NewLogger("PORTAL", conf)

	store, err := session.OpenBoltStore(conf.Portal.SessionPath)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening session store: %v", err), err)
	}

	// start CLI
	cli := commandLine{
		conf:   conf,
		logger: logger,
		store:  store,
		client: api.New(conf.Portal.BaseURL, nil),
		forms:  forms.NewValidator(conf.InstitutionalDomain),
		out:    os.Stdout,
	}
	err = cli.run(os.Args)
	_ = store.Close()
	if err != nil {
		if err != errHelp {
			fmt.Fprintln(os.Stderr, describe(err))
		}
		os.Exit(1)
	}
}
