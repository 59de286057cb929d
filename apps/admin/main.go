package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/trezcool/ayudantias/apps/shared"
	"github.com/trezcool/ayudantias/core"
)

func main() {
	conf := core.NewConfig()
	logger := shared.NewLogger("ADMIN", conf)

	// set up DB; migrations are left to the migrate command
	var (
		db    *sql.DB
		repos shared.Repositories
		err   error
	)
	if conf.Database.Engine == shared.EngineMemory {
		repos = shared.MemoryRepositories()
	} else {
		if db, err = shared.OpenDB(conf); err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		repos = shared.SQLRepositories(db)
	}

	validate, _ := shared.NewValidator(conf, logger)
	svcs := shared.NewServices(repos, shared.NewEmailService(conf, logger), conf)

	// start CLI
	cli := commandLine{
		db:       db,
		admins:   svcs.Admins,
		accounts: svcs.Accounts,
		validate: validate,
	}
	err = cli.run(os.Args)
	if db != nil {
		_ = db.Close()
	}
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
