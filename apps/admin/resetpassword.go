package main

import (
	"context"

	"github.com/trezcool/ayudantias/core"
)

func (cli *commandLine) resetPassword(role, email, pwd string) error {
	return cli.accounts.SetPassword(context.Background(), core.CleanString(role, true /* lower */), email, pwd)
}
