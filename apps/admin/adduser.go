package main

import (
	"context"
	"fmt"

	"github.com/trezcool/ayudantias/core/admin"
)

// addUser updates or creates an administrator.
func (cli *commandLine) addUser(email, name, pwd string) error {
	na := admin.NewAdmin{Email: email, Name: name, Password: pwd}
	if err := na.Validate(cli.validate); err != nil {
		return err
	}
	adm, err := cli.admins.Save(context.Background(), na)
	if err != nil {
		return err
	}
	fmt.Printf("administrator %s saved\n", adm.Email)
	return nil
}
