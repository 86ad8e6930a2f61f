package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	id, err := cli.accountSvc.ResetPassword(ctx, email, pwd)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "password of %s #%d updated\n", id.Role, id.ID)
	return nil
}
