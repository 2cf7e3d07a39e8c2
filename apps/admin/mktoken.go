package main

import (
	"fmt"

	echoapi "github.com/trezcool/miradi/apps/api/echo"
	"github.com/trezcool/miradi/core"
)

func (cli *commandLine) mkToken(email string, isAdmin bool) error {
	claims := echoapi.NewClaims(cli.conf, core.CleanString(email, true /* lower */), isAdmin)
	token, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
