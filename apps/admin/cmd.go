package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/trezcool/miradi/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf *core.Config
	db   *sql.DB
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate up|down|status [ARGS] - run database migrations")
	fmt.Println("  seed                          - load sample reference data")
	fmt.Println("  mktoken -email EMAIL [-admin] - mint an operator API token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	mkTokenCmd := flag.NewFlagSet("mktoken", flag.ExitOnError)
	mkTokenEmail := mkTokenCmd.String("email", "", "The operator's email; used as the token subject.")
	mkTokenAdmin := mkTokenCmd.Bool("admin", false, "Grant admin access (board creation).")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "seed":
		return cli.seed()
	case "mktoken":
		if err := mkTokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *mkTokenEmail == "" {
			mkTokenCmd.Usage()
			return errHelp
		}
		return cli.mkToken(*mkTokenEmail, *mkTokenAdmin)
	default:
		cli.printUsage()
		return errHelp
	}
}
