package main

import (
	"log"
	"os"

	"github.com/trezcool/miradi/core"
	"github.com/trezcool/miradi/storage/database"
)

func main() {
	conf := core.NewConfig()

	cli := &commandLine{conf: conf}

	// only open a DB connection for commands that need one
	if len(os.Args) > 1 && os.Args[1] != "mktoken" {
		db, err := database.Open(conf)
		if err != nil {
			log.Fatalf("opening database: %v", err)
		}
		defer func() { _ = db.Close() }()
		cli.db = db
	}

	if err := cli.run(os.Args); err != nil {
		if err == errHelp {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}
