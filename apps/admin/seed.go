package main

import (
	"fmt"

	"github.com/pkg/errors"
)

var sampleRoles = []string{
	"Backend Developer",
	"Frontend Developer",
	"UI/UX Designer",
	"QA Engineer",
	"Project Manager",
}

// seed loads the reference roles and a sample project; safe to run twice.
func (cli *commandLine) seed() error {
	for _, name := range sampleRoles {
		_, err := cli.db.Exec("INSERT INTO role (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name)
		if err != nil {
			return errors.Wrapf(err, "seeding role %q", name)
		}
	}

	_, err := cli.db.Exec(
		`INSERT INTO project (title, description)
		 SELECT $1, $2
		 WHERE NOT EXISTS (SELECT 1 FROM project WHERE title = $1)`,
		"Sample Project", "A starter project to exercise board creation locally.")
	if err != nil {
		return errors.Wrap(err, "seeding sample project")
	}

	fmt.Println("seed data loaded")
	return nil
}
