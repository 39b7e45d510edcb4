package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

func (s *shell) categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "list and create categories",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list categories",
				Action: func(c *cli.Context) error {
					list, err := s.cats.List(c.Context)
					if err != nil {
						return fail("", err)
					}
					renderCategories(s.out, list)
					return nil
				},
			},
			{
				Name:      "create",
				Usage:     "create a category",
				ArgsUsage: "NAME",
				Action: func(c *cli.Context) error {
					if err := requireArgs(c, 1); err != nil {
						return err
					}
					cat, err := s.cats.Create(c.Context, strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return fail("", err)
					}
					fmt.Fprintf(s.out, "Created category %s (%s)\n", cat.Name, cat.ID)
					return nil
				},
			},
		},
	}
}
