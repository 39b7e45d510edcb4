package main

import (
	"errors"
	"io"

	"github.com/urfave/cli/v2"

	"Inkwell/internal/config"
)

// newApp builds the command tree. Errors are returned from Run rather than
// exiting so callers decide how to report them.
func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	s := newShell(in, out, errOut)
	return &cli.App{
		Name:           "inkwell",
		Usage:          "read and write posts on an Inkwell blog",
		Version:        version,
		Reader:         in,
		Writer:         out,
		ErrWriter:      errOut,
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "backend base URL",
				EnvVars: []string{"INKWELL_API_URL"},
			},
			&cli.StringFlag{
				Name:  "session-backend",
				Usage: "where to keep the session: " + config.BackendMemory + ", " + config.BackendFile + " or " + config.BackendSQLite,
			},
			&cli.StringFlag{
				Name:  "session-path",
				Usage: "session file or database path",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log requests and service activity to stderr",
			},
		},
		Before: s.setup,
		After:  s.teardown,
		Commands: []*cli.Command{
			s.registerCommand(),
			s.loginCommand(),
			s.logoutCommand(),
			s.whoamiCommand(),
			s.postsCommand(),
			s.commentsCommand(),
			s.categoriesCommand(),
		},
	}
}

// exitCode extracts the code carried by a cli.ExitCoder.
func exitCode(err error) int {
	var coder cli.ExitCoder
	if errors.As(err, &coder) && coder.ExitCode() != 0 {
		return coder.ExitCode()
	}
	return 1
}
