package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"Inkwell/internal/pages"
	"Inkwell/internal/session"
)

func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "password",
		Usage:   "account password (prompted for when omitted)",
		EnvVars: []string{"INKWELL_PASSWORD"},
	}
}

func (s *shell) password(c *cli.Context) string {
	if pw := c.String("password"); pw != "" {
		return pw
	}
	return s.readSecret("Password")
}

func (s *shell) registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
			passwordFlag(),
		},
		Action: func(c *cli.Context) error {
			page := pages.NewRegisterPage(s.auth, s)
			if err := page.Submit(c.Context, c.String("name"), c.String("email"), s.password(c)); err != nil {
				return fail(page.State().Error, err)
			}
			fmt.Fprintln(s.out, page.State().Message)
			return nil
		},
	}
}

func (s *shell) loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and remember the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			passwordFlag(),
		},
		Action: func(c *cli.Context) error {
			page := pages.NewLoginPage(s.auth, s)
			if err := page.Submit(c.Context, c.String("email"), s.password(c)); err != nil {
				return fail(page.State().Error, err)
			}
			fmt.Fprintln(s.out, page.State().Message)
			return nil
		},
	}
}

func (s *shell) logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "forget the stored session",
		Action: func(c *cli.Context) error {
			if err := s.auth.Logout(); err != nil {
				return fail("", err)
			}
			fmt.Fprintln(s.out, "Logged out")
			return nil
		},
	}
}

func (s *shell) whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "show the signed in user",
		Action: func(c *cli.Context) error {
			sess, err := s.sessions.Require()
			if err != nil {
				return cli.Exit("Not logged in", 1)
			}
			user, err := s.auth.CurrentUser()
			if err != nil {
				return fail("", err)
			}
			switch {
			case user != nil && user.Name != "":
				fmt.Fprintf(s.out, "%s <%s> (%s)\n", user.Name, user.Email, user.ID)
			default:
				fmt.Fprintf(s.out, "user %s\n", sess.UserID)
			}

			info, err := session.InspectToken(sess.Token)
			if err != nil {
				s.logger.Debug("token is not inspectable", "error", err)
				return nil
			}
			if !info.ExpiresAt.IsZero() {
				if info.Expired(time.Now()) {
					fmt.Fprintln(s.out, "Token expired; the next request will sign you out")
				} else {
					fmt.Fprintf(s.out, "Token expires %s\n", info.ExpiresAt.Local().Format(time.RFC1123))
				}
			}
			return nil
		},
	}
}
