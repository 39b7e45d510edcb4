package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"Inkwell/internal/pages"
)

func (s *shell) commentsCommand() *cli.Command {
	return &cli.Command{
		Name:  "comments",
		Usage: "comment on posts",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "comment on a post",
				ArgsUsage: "POST TEXT...",
				Action:    s.addComment,
			},
			{
				Name:      "delete",
				Usage:     "delete a comment you wrote or one on your post",
				ArgsUsage: "POST COMMENT",
				Flags:     []cli.Flag{yesFlag()},
				Action:    s.deleteComment,
			},
		},
	}
}

func (s *shell) addComment(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	page := pages.NewDetailPage(s.posts, s.sessions, nil, s, s.logger)
	if err := page.Load(c.Context, c.Args().First()); err != nil {
		return fail(page.State().Error, err)
	}
	if err := page.AddComment(c.Context, strings.Join(c.Args().Tail(), " ")); err != nil {
		return fail(page.State().Error, err)
	}
	fmt.Fprintf(s.out, "Comment added (%d comments)\n", len(page.State().Post.Comments))
	return nil
}

func (s *shell) deleteComment(c *cli.Context) error {
	if err := requireArgs(c, 2); err != nil {
		return err
	}
	page := pages.NewDetailPage(s.posts, s.sessions, s.confirmer(c.Bool("yes")), s, s.logger)
	if err := page.Load(c.Context, c.Args().Get(0)); err != nil {
		return fail(page.State().Error, err)
	}
	err := page.DeleteComment(c.Context, c.Args().Get(1))
	if errors.Is(err, pages.ErrCancelled) {
		fmt.Fprintln(s.out, "Cancelled")
		return nil
	}
	if err != nil {
		return fail(page.State().Error, err)
	}
	fmt.Fprintln(s.out, "Comment deleted")
	return nil
}
