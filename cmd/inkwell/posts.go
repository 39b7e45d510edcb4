package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"Inkwell/internal/core/categories"
	"Inkwell/internal/pages"
)

func yesFlag() cli.Flag {
	return &cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip the confirmation prompt"}
}

func (s *shell) postsCommand() *cli.Command {
	return &cli.Command{
		Name:  "posts",
		Usage: "browse and manage posts",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list posts, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Value: 1},
					&cli.StringFlag{Name: "search", Usage: "server side search term"},
					&cli.StringFlag{Name: "category", Usage: "category name or id"},
					&cli.StringFlag{Name: "tag", Usage: "show only posts with this tag (filters the fetched page)"},
				},
				Action: s.listPosts,
			},
			{
				Name:      "show",
				Usage:     "show a post with its comments",
				ArgsUsage: "ID",
				Action:    s.showPost,
			},
			{
				Name:   "mine",
				Usage:  "list your own posts",
				Action: s.myPosts,
			},
			{
				Name:      "search",
				Usage:     "search posts by title, content or tag",
				ArgsUsage: "QUERY",
				Action:    s.searchPosts,
			},
			{
				Name:  "create",
				Usage: "write a new post",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true},
					&cli.StringFlag{Name: "content", Required: true},
					&cli.StringFlag{Name: "category", Usage: "category name or id"},
					&cli.StringSliceFlag{Name: "tag", Usage: "tag to add, repeatable"},
					&cli.PathFlag{Name: "image", Usage: "featured image file"},
				},
				Action: s.createPost,
			},
			{
				Name:      "edit",
				Usage:     "change a post; unset flags keep their current value",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "content"},
					&cli.StringFlag{Name: "category", Usage: "category name or id"},
					&cli.StringFlag{Name: "tags", Usage: "comma separated tags, replaces the current set"},
					&cli.PathFlag{Name: "image", Usage: "replacement featured image"},
				},
				Action: s.editPost,
			},
			{
				Name:      "delete",
				Usage:     "delete a post",
				ArgsUsage: "ID",
				Flags:     []cli.Flag{yesFlag()},
				Action:    s.deletePost,
			},
			{
				Name:      "like",
				Usage:     "like or unlike a post",
				ArgsUsage: "ID",
				Action:    s.likePost,
			},
		},
	}
}

func (s *shell) listPosts(c *cli.Context) error {
	category, err := s.resolveCategory(c, c.String("category"))
	if err != nil {
		return err
	}

	page := pages.NewListPage(s.posts, s.sessions, nil, s.cfg.PageSize, s.logger)
	q := pages.ListQuery{Search: c.String("search"), Category: category, Page: c.Int("page")}
	if err := page.Query(c.Context, q); err != nil {
		return fail(page.State().Error, err)
	}
	page.SelectTag(c.String("tag"))

	st := page.State()
	renderPostTable(s.out, page.Visible())
	fmt.Fprintf(s.out, "\nPage %d of %d\n", st.Page, st.TotalPages)
	return nil
}

func (s *shell) showPost(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	page := pages.NewDetailPage(s.posts, s.sessions, nil, s, s.logger)
	if err := page.Load(c.Context, c.Args().First()); err != nil {
		return fail(page.State().Error, err)
	}
	renderPost(s.out, page.State().Post, s.cfg.APIURL)
	if page.Liked() {
		fmt.Fprintln(s.out, "You like this post")
	}
	return nil
}

func (s *shell) myPosts(c *cli.Context) error {
	list, err := s.posts.Mine(c.Context)
	if err != nil {
		return fail("", err)
	}
	renderPostTable(s.out, list)
	return nil
}

func (s *shell) searchPosts(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	list, err := s.posts.Search(c.Context, strings.Join(c.Args().Slice(), " "))
	if err != nil {
		return fail("", err)
	}
	renderPostTable(s.out, list)
	return nil
}

func (s *shell) createPost(c *cli.Context) error {
	category, err := s.resolveCategory(c, c.String("category"))
	if err != nil {
		return err
	}

	page := pages.NewCreatePage(s.posts, s.cats, s.sessions, s.images, s, s.logger)
	page.SetTitle(c.String("title"))
	page.SetContent(c.String("content"))
	page.SetCategory(category)
	for _, tag := range c.StringSlice("tag") {
		page.AddTag(tag)
	}
	if path := c.Path("image"); path != "" {
		if err := page.SetImage(path); err != nil {
			return fail(page.State().Error, err)
		}
	}

	created, err := page.Submit(c.Context)
	if err != nil {
		return fail(page.State().Error, err)
	}
	fmt.Fprintln(s.out, page.State().Message)
	if created != nil {
		fmt.Fprintf(s.out, "Created post %s\n", created.ID)
	}
	return nil
}

func (s *shell) editPost(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	page := pages.NewEditPage(s.posts, s.cats, s.images, s, s.logger)
	if err := page.Load(c.Context, c.Args().First()); err != nil {
		return fail(page.State().Error, err)
	}

	if c.IsSet("title") {
		page.SetTitle(c.String("title"))
	}
	if c.IsSet("content") {
		page.SetContent(c.String("content"))
	}
	if c.IsSet("category") {
		category, err := s.resolveCategory(c, c.String("category"))
		if err != nil {
			return err
		}
		page.SetCategory(category)
	}
	if c.IsSet("tags") {
		page.SetTags(c.String("tags"))
	}
	if path := c.Path("image"); path != "" {
		if err := page.SetImage(path); err != nil {
			return fail(page.State().Error, err)
		}
	}

	if err := page.Submit(c.Context); err != nil {
		return fail(page.State().Error, err)
	}
	fmt.Fprintln(s.out, "Post updated")
	return nil
}

func (s *shell) deletePost(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	page := pages.NewListPage(s.posts, s.sessions, s.confirmer(c.Bool("yes")), s.cfg.PageSize, s.logger)
	err := page.Delete(c.Context, c.Args().First())
	if errors.Is(err, pages.ErrCancelled) {
		fmt.Fprintln(s.out, "Cancelled")
		return nil
	}
	if err != nil {
		return fail(page.State().Error, err)
	}
	fmt.Fprintln(s.out, page.State().Message)
	return nil
}

func (s *shell) likePost(c *cli.Context) error {
	if err := requireArgs(c, 1); err != nil {
		return err
	}
	page := pages.NewDetailPage(s.posts, s.sessions, nil, s, s.logger)
	if err := page.Load(c.Context, c.Args().First()); err != nil {
		return fail(page.State().Error, err)
	}
	if err := page.ToggleLike(c.Context); err != nil {
		return fail(page.State().Error, err)
	}

	post := page.State().Post
	verb := "Unliked"
	if page.Liked() {
		verb = "Liked"
	}
	fmt.Fprintf(s.out, "%s %q (%d likes)\n", verb, post.Title, len(post.Likes))
	return nil
}

// resolveCategory maps a category name or id to its id.
func (s *shell) resolveCategory(c *cli.Context, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	list, err := s.cats.List(c.Context)
	if err != nil {
		return "", fail("", err)
	}
	for _, cat := range list {
		if cat.ID == value || strings.EqualFold(cat.Name, value) {
			return cat.ID, nil
		}
	}
	return "", cli.Exit(fmt.Sprintf("unknown category %q; known: %s", value, categoryNames(list)), 2)
}

func categoryNames(list []categories.Category) string {
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
