package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"Inkwell/internal/apiclient"
	"Inkwell/internal/config"
	"Inkwell/internal/core/auth"
	"Inkwell/internal/core/categories"
	"Inkwell/internal/core/images"
	"Inkwell/internal/core/posts"
	"Inkwell/internal/db/sqlite"
	"Inkwell/internal/kv"
	"Inkwell/internal/pages"
	"Inkwell/internal/session"
)

// shell holds everything a command needs. It is built once per run by
// setup and torn down by teardown.
type shell struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	cfg      config.Config
	logger   *slog.Logger
	sessions *session.Store
	auth     *auth.Service
	posts    *posts.Service
	cats     *categories.Service
	images   *images.Preparer
	closers  []io.Closer
}

func newShell(in io.Reader, out, errOut io.Writer) *shell {
	return &shell{in: bufio.NewReader(in), out: out, errOut: errOut}
}

// setup loads configuration, applies global flags and wires the client
// stack: kv store -> session store -> HTTP client -> services.
func (s *shell) setup(c *cli.Context) error {
	cfg := config.FromEnv()
	if c.IsSet("api-url") {
		cfg.APIURL = c.String("api-url")
	}
	if c.IsSet("session-backend") {
		cfg.SessionBackend = strings.ToLower(c.String("session-backend"))
		cfg.SessionPath = config.DefaultSessionPath(cfg.SessionBackend)
	}
	if c.IsSet("session-path") {
		cfg.SessionPath = c.String("session-path")
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("invalid configuration: %v", err), 2)
	}
	s.cfg = cfg

	// Service logs go to stderr; keep them quiet unless asked for.
	level := max(cfg.LogLevel, slog.LevelWarn)
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	s.logger = slog.New(slog.NewTextHandler(s.errOut, &slog.HandlerOptions{Level: level}))

	store, err := s.openKV()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open session store: %v", err), 1)
	}
	s.sessions = session.NewStore(store, s.logger)

	opts := []apiclient.Option{
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithRetry(cfg.RetryMax, 200*time.Millisecond, 2*time.Second),
		apiclient.WithUnauthorizedHandler(session.NewInvalidator(s.sessions, s.sessionExpired, s.logger)),
		apiclient.WithLogger(s.logger),
		apiclient.WithUserAgent("inkwell/" + version),
	}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, apiclient.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	client, err := apiclient.New(cfg.APIURL, s.sessions, opts...)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid API URL: %v", err), 2)
	}

	s.auth = auth.NewService(client, s.sessions, s.logger)
	s.posts = posts.NewService(client, s.sessions, s.logger)
	s.cats = categories.NewService(client, s.sessions, cfg.CategoryCacheTTL, s.logger)

	s.images, err = images.NewPreparer(images.Options{
		MaxWidth:       cfg.ImageMaxWidth,
		MaxHeight:      cfg.ImageMaxHeight,
		Quality:        cfg.ImageQuality,
		MaxSourceBytes: cfg.ImageMaxSourceMB << 20,
	}, s.logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid image settings: %v", err), 2)
	}
	return nil
}

func (s *shell) openKV() (kv.Store, error) {
	switch s.cfg.SessionBackend {
	case config.BackendMemory:
		return kv.NewMemory(), nil
	case config.BackendSQLite:
		db, err := sqlite.Open(s.cfg.SessionPath)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db)
		return sqlite.NewKVStore(db), nil
	default:
		return kv.NewFile(s.cfg.SessionPath)
	}
}

func (s *shell) teardown(*cli.Context) error {
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			s.logger.Warn("failed to close resource", "error", err)
		}
	}
	return nil
}

// Navigate prints the view a browser would have moved to.
func (s *shell) Navigate(to pages.Route) {
	fmt.Fprintf(s.out, "-> %s\n", to)
}

// sessionExpired runs after a 401 has cleared the session: it sends the
// user to the login view and says how to get there.
func (s *shell) sessionExpired() {
	fmt.Fprintln(s.errOut, "Not logged in or session expired. Run 'inkwell login' to sign in.")
	s.Navigate(pages.RouteLogin)
}

// confirmer returns a Confirmer that asks on the terminal unless yes is set.
func (s *shell) confirmer(yes bool) pages.Confirmer {
	if yes {
		return pages.AlwaysConfirm
	}
	return pages.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(s.out, "%s [y/N]: ", prompt)
		answer, _ := s.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

// readSecret prompts for a value that was not given as a flag.
func (s *shell) readSecret(prompt string) string {
	fmt.Fprintf(s.out, "%s: ", prompt)
	line, _ := s.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// fail turns a controller failure into a CLI exit. msg is the message the
// view would show; without one the server's message or err itself is used.
func fail(msg string, err error) error {
	if msg == "" {
		msg = apiclient.MessageOr(err, err.Error())
	}
	return cli.Exit(msg, 1)
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() < n {
		return cli.Exit(fmt.Sprintf("usage: %s %s", c.Command.HelpName, c.Command.ArgsUsage), 2)
	}
	return nil
}
