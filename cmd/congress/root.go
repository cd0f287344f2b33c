package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/top-on/optimal-congress/internal/adapters/congressapi"
	"github.com/top-on/optimal-congress/internal/adapters/repository"
	service "github.com/top-on/optimal-congress/internal/app"
	"github.com/top-on/optimal-congress/internal/config"
	"github.com/top-on/optimal-congress/internal/domain/schedule"
	"github.com/top-on/optimal-congress/internal/ui"
	"github.com/top-on/optimal-congress/pkg/logger"
)

const userAgent = "optimal-congress"

// cli holds the state shared by all commands of one invocation.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	verbose bool
	noColor bool

	cfg   *config.Config
	loc   *time.Location
	log   logger.Logger
	store *repository.SQLiteStore
	svc   *service.Service
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{in: in, out: out, errOut: errOut}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	c.close()
	if err != nil {
		fmt.Fprintf(errOut, "%s %v\n", ui.RenderWarn("Error:"), err)
		return 1
	}
	return 0
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "congress",
		Short:         "Optimize your personal schedule for the Chaos Communication Congress",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return c.setup(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output, including the optimization problem")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		c.fetchCmd(),
		c.rateCmd(),
		c.ratingsCmd(),
		c.optimizeCmd(),
		c.dumpCmd(),
		c.loadCmd(),
		c.exportCmd(),
		c.serveCmd(),
	)
	return root
}

// setup loads configuration, initializes logging and opens the cache.
func (c *cli) setup(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	c.cfg = cfg

	level := cfg.LogLevel
	if c.verbose {
		level = "debug"
	}
	if err := logger.Init(
		logger.WithWriter(c.errOut),
		logger.WithFormat(cfg.LogFormat),
		logger.WithLevel(level),
	); err != nil {
		if initErr := logger.Init(logger.WithWriter(c.errOut), logger.WithFormat(cfg.LogFormat)); initErr != nil {
			return fmt.Errorf("init logging: %w", errors.Join(err, initErr))
		}
		logger.Get().Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
	}
	c.log = logger.Named("cli")

	ui.SetColor(!c.noColor && ui.ShouldUseColor())

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	c.loc = loc

	solver, err := schedule.SolverByName(cfg.Solver)
	if err != nil {
		return err
	}

	store, err := repository.Open(ctx, cfg.CachePath)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	c.store = store
	c.log.Debug(ctx, "cache opened", logger.String("path", store.Path()))

	c.svc = service.New(
		service.WithStore(store),
		service.WithFetcher(congressapi.New(cfg.APIEvents, cfg.APIRooms,
			congressapi.WithTimeout(cfg.HTTPTimeout()),
			congressapi.WithUserAgent(userAgent),
			congressapi.WithLogger(logger.Named("congressapi")),
		)),
		service.WithOptimizer(schedule.New(
			schedule.WithSolver(solver),
			schedule.WithTimeout(cfg.SolveTimeout()),
			schedule.WithLogger(logger.Named("optimizer")),
		)),
		service.WithLogger(logger.Named("service")),
		service.WithHubRoute(cfg.HubEventRoute),
		service.WithLocation(loc),
	)
	return nil
}

func (c *cli) close() {
	defer func() { _ = logger.Sync() }()
	if c.store == nil {
		return
	}
	if err := c.store.Close(); err != nil && c.log != nil {
		c.log.Error(context.Background(), "close cache", logger.Error(err))
	}
	c.store = nil
}

func (c *cli) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// openInput returns stdin for "-" and the named file otherwise.
func (c *cli) openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(c.in), nil
	}
	return os.Open(path)
}

// openOutput returns stdout for "-" and the created file otherwise.
func (c *cli) openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{c.out}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// status writes progress lines to stderr when stdout carries data.
func (c *cli) status(path string) io.Writer {
	if path == "-" {
		return c.errOut
	}
	return c.out
}
