package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cctv-survey/internal/config"
	"cctv-survey/internal/database"
	"cctv-survey/internal/logger"
	"cctv-survey/internal/services"
	"cctv-survey/internal/strapi"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitCodeError{code: code, err: err}
}

// app holds what every subcommand needs. It is built lazily in
// PersistentPreRunE so that "coords" and "help" work without a backend.
type app struct {
	cfg    *config.Config
	logr   *logger.Logger
	client *strapi.Client
	runs   services.RunStore
	db     *bun.DB

	logLevel string
	token    string
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	a.cfg = config.Load()
	if a.logLevel != "" {
		a.cfg.LogLevel = a.logLevel
	}
	a.logr = logger.New(a.cfg)

	token := a.cfg.StrapiToken
	if a.token != "" {
		token = a.token
	}
	a.client = strapi.NewClient(a.cfg.StrapiURL, token, a.cfg.StrapiTimeout)

	a.runs = &services.MemoryRunStore{}
	if a.cfg.DatabaseURL != "" {
		db, err := database.New(a.cfg.DatabaseURL, a.cfg)
		if err != nil {
			return withCode(exitFailure, fmt.Errorf("connect audit database: %w", err))
		}
		a.db = db
		a.runs = services.NewBunRunStore(db)
	}
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.logr != nil {
		a.logr.Sync()
	}
}

func (a *app) catalogs() *services.CatalogService {
	return services.NewCatalogService(a.client, a.cfg.CatalogPageSize, a.logr.Logger)
}

func (a *app) dateOptions() services.DateOptions {
	return services.DateOptions{
		Order:    services.ParseDateOrder(a.cfg.SurveyDateOrder),
		Date1904: a.cfg.Date1904,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "importer",
		Short:         "Import CCTV survey spreadsheets into the REST backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override LOG_LEVEL (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.token, "bearer", "", "Bearer token for the backend (default: STRAPI_TOKEN)")

	withApp := func(cmd *cobra.Command) *cobra.Command {
		cmd.PersistentPreRunE = a.init
		return cmd
	}

	root.AddCommand(
		withApp(newBOQCmd(a)),
		withApp(newLocationsCmd(a)),
		newCoordsCmd(),
		newTokenCmd(),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var ec *exitCodeError
		if errors.As(err, &ec) {
			return ec.code
		}
		return exitUsage
	}
	return exitOK
}
