package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/cmorante/poaplan/internal/catalog"
	"github.com/cmorante/poaplan/internal/cli"
	"github.com/cmorante/poaplan/internal/db"
	"github.com/cmorante/poaplan/internal/orchestrator"
	"github.com/cmorante/poaplan/internal/planservice"
	"github.com/cmorante/poaplan/internal/repository"
	"github.com/cmorante/poaplan/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.poaplan/poaplan.db
	dbPath := os.Getenv("POAPLAN_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".poaplan", "poaplan.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	planRepo := repository.NewSQLitePlanRepo(database)
	subRepo := repository.NewSQLiteSubmissionRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Wire the remote planning-service client. Diagnostics go to stderr
	// only when explicitly enabled so they never pollute command output.
	cfg := planservice.LoadConfig()
	var observer planservice.Observer = planservice.NoopObserver{}
	var useCaseLog io.Writer
	logger := slog.New(slog.DiscardHandler)
	if cfg.LogCalls {
		observer = planservice.NewLogObserver(os.Stderr)
		useCaseLog = os.Stderr
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	client := planservice.NewClient(cfg, observer)

	lineCache := catalog.NewLineCache()
	filter := catalog.NewFilter(lineCache, catalog.RemoteResolver(client), logger)

	sink := &cli.ProgressSink{}
	orch := orchestrator.New(client,
		orchestrator.WithLogger(logger),
		orchestrator.WithProgress(sink.Emit),
	)

	useCaseObserver := service.NewLogUseCaseObserver(useCaseLog)
	plans := service.NewPlanService(planRepo, uow, client, useCaseObserver)

	app := &cli.App{
		Plans:    plans,
		Submits:  service.NewSubmitService(plans, subRepo, uow, orch, useCaseObserver),
		RefData:  service.NewRefDataService(client, lineCache, filter, useCaseObserver),
		Progress: sink,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	return cli.NewRootCmd(app).Execute()
}
