package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/ganttboard/internal/cli"
	"github.com/alexanderramin/ganttboard/internal/cli/formatter"
	"github.com/alexanderramin/ganttboard/internal/config"
	"github.com/alexanderramin/ganttboard/internal/db"
	"github.com/alexanderramin/ganttboard/internal/logging"
	"github.com/alexanderramin/ganttboard/internal/repository"
	"github.com/alexanderramin/ganttboard/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Colors only when stdout is a terminal.
	fd := os.Stdout.Fd()
	formatter.SetPlain(!isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd))

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i].Close()
		}
	}()

	app := &cli.App{}
	app.Open = func(configPath string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger, logCloser := logging.New(cfg)
		closers = append(closers, logCloser)

		var store repository.DocumentStore
		switch cfg.Store {
		case config.StoreFile:
			repo, err := repository.NewFileDocumentRepo(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("opening data directory: %w", err)
			}
			store = repo
			app.WatchDir = repo.Dir()
		default:
			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			closers = append(closers, database)
			store = repository.NewSQLiteDocumentRepo(database, db.NewTxBatch(database))
		}

		logger.Debug("store opened", "store", cfg.Store, "key", cfg.DocumentKey)
		app.Workspace = service.NewWorkspace(store, service.Options{
			Key:         cfg.DocumentKey,
			BackupLimit: cfg.BackupLimit,
			Logger:      logger,
		}, service.NewLogUseCaseObserver(logger))
		return nil
	}

	return cli.NewRootCmd(app).Execute()
}
