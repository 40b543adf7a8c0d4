package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/migrate"
	"github.com/alexanderramin/ganttboard/internal/service"
)

// App holds what CLI commands operate on. Open, when set, wires Workspace
// (and WatchDir) from the --config path before any command runs.
type App struct {
	Workspace *service.Workspace
	WatchDir  string
	Now       func() time.Time
	Open      func(configPath string) error

	load service.LoadResult
}

// NewRootCmd creates the top-level "ganttboard" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "ganttboard",
		Short:         "Plan projects on a shared timeline, board and sprint backlog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			if app.Open != nil {
				if err := app.Open(configPath); err != nil {
					return err
				}
			}
			if app.Workspace == nil {
				return errors.New("no document store configured")
			}
			return app.loadDocument(cmd)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (YAML or TOML)")

	root.AddCommand(
		newInitCmd(app),
		newMigrateCmd(app),
		newImportCmd(app),
		newExportCmd(app),
		newValidateCmd(app),
		newStatusCmd(app),
		newBackupsCmd(app),
		newWatchCmd(app),
		newTaskCmd(app),
		newDepCmd(app),
		newMilestoneCmd(app),
		newColumnCmd(app),
		newCategoryCmd(app),
		newSprintCmd(app),
		newTimeCmd(app),
		newRetroCmd(app),
	)

	return root
}

func (a *App) loadDocument(cmd *cobra.Command) error {
	res, err := a.Workspace.Load(cmd.Context())
	a.load = res
	switch {
	case errors.Is(err, migrate.ErrMigrationGap), errors.Is(err, migrate.ErrFutureVersion):
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v; the document is read-only\n", err)
		return nil
	case err != nil:
		return err
	}
	if res.FellBack {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: stored document is unreadable (%v); starting from a fresh document\n", res.Cause)
	}
	return nil
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *App) apply(cmd *cobra.Command, name string, fn func(doc *domain.Document) error) error {
	return a.Workspace.Apply(cmd.Context(), name, fn)
}

// applyReport runs a mutation and prints the message it produced once the
// document has been saved.
func (a *App) applyReport(cmd *cobra.Command, name string, fn func(doc *domain.Document) (string, error)) error {
	var msg string
	err := a.apply(cmd, name, func(doc *domain.Document) error {
		var err error
		msg, err = fn(doc)
		return err
	})
	if err != nil {
		return err
	}
	if msg != "" {
		fmt.Fprintln(out(cmd), msg)
	}
	return nil
}

func (a *App) snapshot() (*domain.Document, error) {
	return a.Workspace.Snapshot()
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
