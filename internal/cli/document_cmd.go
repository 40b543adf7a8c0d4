package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/alexanderramin/ganttboard/internal/analytics"
	"github.com/alexanderramin/ganttboard/internal/cli/formatter"
	"github.com/alexanderramin/ganttboard/internal/dependency"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/migrate"
	"github.com/alexanderramin/ganttboard/internal/notify"
)

func newInitCmd(app *App) *cobra.Command {
	var title, start string
	var weeks int
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a fresh project document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.load.Created && !force {
				return fmt.Errorf("document %q already exists (use --force to start over)", app.Workspace.Key())
			}
			startDate := domain.FormatDate(app.now())
			if start != "" {
				var err error
				if startDate, err = parseDate(start, app.now()); err != nil {
					return err
				}
			}
			if weeks < 1 {
				return fmt.Errorf("--weeks must be at least 1")
			}
			startTime, err := domain.ParseDate(startDate)
			if err != nil {
				return err
			}

			err = app.apply(cmd, "init", func(doc *domain.Document) error {
				*doc = *domain.NewDocument(startTime)
				doc.Project.Title = title
				doc.Project.TotalWeeks = weeks
				doc.Project.EndDate = domain.FormatDate(domain.WeekEnd(startTime, weeks))
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Initialized %s: %d weeks from %s\n", formatter.Bold(title), weeks, startDate)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "New Project", "Project title")
	cmd.Flags().StringVar(&start, "start", "", "Project start date (default today)")
	cmd.Flags().IntVar(&weeks, "weeks", 12, "Number of timeline weeks")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing document")
	return cmd
}

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Bring the stored document to the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.load
			key := app.Workspace.Key()
			if err := app.Workspace.Stale(); err != nil {
				return fmt.Errorf("migrating %q stopped at version %d: %w", key, res.Version, err)
			}
			switch {
			case res.Created:
				fmt.Fprintf(out(cmd), "Nothing stored under %q yet\n", key)
			case res.FellBack:
				fmt.Fprintf(out(cmd), "Stored document %q is unreadable; run init --force or import a backup\n", key)
			case res.FromVersion != migrate.CurrentVersion:
				fmt.Fprintf(out(cmd), "Migrated %q from version %d to %d\n", key, res.FromVersion, res.Version)
			default:
				fmt.Fprintf(out(cmd), "Document %q is already at version %d\n", key, res.Version)
			}
			if res.Repaired > 0 {
				fmt.Fprintf(out(cmd), "Removed %d invalid dependency entries\n", res.Repaired)
			}
			return nil
		},
	}
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace the document with an exported or hand-edited file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			res, err := app.Workspace.Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Imported %d tasks (from schema version %d)\n", res.Tasks, res.FromVersion)
			if res.Repaired > 0 {
				fmt.Fprintf(out(cmd), "Removed %d invalid dependency entries\n", res.Repaired)
			}
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the document as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := app.Workspace.Export()
			if err != nil {
				return err
			}
			data = append(data, '\n')
			if output == "" || output == "-" {
				_, err := out(cmd).Write(data)
				return err
			}
			if err := atomic.WriteFile(output, bytes.NewReader(data)); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the document invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			problems := domain.Validate(doc)
			if _, err := dependency.Order(doc); err != nil {
				problems = append(problems, err)
			}
			if len(problems) == 0 {
				fmt.Fprintf(out(cmd), "%s %d tasks, schema version %d\n",
					formatter.StyleGreen.Render("✔ Document OK:"), len(doc.Tasks), doc.Version)
				return nil
			}
			for _, p := range problems {
				fmt.Fprintf(out(cmd), "%s %v\n", formatter.StyleRed.Render("✖"), p)
			}
			return fmt.Errorf("document has %d problems", len(problems))
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project progress, columns, milestones and blocked tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatSummary(analytics.ProjectSummary(doc, app.now()), doc))
			return nil
		},
	}
}

func newBackupsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "List the backup ring",
		RunE: func(cmd *cobra.Command, args []string) error {
			ring, err := app.Workspace.Backups(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatBackups(ring, app.now()))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "restore INDEX",
		Short: "Replace the document with a backup entry (see 'backups' for indexes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid backup index %q", args[0])
			}
			res, err := app.Workspace.Restore(cmd.Context(), index)
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Restored backup %d (%d tasks)\n", index, res.Tasks)
			return nil
		},
	})
	return cmd
}

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow changes written to the document by other processes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.WatchDir == "" {
				return errors.New("watch needs the file store (set store: file)")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w, err := notify.NewWatcher()
			if err != nil {
				return err
			}
			if err := w.Start(app.WatchDir); err != nil {
				return err
			}
			defer w.Stop()
			go func() {
				for err := range w.Errors() {
					fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
				}
			}()

			fmt.Fprintf(out(cmd), "Watching %s for changes to %q (Ctrl-C to stop)\n", app.WatchDir, app.Workspace.Key())
			err = app.Workspace.Follow(ctx, w.Changes())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
