package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/ganttboard/internal/cli/formatter"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/timelog"
)

func newTimeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "time",
		Short: "Log and total working time",
	}

	cmd.AddCommand(
		newTimeLogCmd(app),
		newTimeTotalsCmd(app),
		newTimeRemoveCmd(app),
	)

	return cmd
}

func newTimeLogCmd(app *App) *cobra.Command {
	var date, start, end, note string
	var billable bool

	cmd := &cobra.Command{
		Use:   "log [TASK]",
		Short: "Record a work session, optionally against a task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDate(date, app.now())
			if err != nil {
				return err
			}
			var entry domain.TimeEntry
			err = app.apply(cmd, "time-log", func(doc *domain.Document) error {
				in := timelog.EntryInput{Date: day, StartTime: start, EndTime: end, Billable: billable, Note: note}
				if len(args) == 1 {
					id, err := resolveTask(doc, args[0])
					if err != nil {
						return err
					}
					in.TaskID = id
				}
				var err error
				entry, err = timelog.AddEntry(doc, in)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Logged %s on %s [%s]\n",
				formatter.Bold(timelog.FormatMinutes(entry.DurationMinutes)), entry.Date, formatter.ShortID(entry.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "today", "Day worked (YYYY-MM-DD or e.g. \"yesterday\")")
	cmd.Flags().StringVar(&start, "start", "", "Start time HH:MM")
	cmd.Flags().StringVar(&end, "end", "", "End time HH:MM")
	cmd.Flags().BoolVar(&billable, "billable", false, "Mark the session billable")
	cmd.Flags().StringVar(&note, "note", "", "Free-form note")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newTimeTotalsCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Show logged time per task",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := app.now()
			var err error
			if from != "" {
				if from, err = parseDate(from, now); err != nil {
					return err
				}
			}
			if to != "" {
				if to, err = parseDate(to, now); err != nil {
					return err
				}
			}
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatTimeTotals(timelog.TotalsByTask(doc), timelog.BillableMinutes(doc, from, to)))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Billable window start (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "Billable window end (inclusive)")
	return cmd
}

func newTimeRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ENTRY",
		Short: "Delete a time entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "time-rm", func(doc *domain.Document) (string, error) {
				id, err := resolveEntry(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := timelog.RemoveEntry(doc, id); err != nil {
					return "", err
				}
				return fmt.Sprintf("Deleted time entry %s", formatter.ShortID(id)), nil
			})
		},
	}
}
