package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/ganttboard/internal/analytics"
	"github.com/alexanderramin/ganttboard/internal/cli/formatter"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/planning"
)

func newSprintCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Plan and run sprints",
	}

	cmd.AddCommand(
		newSprintListCmd(app),
		newSprintAddCmd(app),
		newSprintStartCmd(app),
		newSprintCompleteCmd(app),
		newSprintRemoveCmd(app),
		newSprintPointsCmd(app),
		newSprintBurndownCmd(app),
		newSprintVelocityCmd(app),
	)

	return cmd
}

func newSprintListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List sprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatSprints(doc))
			return nil
		},
	}
}

func newSprintAddCmd(app *App) *cobra.Command {
	var goal, start, end string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Plan a sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := app.now()
			startDate, err := parseDate(start, now)
			if err != nil {
				return err
			}
			endDate, err := parseDate(end, now)
			if err != nil {
				return err
			}

			var created domain.Sprint
			err = app.apply(cmd, "sprint-add", func(doc *domain.Document) error {
				var err error
				created, err = planning.AddSprint(doc, args[0], goal, startDate, endDate)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created sprint %s [%s] %s → %s\n",
				formatter.Bold(created.Name), formatter.ShortID(created.ID), created.StartDate, created.EndDate)
			return nil
		},
	}

	cmd.Flags().StringVar(&goal, "goal", "", "Sprint goal")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD or e.g. \"next monday\")")
	cmd.Flags().StringVar(&end, "end", "", "End date, inclusive")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newSprintStartCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "start SPRINT",
		Short: "Activate a planned sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "sprint-start", func(doc *domain.Document) (string, error) {
				id, err := resolveSprint(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := planning.StartSprint(doc, id); err != nil {
					return "", err
				}
				return fmt.Sprintf("Started %s", formatter.Bold(doc.Sprint(id).Name)), nil
			})
		},
	}
}

func newSprintCompleteCmd(app *App) *cobra.Command {
	var carryOver bool

	cmd := &cobra.Command{
		Use:   "complete SPRINT",
		Short: "Close the active sprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "sprint-complete", func(doc *domain.Document) (string, error) {
				id, err := resolveSprint(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := planning.CompleteSprint(doc, id, carryOver); err != nil {
					return "", err
				}
				return fmt.Sprintf("Completed %s", formatter.Bold(doc.Sprint(id).Name)), nil
			})
		},
	}

	cmd.Flags().BoolVar(&carryOver, "carry-over", false, "Return unfinished tasks to the backlog")
	return cmd
}

func newSprintRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm SPRINT",
		Short: "Delete a sprint; its tasks return to the backlog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "sprint-rm", func(doc *domain.Document) (string, error) {
				id, err := resolveSprint(doc, args[0])
				if err != nil {
					return "", err
				}
				name := doc.Sprint(id).Name
				if err := planning.DeleteSprint(doc, id); err != nil {
					return "", err
				}
				return fmt.Sprintf("Deleted sprint %s", formatter.Bold(name)), nil
			})
		},
	}
}

func newSprintPointsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "points [SPRINT]",
		Short: "Sum story points of a sprint (default the active one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			s, err := sprintArg(doc, args)
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatPoints(s, analytics.SprintPoints(doc.TasksInSprint(s.ID))))
			return nil
		},
	}
}

func newSprintBurndownCmd(app *App) *cobra.Command {
	var unit string

	cmd := &cobra.Command{
		Use:   "burndown [SPRINT]",
		Short: "Show the burndown of a sprint (default the active one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			s, err := sprintArg(doc, args)
			if err != nil {
				return err
			}
			chart, err := analytics.Burndown(doc, s.ID, analytics.Unit(unit))
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatBurndown(chart, s))
			return nil
		},
	}

	enumFlag(cmd.Flags(), &unit, "unit", string(analytics.UnitPoints), "Remaining work measured in", unitNames)
	return cmd
}

func newSprintVelocityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "velocity",
		Short: "Show completed points per finished sprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatVelocity(analytics.Velocity(doc)))
			return nil
		},
	}
}

// sprintArg resolves the optional SPRINT argument, falling back to the
// active sprint.
func sprintArg(doc *domain.Document, args []string) (*domain.Sprint, error) {
	if len(args) == 0 {
		if s := planning.ActiveSprint(doc); s != nil {
			return s, nil
		}
		return nil, fmt.Errorf("no active sprint; name one")
	}
	id, err := resolveSprint(doc, args[0])
	if err != nil {
		return nil, err
	}
	return doc.Sprint(id), nil
}
