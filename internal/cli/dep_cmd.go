package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/ganttboard/internal/analytics"
	"github.com/alexanderramin/ganttboard/internal/cli/formatter"
	"github.com/alexanderramin/ganttboard/internal/dependency"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/planning"
)

func newDepCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage task dependencies",
	}

	cmd.AddCommand(
		newDepEdgeCmd(app, "add", "Make BEFORE a predecessor of AFTER", dependency.AddDependency),
		newDepEdgeCmd(app, "rm", "Remove the dependency of AFTER on BEFORE", dependency.RemoveDependency),
		newDepListCmd(app),
	)

	return cmd
}

func newDepEdgeCmd(app *App, verb, short string, op func(doc *domain.Document, fromID, toID string) error) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " BEFORE AFTER",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "dep-"+verb, func(doc *domain.Document) (string, error) {
				from, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				to, err := resolveTask(doc, args[1])
				if err != nil {
					return "", err
				}
				if err := op(doc, from, to); err != nil {
					return "", err
				}
				arrow := "→"
				if verb == "rm" {
					arrow = "↛"
				}
				return fmt.Sprintf("%s %s %s", formatter.Bold(doc.Task(from).Name), arrow, formatter.Bold(doc.Task(to).Name)), nil
			})
		},
	}
}

func newDepListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list [TASK]",
		Short: "Show a task's dependencies, or a dependency-respecting order of all tasks",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				order, err := dependency.Order(doc)
				if err != nil {
					return err
				}
				fmt.Fprint(out(cmd), formatter.FormatOrder(doc, order))
				return nil
			}
			id, err := resolveTask(doc, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatDependencies(doc, id,
				dependency.Predecessors(doc, id), dependency.Successors(doc, id)))
			return nil
		},
	}
}

func newMilestoneCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Manage milestones and their health",
	}

	cmd.AddCommand(
		newMilestonePromoteCmd(app),
		newMilestoneDemoteCmd(app),
		newMilestoneDepCmd(app, "add-dep", "Track TASK as part of MILESTONE", dependency.AddMilestoneDependency),
		newMilestoneDepCmd(app, "rm-dep", "Stop tracking TASK for MILESTONE", dependency.RemoveMilestoneDependency),
		newMilestoneOverrideCmd(app),
		newMilestoneStatusCmd(app),
	)

	return cmd
}

func newMilestonePromoteCmd(app *App) *cobra.Command {
	var deadline string

	cmd := &cobra.Command{
		Use:   "promote TASK",
		Short: "Turn a task into a milestone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var due *string
			if deadline != "" {
				d, err := parseDate(deadline, app.now())
				if err != nil {
					return err
				}
				due = &d
			}
			return app.applyReport(cmd, "milestone-promote", func(doc *domain.Document) (string, error) {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := planning.PromoteMilestone(doc, id, due); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s is now a milestone", formatter.Bold(doc.Task(id).Name)), nil
			})
		},
	}

	cmd.Flags().StringVar(&deadline, "deadline", "", "Deadline (YYYY-MM-DD or e.g. \"in 3 weeks\")")
	return cmd
}

func newMilestoneDemoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "demote MILESTONE",
		Short: "Turn a milestone back into a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "milestone-demote", func(doc *domain.Document) (string, error) {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := planning.DemoteMilestone(doc, id); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s is a regular task again", formatter.Bold(doc.Task(id).Name)), nil
			})
		},
	}
}

func newMilestoneDepCmd(app *App, verb, short string, op func(doc *domain.Document, milestoneID, taskID string) error) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " MILESTONE TASK",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "milestone-"+verb, func(doc *domain.Document) (string, error) {
				mid, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				tid, err := resolveTask(doc, args[1])
				if err != nil {
					return "", err
				}
				if err := op(doc, mid, tid); err != nil {
					return "", err
				}
				m := doc.Task(mid)
				return fmt.Sprintf("%s tracks %d tasks", formatter.Bold(m.Name), len(m.MilestoneDependencies)), nil
			})
		},
	}
}

func newMilestoneOverrideCmd(app *App) *cobra.Command {
	var status string
	var progress float64
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "override MILESTONE",
		Short: "Pin a milestone's status or progress instead of deriving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var st *domain.MilestoneStatus
			var pr *float64
			if !clearAll {
				if cmd.Flags().Changed("status") {
					s := domain.MilestoneStatus(status)
					st = &s
				}
				if cmd.Flags().Changed("progress") {
					pr = &progress
				}
				if st == nil && pr == nil {
					return fmt.Errorf("pass --status, --progress or --clear")
				}
			}
			return app.applyReport(cmd, "milestone-override", func(doc *domain.Document) (string, error) {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := planning.SetMilestoneOverrides(doc, id, st, pr); err != nil {
					return "", err
				}
				if clearAll {
					return fmt.Sprintf("Cleared overrides on %s", formatter.Bold(doc.Task(id).Name)), nil
				}
				return fmt.Sprintf("Overrides set on %s", formatter.Bold(doc.Task(id).Name)), nil
			})
		},
	}

	enumFlag(cmd.Flags(), &status, "status", "", "Pinned status", milestoneNames)
	cmd.Flags().Float64Var(&progress, "progress", 0, "Progress percentage 0-100")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove both overrides")
	return cmd
}

func newMilestoneStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status [MILESTONE]",
		Short: "Show derived milestone health",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			now := app.now()
			if len(args) == 1 {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return err
				}
				r, err := analytics.MilestoneStatus(doc, id, now)
				if err != nil {
					return err
				}
				fmt.Fprint(out(cmd), formatter.FormatMilestone(r, doc))
				return nil
			}

			var reports []analytics.MilestoneReport
			for _, t := range doc.Tasks {
				if !t.IsMilestone {
					continue
				}
				r, err := analytics.MilestoneStatus(doc, t.ID, now)
				if err != nil {
					return err
				}
				reports = append(reports, r)
			}
			if len(reports) == 0 {
				fmt.Fprintln(out(cmd), formatter.Dim("No milestones yet."))
				return nil
			}
			fmt.Fprint(out(cmd), formatter.FormatMilestones(reports, doc))
			return nil
		},
	}
}
