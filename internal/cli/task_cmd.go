package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/ganttboard/internal/board"
	"github.com/alexanderramin/ganttboard/internal/cli/formatter"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/planning"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskEditCmd(app),
		newTaskRemoveCmd(app),
		newTaskProgressCmd(app),
		newTaskMoveCmd(app),
		newTaskAssignCmd(app),
		newTaskBacklogCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var category, assignee, priority, sprint string
	var points int
	var planned, reality []int

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := planning.TaskInput{
				Name:     strings.Join(args, " "),
				Category: category,
				Assignee: assignee,
				Priority: domain.Priority(priority),
				Planned:  planned,
				Reality:  reality,
			}
			if cmd.Flags().Changed("points") {
				in.StoryPoints = &points
			}

			var created domain.Task
			err := app.apply(cmd, "task-add", func(doc *domain.Document) error {
				if sprint != "" {
					id, err := resolveSprint(doc, sprint)
					if err != nil {
						return err
					}
					in.SprintID = &id
				}
				var err error
				created, err = planning.CreateTask(doc, in, app.now())
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out(cmd), "Created task %s [%s] in %s\n",
				formatter.Bold(created.Name), formatter.ShortID(created.ID), created.Board.ColumnID)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Category name")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Team member")
	enumFlag(cmd.Flags(), &priority, "priority", "", "Priority, default medium", priorityNames)
	cmd.Flags().IntVar(&points, "points", 0, "Story points")
	cmd.Flags().StringVar(&sprint, "sprint", "", "Sprint to add the task to")
	cmd.Flags().IntSliceVar(&planned, "planned", nil, "Planned weeks, e.g. 1,2,3")
	cmd.Flags().IntSliceVar(&reality, "reality", nil, "Weeks actually worked")
	return cmd
}

func newTaskListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks by board column",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatTaskList(doc))
			return nil
		},
	}
}

func newTaskEditCmd(app *App) *cobra.Command {
	var name, category, assignee, priority string
	var points int
	var clearPoints bool

	cmd := &cobra.Command{
		Use:   "edit TASK",
		Short: "Update a task's name, category, assignee, priority or points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch planning.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("category") {
				patch.Category = &category
			}
			if flags.Changed("assignee") {
				patch.Assignee = &assignee
			}
			if flags.Changed("priority") {
				p := domain.Priority(priority)
				patch.Priority = &p
			}
			switch {
			case clearPoints:
				var none *int
				patch.StoryPoints = &none
			case flags.Changed("points"):
				pts := &points
				patch.StoryPoints = &pts
			}

			return app.applyReport(cmd, "task-edit", func(doc *domain.Document) (string, error) {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := planning.UpdateTask(doc, id, patch); err != nil {
					return "", err
				}
				return "Updated " + formatter.Bold(doc.Task(id).Name), nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&category, "category", "", "Category name")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Team member")
	enumFlag(cmd.Flags(), &priority, "priority", "", "Priority", priorityNames)
	cmd.Flags().IntVar(&points, "points", 0, "Story points")
	cmd.Flags().BoolVar(&clearPoints, "clear-points", false, "Mark the task unestimated")
	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm TASK",
		Aliases: []string{"remove"},
		Short:   "Delete a task and every reference to it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			err := app.apply(cmd, "task-rm", func(doc *domain.Document) error {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return err
				}
				name = doc.Task(id).Name
				return planning.DeleteTask(doc, id)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Deleted task %s\n", formatter.Bold(name))
			return nil
		},
	}
}

func newTaskProgressCmd(app *App) *cobra.Command {
	var planned, reality []int

	cmd := &cobra.Command{
		Use:   "progress TASK",
		Short: "Set planned and worked weeks; the board column follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("planned") && !cmd.Flags().Changed("reality") {
				return fmt.Errorf("nothing to change: pass --planned and/or --reality")
			}
			return app.applyReport(cmd, "task-progress", func(doc *domain.Document) (string, error) {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				t := doc.Task(id)
				p, r := t.Planned, t.Reality
				if cmd.Flags().Changed("planned") {
					p = planned
				}
				if cmd.Flags().Changed("reality") {
					r = reality
				}
				name, before := t.Name, t.Board.ColumnID
				if err := board.SyncGanttToKanban(doc, id, p, r, app.now()); err != nil {
					return "", err
				}
				after := doc.Task(id).Board.ColumnID
				if after != before {
					return fmt.Sprintf("%s moved %s → %s", formatter.Bold(name), before, after), nil
				}
				return fmt.Sprintf("%s stays in %s", formatter.Bold(name), after), nil
			})
		},
	}

	cmd.Flags().IntSliceVar(&planned, "planned", nil, "Planned weeks, e.g. 1,2,3 (empty to clear)")
	cmd.Flags().IntSliceVar(&reality, "reality", nil, "Weeks actually worked")
	return cmd
}

func newTaskMoveCmd(app *App) *cobra.Command {
	var position int

	cmd := &cobra.Command{
		Use:   "move TASK COLUMN",
		Short: "Move a task on the board; the timeline follows",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "task-move", func(doc *domain.Document) (string, error) {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				col, err := resolveColumn(doc, args[1])
				if err != nil {
					return "", err
				}
				pos := position
				if pos < 0 {
					pos = len(doc.Tasks)
				}
				if err := board.MoveTask(doc, id, col, pos, app.now()); err != nil {
					return "", err
				}
				t := doc.Task(id)
				return fmt.Sprintf("Moved %s to %s (position %d)", formatter.Bold(t.Name), col, t.Board.Position), nil
			})
		},
	}

	cmd.Flags().IntVar(&position, "position", -1, "Position within the column (default end)")
	return cmd
}

func newTaskAssignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "assign TASK [SPRINT]",
		Short: "Put a task into a sprint, or back into the backlog without SPRINT",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "task-assign", func(doc *domain.Document) (string, error) {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				var sprintID *string
				target := "the backlog"
				if len(args) == 2 {
					sid, err := resolveSprint(doc, args[1])
					if err != nil {
						return "", err
					}
					sprintID = &sid
					target = doc.Sprint(sid).Name
				}
				if err := planning.AssignSprint(doc, id, sprintID); err != nil {
					return "", err
				}
				return fmt.Sprintf("%s → %s", formatter.Bold(doc.Task(id).Name), target), nil
			})
		},
	}
}

func newTaskBacklogCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rank TASK POSITION",
		Short: "Reorder a task within its backlog group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pos int
			if _, err := fmt.Sscanf(args[1], "%d", &pos); err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			return app.applyReport(cmd, "task-rank", func(doc *domain.Document) (string, error) {
				id, err := resolveTask(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := planning.MoveInBacklog(doc, id, pos); err != nil {
					return "", err
				}
				t := doc.Task(id)
				return fmt.Sprintf("%s is now #%d in its backlog", formatter.Bold(t.Name), t.BacklogPosition+1), nil
			})
		},
	}
}
