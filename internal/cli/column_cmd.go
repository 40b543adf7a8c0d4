package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/ganttboard/internal/board"
	"github.com/alexanderramin/ganttboard/internal/cli/formatter"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/planning"
)

func newColumnCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Manage workflow columns",
	}

	cmd.AddCommand(
		newColumnListCmd(app),
		newColumnAddCmd(app),
		newColumnRenameCmd(app),
		newColumnMoveCmd(app),
		newColumnRemoveCmd(app),
	)

	return cmd
}

func newColumnListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List workflow columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatColumns(doc))
			return nil
		},
	}
}

func newColumnAddCmd(app *App) *cobra.Command {
	var color, after string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a custom column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "column-add", func(doc *domain.Document) (string, error) {
				afterID := ""
				if after != "" {
					var err error
					if afterID, err = resolveColumn(doc, after); err != nil {
						return "", err
					}
				}
				c, err := board.AddColumn(doc, args[0], color, afterID)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Added column %s [%s]", formatter.Bold(c.Name), c.ID), nil
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", "#d3869b", "Column color")
	cmd.Flags().StringVar(&after, "after", "", "Insert after this column (default last)")
	return cmd
}

func newColumnRenameCmd(app *App) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "rename COLUMN NAME",
		Short: "Rename or recolor a column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "column-rename", func(doc *domain.Document) (string, error) {
				id, err := resolveColumn(doc, args[0])
				if err != nil {
					return "", err
				}
				c := color
				if c == "" {
					c = doc.Column(id).Color
				}
				if err := board.RenameColumn(doc, id, args[1], c); err != nil {
					return "", err
				}
				return fmt.Sprintf("Renamed column %s to %s", id, formatter.Bold(args[1])), nil
			})
		},
	}

	cmd.Flags().StringVar(&color, "color", "", "New color")
	return cmd
}

func newColumnMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move COLUMN POSITION",
		Short: "Reorder a column on the board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			return app.applyReport(cmd, "column-move", func(doc *domain.Document) (string, error) {
				id, err := resolveColumn(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := board.ReorderColumn(doc, id, pos); err != nil {
					return "", err
				}
				return fmt.Sprintf("Moved column %s to position %d", id, doc.Column(id).Position), nil
			})
		},
	}
}

func newColumnRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm COLUMN",
		Short: "Remove a custom column; its tasks return to their derived column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "column-rm", func(doc *domain.Document) (string, error) {
				id, err := resolveColumn(doc, args[0])
				if err != nil {
					return "", err
				}
				if err := board.RemoveColumn(doc, id); err != nil {
					return "", err
				}
				return fmt.Sprintf("Removed column %s", id), nil
			})
		},
	}
}

func newCategoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage task categories",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:     "list",
			Aliases: []string{"ls"},
			Short:   "List categories",
			RunE: func(cmd *cobra.Command, args []string) error {
				doc, err := app.snapshot()
				if err != nil {
					return err
				}
				names := make([]string, 0, len(doc.Categories))
				for name := range doc.Categories {
					names = append(names, name)
				}
				sort.Strings(names)
				rows := make([][]string, 0, len(names))
				for _, name := range names {
					used := 0
					for _, t := range doc.Tasks {
						if t.Category == name {
							used++
						}
					}
					rows = append(rows, []string{name, doc.Categories[name], strconv.Itoa(used)})
				}
				fmt.Fprint(out(cmd), formatter.RenderTable([]string{"CATEGORY", "COLOR", "TASKS"}, rows))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set NAME COLOR",
			Short: "Add or recolor a category",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.applyReport(cmd, "category-set", func(doc *domain.Document) (string, error) {
					if err := planning.SetCategory(doc, args[0], args[1]); err != nil {
						return "", err
					}
					return fmt.Sprintf("Category %s set to %s", formatter.Bold(args[0]), args[1]), nil
				})
			},
		},
		&cobra.Command{
			Use:   "rm NAME",
			Short: "Remove a category; its tasks become uncategorized",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.applyReport(cmd, "category-rm", func(doc *domain.Document) (string, error) {
					if _, ok := doc.Categories[args[0]]; !ok {
						return "", fmt.Errorf("category not found: %q", args[0])
					}
					planning.RemoveCategory(doc, args[0])
					return fmt.Sprintf("Removed category %s", formatter.Bold(args[0])), nil
				})
			},
		},
	)

	return cmd
}
