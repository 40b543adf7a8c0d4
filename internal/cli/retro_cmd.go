package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/ganttboard/internal/cli/formatter"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/retro"
)

func newRetroCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retro",
		Short: "Run sprint retrospectives",
	}

	cmd.AddCommand(
		newRetroAddCmd(app),
		newRetroShowCmd(app),
		newRetroItemCmd(app),
		newRetroVoteCmd(app),
		newRetroGroupCmd(app),
		newRetroItemOpCmd(app, "ungroup", "Detach an item from its group", retro.Ungroup),
		newRetroItemOpCmd(app, "rm-item", "Delete an item; grouped items are released", retro.RemoveItem),
	)

	return cmd
}

func newRetroAddCmd(app *App) *cobra.Command {
	var title, sprint string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Start a retrospective board",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && sprint == "" {
				title = "Retrospective " + domain.FormatDate(app.now())
			}
			var created domain.Retrospective
			err := app.apply(cmd, "retro-add", func(doc *domain.Document) error {
				var sprintID *string
				if sprint != "" {
					id, err := resolveSprint(doc, sprint)
					if err != nil {
						return err
					}
					sprintID = &id
				}
				var err error
				created, err = retro.AddRetrospective(doc, title, sprintID)
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Created %s [%s]\n", formatter.Bold(created.Title), formatter.ShortID(created.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Board title (default from the sprint)")
	cmd.Flags().StringVar(&sprint, "sprint", "", "Sprint under review")
	return cmd
}

func newRetroShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show RETRO",
		Short: "Show a retrospective board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := app.snapshot()
			if err != nil {
				return err
			}
			id, err := resolveRetro(doc, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(out(cmd), formatter.FormatRetrospective(doc.Retrospective(id)))
			return nil
		},
	}
}

func newRetroItemCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "item RETRO COLUMN TEXT",
		Short: "Add a card (columns: went-well, to-improve, action-items)",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "retro-item", func(doc *domain.Document) (string, error) {
				id, err := resolveRetro(doc, args[0])
				if err != nil {
					return "", err
				}
				it, err := retro.AddItem(doc, id, args[1], strings.Join(args[2:], " "))
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("Added %q to %s [%s]", it.Text, it.Column, formatter.ShortID(it.ID)), nil
			})
		},
	}
}

func newRetroVoteCmd(app *App) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "vote RETRO ITEM",
		Short: "Vote for a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta := 1
			if down {
				delta = -1
			}
			return app.applyReport(cmd, "retro-vote", func(doc *domain.Document) (string, error) {
				rid, iid, err := resolveRetroArgs(doc, args[0], args[1])
				if err != nil {
					return "", err
				}
				if err := retro.Vote(doc, rid, iid, delta); err != nil {
					return "", err
				}
				for _, it := range doc.Retrospective(rid).Items {
					if it.ID == iid {
						return fmt.Sprintf("%q has %d votes", it.Text, it.Votes), nil
					}
				}
				return "", nil
			})
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "Remove a vote instead")
	return cmd
}

func newRetroGroupCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "group RETRO PARENT CHILD",
		Short: "Group CHILD under PARENT",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "retro-group", func(doc *domain.Document) (string, error) {
				rid, parent, err := resolveRetroArgs(doc, args[0], args[1])
				if err != nil {
					return "", err
				}
				child, err := resolveRetroItem(doc.Retrospective(rid), args[2])
				if err != nil {
					return "", err
				}
				if err := retro.Group(doc, rid, parent, child); err != nil {
					return "", err
				}
				return "Grouped", nil
			})
		},
	}
}

func newRetroItemOpCmd(app *App, verb, short string, op func(doc *domain.Document, retroID, itemID string) error) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " RETRO ITEM",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.applyReport(cmd, "retro-"+verb, func(doc *domain.Document) (string, error) {
				rid, iid, err := resolveRetroArgs(doc, args[0], args[1])
				if err != nil {
					return "", err
				}
				if err := op(doc, rid, iid); err != nil {
					return "", err
				}
				return "Done", nil
			})
		},
	}
}

func resolveRetroArgs(doc *domain.Document, retroArg, itemArg string) (string, string, error) {
	rid, err := resolveRetro(doc, retroArg)
	if err != nil {
		return "", "", err
	}
	iid, err := resolveRetroItem(doc.Retrospective(rid), itemArg)
	if err != nil {
		return "", "", err
	}
	return rid, iid, nil
}
