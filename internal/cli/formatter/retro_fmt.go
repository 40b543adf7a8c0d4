package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/retro"
)

var retroColumnTitles = []struct{ id, title string }{
	{domain.RetroWentWell, "Went well"},
	{domain.RetroToImprove, "To improve"},
	{domain.RetroActionItem, "Action items"},
}

// FormatRetrospective renders a retrospective board column by column with
// grouped items indented under their parent.
func FormatRetrospective(r *domain.Retrospective) string {
	var b strings.Builder
	b.WriteString(Header(r.Title))
	b.WriteString("\n")
	for _, col := range retroColumnTitles {
		items := retro.ColumnItems(r, col.id)
		fmt.Fprintf(&b, "%s\n", Bold(col.title))
		if len(items) == 0 {
			fmt.Fprintf(&b, "  %s\n", Dim("empty"))
			continue
		}
		children := make(map[string][]domain.RetroItem)
		for _, it := range items {
			if it.GroupID != nil {
				children[*it.GroupID] = append(children[*it.GroupID], it)
			}
		}
		for _, it := range items {
			if it.GroupID != nil {
				continue
			}
			fmt.Fprintf(&b, "  %s %s %s\n", votes(it.Votes), it.Text, Dim(ShortID(it.ID)))
			for _, c := range children[it.ID] {
				fmt.Fprintf(&b, "      %s %s %s\n", votes(c.Votes), c.Text, Dim(ShortID(c.ID)))
			}
		}
	}
	return b.String()
}

func votes(n int) string {
	s := fmt.Sprintf("+%d", n)
	if n == 0 {
		return Dim(s)
	}
	return StyleGreen.Render(s)
}
