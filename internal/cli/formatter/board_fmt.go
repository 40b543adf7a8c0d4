package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/ganttboard/internal/board"
	"github.com/alexanderramin/ganttboard/internal/domain"
)

// FormatTaskList renders every task grouped by workflow column in board order.
func FormatTaskList(doc *domain.Document) string {
	if len(doc.Tasks) == 0 {
		return Dim("No tasks yet.") + "\n"
	}
	rows := make([][]string, 0, len(doc.Tasks))
	for _, c := range orderedColumns(doc) {
		for _, id := range board.ColumnTasks(doc, c.ID) {
			t := doc.Task(id)
			name := t.Name
			if t.IsMilestone {
				name = StylePurple.Render("◆ ") + name
			}
			rows = append(rows, []string{
				Dim(ShortID(t.ID)),
				name,
				ColumnLabel(doc.Column(c.ID)),
				PriorityLabel(t.Priority),
				points(t.StoryPoints),
				sprintName(doc, t.SprintID),
				weeks(t.Planned),
				weeks(t.Reality),
			})
		}
	}
	return RenderTable([]string{"ID", "NAME", "COLUMN", "PRIORITY", "PTS", "SPRINT", "PLANNED", "REALITY"}, rows)
}

// FormatColumns renders the workflow with task counts.
func FormatColumns(doc *domain.Document) string {
	rows := make([][]string, 0, len(doc.Workflow))
	for _, c := range orderedColumns(doc) {
		protected := ""
		if c.IsProtected() {
			protected = Dim("protected")
		}
		rows = append(rows, []string{
			c.ID,
			ColumnLabel(doc.Column(c.ID)),
			fmt.Sprintf("%d", len(board.ColumnTasks(doc, c.ID))),
			protected,
		})
	}
	return RenderTable([]string{"ID", "NAME", "TASKS", ""}, rows)
}

// FormatDependencies renders the predecessors and successors of one task.
func FormatDependencies(doc *domain.Document, id string, preds, succs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Bold(taskName(doc, id)), Dim(ShortID(id)))
	writeList := func(label string, ids []string) {
		fmt.Fprintf(&b, "  %s\n", label)
		if len(ids) == 0 {
			fmt.Fprintf(&b, "    %s\n", Dim("none"))
		}
		for _, p := range ids {
			mark := " "
			if t := doc.Task(p); t != nil && t.IsDone() {
				mark = StyleGreen.Render("✔")
			}
			fmt.Fprintf(&b, "    %s %s %s\n", mark, taskName(doc, p), Dim(ShortID(p)))
		}
	}
	writeList("after:", preds)
	writeList("before:", succs)
	return b.String()
}

// FormatOrder renders a dependency-respecting task order.
func FormatOrder(doc *domain.Document, order []string) string {
	var b strings.Builder
	for i, id := range order {
		fmt.Fprintf(&b, "%3d. %s %s\n", i+1, taskName(doc, id), Dim(ShortID(id)))
	}
	return b.String()
}

// FormatSprints renders sprints with their status and task counts.
func FormatSprints(doc *domain.Document) string {
	if len(doc.Sprints) == 0 {
		return Dim("No sprints yet.") + "\n"
	}
	rows := make([][]string, 0, len(doc.Sprints))
	for _, s := range doc.Sprints {
		rows = append(rows, []string{
			Dim(ShortID(s.ID)),
			s.Name,
			SprintPill(s.Status),
			s.StartDate,
			s.EndDate,
			fmt.Sprintf("%d", len(doc.TasksInSprint(s.ID))),
			s.Goal,
		})
	}
	return RenderTable([]string{"ID", "NAME", "STATUS", "START", "END", "TASKS", "GOAL"}, rows)
}

func orderedColumns(doc *domain.Document) []domain.WorkflowColumn {
	cols := append([]domain.WorkflowColumn(nil), doc.Workflow...)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })
	return cols
}

func points(p *int) string {
	if p == nil {
		return Dim("-")
	}
	return fmt.Sprintf("%d", *p)
}

func sprintName(doc *domain.Document, id *string) string {
	if id == nil {
		return Dim("backlog")
	}
	if s := doc.Sprint(*id); s != nil {
		return s.Name
	}
	return ShortID(*id)
}

// weeks compresses week lists into ranges: [1 2 3 5] → "1-3,5".
func weeks(ws []int) string {
	if len(ws) == 0 {
		return Dim("-")
	}
	sorted := append([]int(nil), ws...)
	sort.Ints(sorted)
	var parts []string
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if start == prev {
			parts = append(parts, fmt.Sprintf("%d", start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, w := range sorted[1:] {
		if w == prev+1 {
			prev = w
			continue
		}
		flush()
		start, prev = w, w
	}
	flush()
	return strings.Join(parts, ",")
}
