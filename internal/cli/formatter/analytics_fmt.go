package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttboard/internal/analytics"
	"github.com/alexanderramin/ganttboard/internal/domain"
)

// FormatSummary renders the project status overview.
func FormatSummary(s analytics.Summary, doc *domain.Document) string {
	var b strings.Builder
	b.WriteString(Header(s.Title))
	b.WriteString("\n")

	pct := 0.0
	if s.Tasks > 0 {
		pct = float64(s.Done) / float64(s.Tasks) * 100
	}
	fmt.Fprintf(&b, "Week %d of %d   %s   %d/%d tasks done\n",
		s.CurrentWeek, s.TotalWeeks, RenderProgress(pct, 20), s.Done, s.Tasks)
	fmt.Fprintf(&b, "Points: %d (%d estimated, %d unestimated)\n",
		s.Points.Total, s.Points.Estimated, s.Points.Unestimated)
	if s.ActiveSprint != nil {
		fmt.Fprintf(&b, "Active sprint: %s %s\n", Bold(s.ActiveSprint.Name),
			Dim(s.ActiveSprint.StartDate+" → "+s.ActiveSprint.EndDate))
	}
	b.WriteString("\n")

	rows := make([][]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		rows = append(rows, []string{
			ColumnLabel(doc.Column(c.ColumnID)),
			fmt.Sprintf("%d", c.Tasks),
			fmt.Sprintf("%d", c.Points),
		})
	}
	b.WriteString(RenderTable([]string{"COLUMN", "TASKS", "POINTS"}, rows))

	if len(s.Milestones) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatMilestones(s.Milestones, doc))
	}
	if len(s.Blocked) > 0 {
		b.WriteString("\n")
		b.WriteString(StyleYellow.Render(fmt.Sprintf("Blocked (%d):", len(s.Blocked))))
		b.WriteString("\n")
		for _, id := range s.Blocked {
			fmt.Fprintf(&b, "  %s %s\n", Dim(ShortID(id)), taskName(doc, id))
		}
	}
	return b.String()
}

// FormatMilestones renders one line per milestone.
func FormatMilestones(reports []analytics.MilestoneReport, doc *domain.Document) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		due := Dim("no deadline")
		if r.DaysLeft != nil {
			switch d := *r.DaysLeft; {
			case d < 0:
				due = StyleRed.Render(fmt.Sprintf("%dd overdue", -d))
			case d == 0:
				due = StyleYellow.Render("due today")
			default:
				due = fmt.Sprintf("%dd left", d)
			}
		}
		rows = append(rows, []string{
			taskName(doc, r.MilestoneID),
			MilestoneIndicator(r.Status),
			RenderProgress(r.Progress, 10),
			fmt.Sprintf("%d/%d", r.Completed, r.Total),
			due,
		})
	}
	return RenderTable([]string{"MILESTONE", "STATUS", "PROGRESS", "DEPS", "DUE"}, rows)
}

// FormatMilestone renders the detail view of one milestone.
func FormatMilestone(r analytics.MilestoneReport, doc *domain.Document) string {
	var b strings.Builder
	b.WriteString(Header("Milestone " + taskName(doc, r.MilestoneID)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Status:    %s\n", MilestoneIndicator(r.Status))
	progress := RenderProgress(r.Progress, 20)
	if r.Overridden {
		progress += Dim(" (override)")
	}
	fmt.Fprintf(&b, "Progress:  %s\n", progress)
	fmt.Fprintf(&b, "Expected:  %s\n", RenderProgress(r.Expected, 20))
	fmt.Fprintf(&b, "Completed: %d of %d dependencies\n", r.Completed, r.Total)
	if m := doc.Task(r.MilestoneID); m != nil && m.MilestoneDeadline != nil {
		fmt.Fprintf(&b, "Deadline:  %s\n", *m.MilestoneDeadline)
	}
	return b.String()
}

// FormatPoints renders a sprint's point totals.
func FormatPoints(sprint *domain.Sprint, p analytics.Points) string {
	return fmt.Sprintf("%s: %d points across %d estimated tasks (%d unestimated)\n",
		Bold(sprint.Name), p.Total, p.Estimated, p.Unestimated)
}

// FormatBurndown renders the chart as one row per day with ideal and actual
// remaining work and a bar for the actual value.
func FormatBurndown(chart analytics.BurndownChart, sprint *domain.Sprint) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Burndown %s (%s)", sprint.Name, chart.Unit)))
	b.WriteString("\n")

	rows := make([][]string, 0, len(chart.Days))
	for i, day := range chart.Days {
		actual := chart.Actual[i]
		style := StyleGreen
		if float64(actual) > chart.Ideal[i] {
			style = StyleYellow
		}
		rows = append(rows, []string{
			day,
			fmt.Sprintf("%.1f", chart.Ideal[i]),
			fmt.Sprintf("%d", actual),
			style.Render(Bar(actual, chart.Total, 30)),
		})
	}
	b.WriteString(RenderTable([]string{"DAY", "IDEAL", "REMAINING", ""}, rows))
	return b.String()
}

// FormatVelocity renders committed and completed points per completed sprint.
func FormatVelocity(r analytics.VelocityReport) string {
	if len(r.PerSprint) == 0 {
		return Dim("No completed sprints yet.") + "\n"
	}
	rows := make([][]string, 0, len(r.PerSprint))
	for _, s := range r.PerSprint {
		rows = append(rows, []string{
			s.Name,
			s.EndDate,
			fmt.Sprintf("%d", s.Committed),
			fmt.Sprintf("%d", s.Completed),
		})
	}
	var b strings.Builder
	b.WriteString(RenderTable([]string{"SPRINT", "ENDED", "COMMITTED", "COMPLETED"}, rows))
	fmt.Fprintf(&b, "\nAverage velocity: %s points per sprint\n", Bold(fmt.Sprintf("%.1f", r.Average)))
	return b.String()
}

func taskName(doc *domain.Document, id string) string {
	if t := doc.Task(id); t != nil {
		return t.Name
	}
	return ShortID(id)
}
