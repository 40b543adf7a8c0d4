package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/timelog"
)

// FormatTimeTotals renders logged time per task and the billable total.
func FormatTimeTotals(totals []timelog.TaskTotal, billable int) string {
	if len(totals) == 0 {
		return Dim("No time logged yet.") + "\n"
	}
	rows := make([][]string, 0, len(totals))
	all := 0
	for _, tt := range totals {
		name := tt.TaskName
		if tt.TaskID == "" {
			name = Dim("(unattributed)")
		} else if name == "" {
			name = Dim(ShortID(tt.TaskID) + " (deleted)")
		}
		rows = append(rows, []string{
			name,
			timelog.FormatMinutes(tt.Minutes),
			timelog.FormatMinutes(tt.BillableMinutes),
			fmt.Sprintf("%d", tt.Entries),
		})
		all += tt.Minutes
	}
	var b strings.Builder
	b.WriteString(RenderTable([]string{"TASK", "TOTAL", "BILLABLE", "ENTRIES"}, rows))
	fmt.Fprintf(&b, "\nTotal %s, billable %s\n", Bold(timelog.FormatMinutes(all)), Bold(timelog.FormatMinutes(billable)))
	return b.String()
}

// FormatBackups lists the backup ring newest first with relative ages.
func FormatBackups(ring []domain.Backup, now time.Time) string {
	if len(ring) == 0 {
		return Dim("No backups yet.") + "\n"
	}
	rows := make([][]string, 0, len(ring))
	for i := len(ring) - 1; i >= 0; i-- {
		bk := ring[i]
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			bk.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			humanize.RelTime(bk.Timestamp, now, "ago", "from now"),
			humanize.Bytes(uint64(len(bk.Document))),
		})
	}
	return RenderTable([]string{"#", "SAVED", "AGE", "SIZE"}, rows)
}
