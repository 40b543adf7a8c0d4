package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

var dateParser = newDateParser()

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// parseDate accepts YYYY-MM-DD or a natural phrase such as "tomorrow" or
// "next friday", resolved against now, and returns YYYY-MM-DD.
func parseDate(input string, now time.Time) (string, error) {
	input = strings.TrimSpace(input)
	if t, err := domain.ParseDate(input); err == nil {
		return domain.FormatDate(t), nil
	}
	if strings.EqualFold(input, "today") {
		return domain.FormatDate(now), nil
	}
	r, err := dateParser.Parse(input, now)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", input, err)
	}
	if r == nil {
		return "", fmt.Errorf("unrecognized date %q (use YYYY-MM-DD or a phrase like \"next friday\")", input)
	}
	return domain.FormatDate(r.Time), nil
}
