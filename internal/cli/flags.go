package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/ganttboard/internal/analytics"
	"github.com/alexanderramin/ganttboard/internal/domain"
)

var (
	priorityNames  = []string{string(domain.PriorityLow), string(domain.PriorityMedium), string(domain.PriorityHigh), string(domain.PriorityUrgent)}
	unitNames      = []string{string(analytics.UnitPoints), string(analytics.UnitTasks)}
	milestoneNames = []string{
		string(domain.MilestoneNotStarted), string(domain.MilestoneOnTrack), string(domain.MilestoneAtRisk),
		string(domain.MilestoneDelayed), string(domain.MilestoneComplete),
	}
)

// enumValue is a string flag restricted to a fixed set of values, so typos
// fail at parse time instead of inside a mutation.
type enumValue struct {
	value   *string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func (e *enumValue) String() string { return *e.value }

func (e *enumValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(e.allowed, s) {
		return fmt.Errorf("must be one of %s", strings.Join(e.allowed, ", "))
	}
	*e.value = s
	return nil
}

func (e *enumValue) Type() string { return "string" }

func enumFlag(fs *pflag.FlagSet, p *string, name, def, usage string, allowed []string) {
	*p = def
	fs.Var(&enumValue{value: p, allowed: allowed}, name, fmt.Sprintf("%s (%s)", usage, strings.Join(allowed, "|")))
}
