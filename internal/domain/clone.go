package domain

// Clone returns a deep copy of the document. Mutations on the copy never
// reach the original.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Team = cloneSlice(d.Team)
	if d.Categories != nil {
		out.Categories = make(map[string]string, len(d.Categories))
		for k, v := range d.Categories {
			out.Categories[k] = v
		}
	}
	out.Workflow = cloneSlice(d.Workflow)
	out.Sprints = cloneSlice(d.Sprints)

	out.TimeEntries = cloneSlice(d.TimeEntries)
	for i := range out.TimeEntries {
		out.TimeEntries[i].TaskID = cloneStringPtr(out.TimeEntries[i].TaskID)
	}

	out.Tasks = cloneSlice(d.Tasks)
	for i := range out.Tasks {
		out.Tasks[i] = d.Tasks[i].Clone()
	}

	out.Retrospectives = cloneSlice(d.Retrospectives)
	for i := range out.Retrospectives {
		r := &out.Retrospectives[i]
		r.SprintID = cloneStringPtr(r.SprintID)
		r.Items = cloneSlice(r.Items)
		for j := range r.Items {
			r.Items[j].GroupID = cloneStringPtr(r.Items[j].GroupID)
		}
	}
	return &out
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	out.Planned = cloneSlice(t.Planned)
	out.Reality = cloneSlice(t.Reality)
	out.Dependencies = cloneSlice(t.Dependencies)
	out.MilestoneDependencies = cloneSlice(t.MilestoneDependencies)
	out.SprintID = cloneStringPtr(t.SprintID)
	out.MilestoneDeadline = cloneStringPtr(t.MilestoneDeadline)
	if t.StoryPoints != nil {
		v := *t.StoryPoints
		out.StoryPoints = &v
	}
	if t.MilestoneStatusOverride != nil {
		v := *t.MilestoneStatusOverride
		out.MilestoneStatusOverride = &v
	}
	if t.MilestoneProgressOverride != nil {
		v := *t.MilestoneProgressOverride
		out.MilestoneProgressOverride = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		out.CompletedAt = &v
	}
	return out
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// cloneSlice copies s, preserving the nil/empty distinction.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
