package migrate

import (
	"fmt"
	"time"

	"github.com/alexanderramin/ganttboard/internal/board"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/timelog"
)

var memberColors = []string{"#fb4934", "#b8bb26", "#fabd2f", "#83a598", "#d3869b", "#8ec07c", "#fe8019"}

func tasksOf(d Raw) []map[string]any {
	return objects(d["tasks"])
}

func projectStart(d Raw) (time.Time, bool) {
	p, _ := asMap(d["project"])
	start, err := domain.ParseDate(asString(p["startDate"], ""))
	return start, err == nil
}

// toV2 establishes the version-1 base (project, categories, task basics) and
// introduces the board: the default workflow and a placement derived from
// each task's progress.
func toV2(d Raw) Raw {
	p, _ := asMap(d["project"])
	if p == nil {
		p = map[string]any{}
	}
	weeks, ok := asInt(p["totalWeeks"])
	if !ok || weeks < 1 {
		weeks = 12
	}
	d["project"] = map[string]any{
		"title":      asString(p["title"], "Untitled Project"),
		"startDate":  asString(p["startDate"], ""),
		"endDate":    asString(p["endDate"], ""),
		"totalWeeks": weeks,
	}

	cats := map[string]any{}
	if m, ok := asMap(d["categories"]); ok {
		for name, color := range m {
			cats[name] = asString(color, "#928374")
		}
	}
	d["categories"] = cats

	tasks := tasksOf(d)
	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		id := asString(t["id"], "")
		for n := i + 1; id == "" || seen[id]; n++ {
			id = fmt.Sprintf("task-%d", n)
		}
		seen[id] = true
		t["id"] = id
		// Early exports used "title" for the task name.
		t["name"] = asString(t["name"], asString(t["title"], id))
		delete(t, "title")
		t["category"] = asString(t["category"], "")

		planned := weekList(t["planned"])
		reality := weekList(t["reality"])
		t["planned"] = intsToAny(planned)
		t["reality"] = intsToAny(reality)

		var pos any
		if b, ok := asMap(t["board"]); ok {
			pos = b["position"]
		}
		t["board"] = map[string]any{
			"columnId": board.DeriveColumnFromProgress(planned, reality),
			"position": pos,
		}
	}
	boards := make([]map[string]any, len(tasks))
	for i, t := range tasks {
		boards[i] = t["board"].(map[string]any)
	}
	densePositions(boards, "position", func(b map[string]any) string {
		return b["columnId"].(string)
	})
	d["tasks"] = objectList(tasks)

	var workflow []any
	for _, c := range domain.DefaultWorkflow() {
		workflow = append(workflow, map[string]any{
			"id": c.ID, "name": c.Name, "color": c.Color, "position": c.Position,
		})
	}
	d["workflow"] = workflow
	return d
}

// toV3 normalizes team members, which legacy exports store either as plain
// names or as objects, and adds assignee and priority to tasks.
func toV3(d Raw) Raw {
	list, _ := d["team"].([]any)
	team := make([]any, 0, len(list))
	for i, el := range list {
		color := memberColors[i%len(memberColors)]
		switch m := el.(type) {
		case string:
			if m == "" {
				continue
			}
			team = append(team, map[string]any{
				"id": fmt.Sprintf("member-%d", i+1), "name": m, "color": color,
			})
		case map[string]any:
			name := asString(m["name"], "")
			if name == "" {
				continue
			}
			team = append(team, map[string]any{
				"id":    asString(m["id"], fmt.Sprintf("member-%d", i+1)),
				"name":  name,
				"color": asString(m["color"], color),
			})
		}
	}
	d["team"] = team

	for _, t := range tasksOf(d) {
		t["assignee"] = asString(t["assignee"], "")
		prio := domain.Priority(asString(t["priority"], ""))
		if !domain.ValidPriorities[prio] {
			prio = domain.PriorityMedium
		}
		t["priority"] = string(prio)
	}
	return d
}

// toV4 introduces task dependencies. Only string IDs of existing tasks other
// than the task itself are kept. Cycles in legacy data are broken later by
// the dependency validator.
func toV4(d Raw) Raw {
	tasks := tasksOf(d)
	live := taskIDs(tasks)
	for _, t := range tasks {
		t["dependencies"] = liveRefs(t["dependencies"], live, asString(t["id"], ""))
	}
	return d
}

func taskIDs(tasks []map[string]any) map[string]bool {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[asString(t["id"], "")] = true
	}
	return ids
}

func liveRefs(v any, live map[string]bool, self string) []any {
	refs := stringSet(v)
	out := refs[:0]
	for _, r := range refs {
		if id := r.(string); live[id] && id != self {
			out = append(out, id)
		}
	}
	return out
}

// toV5 introduces milestones.
func toV5(d Raw) Raw {
	tasks := tasksOf(d)
	live := taskIDs(tasks)
	for _, t := range tasks {
		t["isMilestone"] = asBool(t["isMilestone"], false)
		deadline := optString(t["milestoneDeadline"])
		if s, ok := deadline.(string); ok {
			if _, err := domain.ParseDate(s); err != nil {
				deadline = nil
			}
		}
		t["milestoneDeadline"] = deadline
		t["milestoneDependencies"] = liveRefs(t["milestoneDependencies"], live, asString(t["id"], ""))
	}
	return d
}

// toV6 introduces week-numbered sprints, story points and backlog ordering.
func toV6(d Raw) Raw {
	sprints := objects(d["sprints"])
	ids := make(map[string]bool, len(sprints))
	for i, s := range sprints {
		id := asString(s["id"], "")
		if id == "" || ids[id] {
			id = fmt.Sprintf("sprint-%d", i+1)
		}
		ids[id] = true
		s["id"] = id
		s["name"] = asString(s["name"], fmt.Sprintf("Sprint %d", i+1))
		s["goal"] = asString(s["goal"], "")
		status := domain.SprintStatus(asString(s["status"], ""))
		if !domain.ValidSprintStatuses[status] {
			status = domain.SprintPlanning
		}
		s["status"] = string(status)
		start, ok := asInt(s["startWeek"])
		if !ok || start < 1 {
			start = 1
		}
		end, ok := asInt(s["endWeek"])
		if !ok || end < start {
			end = start
		}
		s["startWeek"] = start
		s["endWeek"] = end
	}
	d["sprints"] = objectList(sprints)

	tasks := tasksOf(d)
	for _, t := range tasks {
		if pts, ok := asInt(t["storyPoints"]); ok && pts >= 0 {
			t["storyPoints"] = pts
		} else {
			t["storyPoints"] = nil
		}
		sid := optString(t["sprintId"])
		if s, ok := sid.(string); ok && !ids[s] {
			sid = nil
		}
		t["sprintId"] = sid
	}
	densePositions(tasks, "backlogPosition", func(t map[string]any) string {
		return asString(t["sprintId"], "")
	})
	return d
}

// toV7 introduces the time log. Durations are recomputed from the clock
// times when they parse, else any stored duration is kept.
func toV7(d Raw) Raw {
	entries := objects(d["timeEntries"])
	for i, e := range entries {
		e["id"] = asString(e["id"], fmt.Sprintf("entry-%d", i+1))
		e["taskId"] = optString(e["taskId"])
		e["date"] = asString(e["date"], "")
		e["startTime"] = asString(e["startTime"], "")
		e["endTime"] = asString(e["endTime"], "")
		minutes, err := timelog.DurationMinutes(e["startTime"].(string), e["endTime"].(string))
		if err != nil {
			stored, ok := asInt(e["durationMinutes"])
			if !ok || stored < 0 {
				stored = 0
			}
			minutes = stored
		}
		e["durationMinutes"] = minutes
		e["billable"] = asBool(e["billable"], false)
	}
	d["timeEntries"] = objectList(entries)
	return d
}

// toV8 introduces stored per-sprint burndown snapshots. The snapshots are
// superseded by derivation from completion stamps and dropped again in v10.
func toV8(d Raw) Raw {
	for _, s := range objects(d["sprints"]) {
		if _, ok := s["burndown"].([]any); !ok {
			s["burndown"] = []any{}
		}
	}
	return d
}

// toV9 introduces completedAt. Done tasks without a usable stamp are
// backfilled with the end of the last week worked (or planned); other tasks
// have none.
func toV9(d Raw) Raw {
	start, startOK := projectStart(d)
	for _, t := range tasksOf(d) {
		b, _ := asMap(t["board"])
		if asString(b["columnId"], "") != domain.ColumnDone {
			t["completedAt"] = nil
			continue
		}
		if s, ok := t["completedAt"].(string); ok {
			if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
				continue
			}
		}
		t["completedAt"] = nil
		if !startOK {
			continue
		}
		last := lastWeek(weekList(t["reality"]))
		if last == 0 {
			last = lastWeek(weekList(t["planned"]))
		}
		if last > 0 {
			t["completedAt"] = domain.EndOfDay(domain.WeekEnd(start, last)).Format(time.RFC3339Nano)
		}
	}
	return d
}

func lastWeek(weeks []int) int {
	if len(weeks) == 0 {
		return 0
	}
	return weeks[len(weeks)-1]
}

// toV10 makes calendar dates authoritative for sprints. Dates are computed
// from the week numbers through the project start unless already present;
// week fields and burndown snapshots are removed.
func toV10(d Raw) Raw {
	start, startOK := projectStart(d)
	for _, s := range objects(d["sprints"]) {
		startWeek, _ := asInt(s["startWeek"])
		endWeek, _ := asInt(s["endWeek"])
		s["startDate"] = sprintDate(s["startDate"], start, startOK, (startWeek-1)*7)
		s["endDate"] = sprintDate(s["endDate"], start, startOK, endWeek*7-1)
		delete(s, "startWeek")
		delete(s, "endWeek")
		delete(s, "burndown")
	}
	return d
}

func sprintDate(existing any, projStart time.Time, ok bool, offsetDays int) string {
	if s, isStr := existing.(string); isStr {
		if _, err := domain.ParseDate(s); err == nil {
			return s
		}
	}
	if !ok || offsetDays < 0 {
		return ""
	}
	return domain.FormatDate(projStart.AddDate(0, 0, offsetDays))
}

// toV11 introduces retrospectives.
func toV11(d Raw) Raw {
	sprints := make(map[string]bool)
	for _, s := range objects(d["sprints"]) {
		sprints[asString(s["id"], "")] = true
	}
	retros := objects(d["retrospectives"])
	for i, r := range retros {
		r["id"] = asString(r["id"], fmt.Sprintf("retro-%d", i+1))
		sid := optString(r["sprintId"])
		if s, ok := sid.(string); ok && !sprints[s] {
			sid = nil
		}
		r["sprintId"] = sid
		r["title"] = asString(r["title"], "")

		items := objects(r["items"])
		for j, it := range items {
			it["id"] = asString(it["id"], fmt.Sprintf("item-%d-%d", i+1, j+1))
			col := asString(it["column"], "")
			if !domain.ValidRetroColumns[col] {
				col = domain.RetroWentWell
			}
			it["column"] = col
			it["text"] = asString(it["text"], "")
			votes, ok := asInt(it["votes"])
			if !ok || votes < 0 {
				votes = 0
			}
			it["votes"] = votes
			it["groupId"] = optString(it["groupId"])
		}
		densePositions(items, "position", func(it map[string]any) string {
			return it["column"].(string)
		})
		r["items"] = objectList(items)
	}
	d["retrospectives"] = objectList(retros)
	return d
}

// toV12 adds manual milestone overrides and flattens retrospective groups to
// two levels by re-pointing every grouped item at its top-level ancestor.
func toV12(d Raw) Raw {
	for _, t := range tasksOf(d) {
		status := domain.MilestoneStatus(asString(t["milestoneStatusOverride"], ""))
		if domain.ValidMilestoneStatuses[status] {
			t["milestoneStatusOverride"] = string(status)
		} else {
			t["milestoneStatusOverride"] = nil
		}
		if p, ok := asFloat(t["milestoneProgressOverride"]); ok && p >= 0 && p <= 100 {
			t["milestoneProgressOverride"] = p
		} else {
			t["milestoneProgressOverride"] = nil
		}
	}

	for _, r := range objects(d["retrospectives"]) {
		items := objects(r["items"])
		parent := make(map[string]string, len(items))
		for _, it := range items {
			if g, ok := it["groupId"].(string); ok {
				parent[asString(it["id"], "")] = g
			}
		}
		known := make(map[string]bool, len(items))
		for _, it := range items {
			known[asString(it["id"], "")] = true
		}
		for _, it := range items {
			id := asString(it["id"], "")
			if _, grouped := parent[id]; !grouped {
				continue
			}
			it["groupId"] = rootOf(id, parent, known)
		}
	}
	return d
}

// rootOf follows group links from id to the top-level item. Dangling links
// and loops detach the item (nil).
func rootOf(id string, parent map[string]string, known map[string]bool) any {
	seen := map[string]bool{id: true}
	cur := id
	for {
		next, ok := parent[cur]
		if !ok {
			break
		}
		if !known[next] || seen[next] {
			return nil
		}
		seen[next] = true
		cur = next
	}
	if cur == id {
		return nil
	}
	return cur
}
