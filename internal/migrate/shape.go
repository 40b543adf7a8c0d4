package migrate

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// kind is the JSON type a typed document field decodes from.
type kind int

const (
	kString kind = iota
	kInt
	kBool
	kOptString
	kOptInt
	kOptFloat
	kOptTime
	kInts
	kStrings
)

type shape map[string]kind

// maxSafeInt bounds integers that survive a float64 round trip.
const maxSafeInt = 1 << 53

var (
	projectShape = shape{"title": kString, "startDate": kString, "endDate": kString, "totalWeeks": kInt}
	memberShape  = shape{"id": kString, "name": kString, "color": kString}
	columnShape  = shape{"id": kString, "name": kString, "color": kString, "position": kInt}
	sprintShape  = shape{
		"id": kString, "name": kString, "goal": kString,
		"startDate": kString, "endDate": kString, "status": kString,
	}
	entryShape = shape{
		"id": kString, "taskId": kOptString, "date": kString, "startTime": kString, "endTime": kString,
		"durationMinutes": kInt, "billable": kBool, "note": kString,
	}
	taskShape = shape{
		"id": kString, "name": kString, "category": kString,
		"planned": kInts, "reality": kInts,
		"assignee": kString, "priority": kString, "storyPoints": kOptInt, "sprintId": kOptString,
		"backlogPosition": kInt, "dependencies": kStrings,
		"isMilestone": kBool, "milestoneDeadline": kOptString, "milestoneDependencies": kStrings,
		"milestoneStatusOverride": kOptString, "milestoneProgressOverride": kOptFloat,
		"completedAt": kOptTime,
	}
	placementShape = shape{"columnId": kString, "position": kInt}
	retroShape     = shape{"id": kString, "sprintId": kOptString, "title": kString}
	itemShape      = shape{
		"id": kString, "column": kString, "text": kString,
		"votes": kInt, "groupId": kOptString, "position": kInt,
	}
)

// coerceDocument rewrites every value whose JSON type cannot decode into the
// typed model: numeric strings become numbers, anything else unusable falls
// back to the field's zero value or null. Collections that are not arrays
// become empty and non-object elements are dropped. It returns the number of
// values changed.
func coerceDocument(d Raw) int {
	n := 0
	if p, ok := asMap(d["project"]); ok {
		n += coerce(p, projectShape)
	} else if d["project"] != nil {
		d["project"] = map[string]any{}
		n++
	}

	if cats, ok := asMap(d["categories"]); ok {
		for name, color := range cats {
			if _, ok := color.(string); !ok {
				delete(cats, name)
				n++
			}
		}
	} else if d["categories"] != nil {
		d["categories"] = map[string]any{}
		n++
	}

	n += coerceList(d, "team", memberShape, nil)
	n += coerceList(d, "workflow", columnShape, nil)
	n += coerceList(d, "sprints", sprintShape, nil)
	n += coerceList(d, "timeEntries", entryShape, nil)
	n += coerceList(d, "tasks", taskShape, func(t map[string]any) int {
		if b, ok := asMap(t["board"]); ok {
			return coerce(b, placementShape)
		}
		if t["board"] != nil {
			delete(t, "board")
			return 1
		}
		return 0
	})
	n += coerceList(d, "retrospectives", retroShape, func(r map[string]any) int {
		return coerceList(r, "items", itemShape, nil)
	})
	return n
}

// coerceList coerces each object of the array under key, dropping elements
// that are not objects. nested handles sub-objects of one element.
func coerceList(parent map[string]any, key string, s shape, nested func(map[string]any) int) int {
	v, present := parent[key]
	if !present || v == nil {
		return 0
	}
	list, ok := v.([]any)
	if !ok {
		parent[key] = []any{}
		return 1
	}
	n := 0
	kept := objects(list)
	if len(kept) != len(list) {
		n += len(list) - len(kept)
	}
	for _, m := range kept {
		n += coerce(m, s)
		if nested != nil {
			n += nested(m)
		}
	}
	parent[key] = objectList(kept)
	return n
}

func coerce(m map[string]any, s shape) int {
	n := 0
	for field, k := range s {
		v, present := m[field]
		if !present || v == nil {
			continue
		}
		fixed, changed := coerceValue(v, k)
		if !changed {
			continue
		}
		n++
		if fixed == nil && !nullable(k) {
			delete(m, field)
			continue
		}
		m[field] = fixed
	}
	return n
}

func nullable(k kind) bool {
	switch k {
	case kOptString, kOptInt, kOptFloat, kOptTime:
		return true
	}
	return false
}

// coerceValue returns the replacement for v and whether one was needed. A nil
// replacement means "absent" for plain fields and null for optional ones.
func coerceValue(v any, k kind) (any, bool) {
	switch k {
	case kString, kOptString:
		if _, ok := v.(string); ok {
			return v, false
		}
		return nil, true
	case kInt, kOptInt:
		if f, ok := asFloat(v); ok && math.Abs(f) > maxSafeInt {
			return nil, true
		}
		if _, ok := asInt(v); ok {
			return v, false
		}
		if s, ok := v.(string); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return n, true
			}
		}
		return nil, true
	case kOptFloat:
		if _, ok := asFloat(v); ok {
			return v, false
		}
		if s, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return f, true
			}
		}
		return nil, true
	case kBool:
		if _, ok := v.(bool); ok {
			return v, false
		}
		if s, ok := v.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return b, true
			}
		}
		return nil, true
	case kOptTime:
		if s, ok := v.(string); ok {
			if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return v, false
			}
		}
		return nil, true
	case kInts:
		list, ok := v.([]any)
		if !ok {
			return []any{}, true
		}
		out := make([]any, 0, len(list))
		for _, el := range list {
			if f, ok := asFloat(el); ok && math.Abs(f) > maxSafeInt {
				continue
			}
			if w, ok := asInt(el); ok {
				out = append(out, w)
			}
		}
		return out, len(out) != len(list)
	case kStrings:
		list, ok := v.([]any)
		if !ok {
			return []any{}, true
		}
		out := make([]any, 0, len(list))
		for _, el := range list {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out, len(out) != len(list)
	}
	return v, false
}
