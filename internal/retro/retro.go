// Package retro manages sprint retrospective boards: cards in three columns,
// votes, and one level of grouping.
package retro

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrRetroNotFound = errors.New("retrospective not found")
	ErrItemNotFound  = errors.New("retrospective item not found")
	ErrInvalidColumn = errors.New("invalid retrospective column")
	ErrTextRequired  = errors.New("item text is required")
	ErrNesting       = errors.New("items can only be grouped one level deep")
)

// AddRetrospective creates an empty retrospective, optionally tied to a sprint.
func AddRetrospective(doc *domain.Document, title string, sprintID *string) (domain.Retrospective, error) {
	if sprintID != nil && doc.Sprint(*sprintID) == nil {
		return domain.Retrospective{}, fmt.Errorf("sprint %q not found", *sprintID)
	}
	title = strings.TrimSpace(title)
	if title == "" && sprintID != nil {
		title = doc.Sprint(*sprintID).Name + " retrospective"
	}
	r := domain.Retrospective{
		ID:       uuid.New().String(),
		SprintID: sprintID,
		Title:    title,
		Items:    []domain.RetroItem{},
	}
	doc.Retrospectives = append(doc.Retrospectives, r)
	return r, nil
}

// AddItem appends a card to the end of a column.
func AddItem(doc *domain.Document, retroID, column, text string) (domain.RetroItem, error) {
	r := doc.Retrospective(retroID)
	if r == nil {
		return domain.RetroItem{}, fmt.Errorf("retrospective %q: %w", retroID, ErrRetroNotFound)
	}
	if !domain.ValidRetroColumns[column] {
		return domain.RetroItem{}, fmt.Errorf("%q: %w", column, ErrInvalidColumn)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.RetroItem{}, ErrTextRequired
	}
	it := domain.RetroItem{
		ID:       uuid.New().String(),
		Column:   column,
		Text:     text,
		Position: len(columnItems(r, column)),
	}
	r.Items = append(r.Items, it)
	return it, nil
}

// Vote adds delta votes to an item. Votes never drop below zero.
func Vote(doc *domain.Document, retroID, itemID string, delta int) error {
	it, err := findItem(doc, retroID, itemID)
	if err != nil {
		return err
	}
	it.Votes += delta
	if it.Votes < 0 {
		it.Votes = 0
	}
	return nil
}

// Group places child under parent. A parent cannot itself be grouped, and an
// item that already has children cannot become a child. The child moves to
// the parent's column.
func Group(doc *domain.Document, retroID, parentID, childID string) error {
	r := doc.Retrospective(retroID)
	if r == nil {
		return fmt.Errorf("retrospective %q: %w", retroID, ErrRetroNotFound)
	}
	if parentID == childID {
		return fmt.Errorf("grouping %q under itself: %w", childID, ErrNesting)
	}
	parent := item(r, parentID)
	child := item(r, childID)
	if parent == nil || child == nil {
		return ErrItemNotFound
	}
	if parent.GroupID != nil {
		return fmt.Errorf("%q is already grouped: %w", parentID, ErrNesting)
	}
	for _, it := range r.Items {
		if it.GroupID != nil && *it.GroupID == childID {
			return fmt.Errorf("%q has grouped items: %w", childID, ErrNesting)
		}
	}
	child.GroupID = domain.StringPtr(parentID)
	if child.Column != parent.Column {
		child.Column = parent.Column
		child.Position = len(r.Items)
	}
	renormalize(r)
	return nil
}

// Ungroup detaches an item from its parent.
func Ungroup(doc *domain.Document, retroID, itemID string) error {
	it, err := findItem(doc, retroID, itemID)
	if err != nil {
		return err
	}
	it.GroupID = nil
	return nil
}

// RemoveItem deletes an item. Its grouped children are detached and stay on
// the board.
func RemoveItem(doc *domain.Document, retroID, itemID string) error {
	r := doc.Retrospective(retroID)
	if r == nil {
		return fmt.Errorf("retrospective %q: %w", retroID, ErrRetroNotFound)
	}
	idx := -1
	for i := range r.Items {
		if r.Items[i].ID == itemID {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("item %q: %w", itemID, ErrItemNotFound)
	}
	r.Items = append(r.Items[:idx], r.Items[idx+1:]...)
	for i := range r.Items {
		if g := r.Items[i].GroupID; g != nil && *g == itemID {
			r.Items[i].GroupID = nil
		}
	}
	renormalize(r)
	return nil
}

// ColumnItems returns the items of one column in position order.
func ColumnItems(r *domain.Retrospective, column string) []domain.RetroItem {
	var out []domain.RetroItem
	for _, i := range columnItems(r, column) {
		out = append(out, r.Items[i])
	}
	return out
}

func findItem(doc *domain.Document, retroID, itemID string) (*domain.RetroItem, error) {
	r := doc.Retrospective(retroID)
	if r == nil {
		return nil, fmt.Errorf("retrospective %q: %w", retroID, ErrRetroNotFound)
	}
	it := item(r, itemID)
	if it == nil {
		return nil, fmt.Errorf("item %q: %w", itemID, ErrItemNotFound)
	}
	return it, nil
}

func item(r *domain.Retrospective, id string) *domain.RetroItem {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return &r.Items[i]
		}
	}
	return nil
}

// columnItems returns indexes into r.Items for one column, by position.
func columnItems(r *domain.Retrospective, column string) []int {
	var idx []int
	for i := range r.Items {
		if r.Items[i].Column == column {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return r.Items[idx[a]].Position < r.Items[idx[b]].Position
	})
	return idx
}

// renormalize rewrites positions densely per column.
func renormalize(r *domain.Retrospective) {
	columns := make(map[string]bool)
	for _, it := range r.Items {
		columns[it.Column] = true
	}
	for col := range columns {
		for pos, i := range columnItems(r, col) {
			r.Items[i].Position = pos
		}
	}
}
