package board

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrProtectedColumn = errors.New("column is protected")
	ErrColumnName      = errors.New("column name is required")
)

// AddColumn inserts a custom column directly after afterID (or at the end of
// the board when afterID is empty).
func AddColumn(doc *domain.Document, name, color, afterID string) (domain.WorkflowColumn, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.WorkflowColumn{}, ErrColumnName
	}
	cols := orderedColumns(doc)
	insertAt := len(cols)
	if afterID != "" {
		insertAt = -1
		for i, c := range cols {
			if c.ID == afterID {
				insertAt = i + 1
				break
			}
		}
		if insertAt < 0 {
			return domain.WorkflowColumn{}, fmt.Errorf("column %q: %w", afterID, ErrColumnNotFound)
		}
	}

	col := domain.WorkflowColumn{
		ID:    "col-" + uuid.New().String()[:8],
		Name:  name,
		Color: domain.CoalesceStr(color, "#928374"),
	}
	cols = append(cols[:insertAt], append([]domain.WorkflowColumn{col}, cols[insertAt:]...)...)
	for i := range cols {
		cols[i].Position = i
	}
	doc.Workflow = cols
	col.Position = insertAt
	return col, nil
}

// RenameColumn changes a column's display name and, when non-empty, color.
func RenameColumn(doc *domain.Document, id, name, color string) error {
	c := doc.Column(id)
	if c == nil {
		return fmt.Errorf("column %q: %w", id, ErrColumnNotFound)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrColumnName
	}
	c.Name = name
	if color != "" {
		c.Color = color
	}
	return nil
}

// RemoveColumn deletes a custom column. Tasks it held are re-derived from
// their progress and appended to the resulting columns. Protected columns are
// rejected without mutation.
func RemoveColumn(doc *domain.Document, id string) error {
	if domain.ProtectedColumns[id] {
		return fmt.Errorf("%q: %w", id, ErrProtectedColumn)
	}
	if doc.Column(id) == nil {
		return fmt.Errorf("column %q: %w", id, ErrColumnNotFound)
	}

	for _, taskID := range ColumnTasks(doc, id) {
		t := doc.Task(taskID)
		placeAtEnd(doc, t, DeriveColumn(t))
	}

	cols := make([]domain.WorkflowColumn, 0, len(doc.Workflow))
	for _, c := range orderedColumns(doc) {
		if c.ID != id {
			c.Position = len(cols)
			cols = append(cols, c)
		}
	}
	doc.Workflow = cols
	Renormalize(doc)
	return nil
}

// ReorderColumn moves a column to position, clamped to the board width.
func ReorderColumn(doc *domain.Document, id string, position int) error {
	cols := orderedColumns(doc)
	from := -1
	for i, c := range cols {
		if c.ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return fmt.Errorf("column %q: %w", id, ErrColumnNotFound)
	}
	col := cols[from]
	cols = append(cols[:from], cols[from+1:]...)
	if position < 0 {
		position = 0
	}
	if position > len(cols) {
		position = len(cols)
	}
	cols = append(cols[:position], append([]domain.WorkflowColumn{col}, cols[position:]...)...)
	for i := range cols {
		cols[i].Position = i
	}
	doc.Workflow = cols
	return nil
}

// orderedColumns returns a copy of the workflow sorted by position.
func orderedColumns(doc *domain.Document) []domain.WorkflowColumn {
	cols := append([]domain.WorkflowColumn(nil), doc.Workflow...)
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].Position < cols[j].Position })
	return cols
}
