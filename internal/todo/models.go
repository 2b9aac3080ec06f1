// Package todo provides todo item persistence and management.
package todo

import (
	"time"

	"github.com/remindful/remindful/internal/reminder"
)

// Todo is a single to-do list item. Sort order is user-controlled and only
// meaningful among incomplete items.
type Todo struct {
	ID        int64
	Title     string
	Completed bool
	Priority  reminder.Priority
	SortOrder int
	CreatedAt time.Time
}

// Update describes a partial update: nil fields are left unchanged.
type Update struct {
	Title     *string
	Completed *bool
	Priority  *reminder.Priority
	SortOrder *int
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Title == nil && u.Completed == nil && u.Priority == nil && u.SortOrder == nil
}

// ReorderItem assigns a new sort order to one todo in a batch reorder.
type ReorderItem struct {
	ID        int64
	SortOrder int
}
