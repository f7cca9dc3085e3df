package models

import "time"

// TodoStatus represents the status of a todo
type TodoStatus string

const (
	TodoStatusPending   TodoStatus = "pending"
	TodoStatusCompleted TodoStatus = "completed"
)

// Priority bounds. 1 is the most urgent, 4 the least.
const (
	PriorityHighest = 1
	PriorityLowest  = 4
	PriorityDefault = 3
)

// Todo represents a todo item. Optional fields are pointers without
// omitempty so they serialize as explicit nulls, which the agent driving the
// API relies on. DeletedAt is the soft-delete marker and never leaves the
// server.
type Todo struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	DueDateText *string    `json:"due_date_text"`
	DueDate     *Date      `json:"due_date"`
	Notes       *string    `json:"notes"`
	Priority    int        `json:"priority"`
	Status      TodoStatus `json:"status"`
	GCalEventID *string    `json:"gcal_event_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`
	DeletedAt   *time.Time `json:"-"`
}

// TodoUpdate carries a partial update. Only fields the caller supplied are
// applied; description and priority may never be null, the other four may be
// explicitly cleared.
type TodoUpdate struct {
	Description Optional[string] `json:"description"`
	DueDateText Optional[string] `json:"due_date_text"`
	DueDate     Optional[Date]   `json:"due_date"`
	Notes       Optional[string] `json:"notes"`
	Priority    Optional[int]    `json:"priority"`
	GCalEventID Optional[string] `json:"gcal_event_id"`
}

// Empty reports whether no field was supplied at all.
func (u TodoUpdate) Empty() bool {
	return !u.Description.Set && !u.DueDateText.Set && !u.DueDate.Set &&
		!u.Notes.Set && !u.Priority.Set && !u.GCalEventID.Set
}
