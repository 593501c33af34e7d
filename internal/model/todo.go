package model

import (
	"time"

	"github.com/google/uuid"
)

// Priority levels for todos
const (
	PriorityUrgent = 1 // Red - Urgent
	PriorityHigh   = 2 // Orange - High
	PriorityMedium = 3 // Yellow - Medium
	PriorityLow    = 4 // Blue - Low
)

// Todo represents a single user-owned todo item.
//
// Nullable fields are pointers; an update replaces all of them, so a field
// omitted from the update request becomes null.
type Todo struct {
	ID          string     `json:"_id"`
	UID         string     `json:"uid"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
	Description *string    `json:"description"`
	Priority    *int       `json:"priority"`
	ProjectID   *string    `json:"projectId"`
	ExpireAt    *time.Time `json:"expireAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTodo creates a todo with a fresh id owned by uid
func NewTodo(uid, title string) *Todo {
	now := time.Now().UTC()
	return &Todo{
		ID:        uuid.New().String(),
		UID:       uid,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProjectRef returns the project id or "" when the todo has no project
func (t *Todo) ProjectRef() string {
	if t.ProjectID == nil {
		return ""
	}
	return *t.ProjectID
}

// IsExpired returns true if the todo carries an expiration that has passed
func (t *Todo) IsExpired(now time.Time) bool {
	return t.ExpireAt != nil && !t.ExpireAt.After(now)
}
