package model

import (
	"time"

	"github.com/google/uuid"
)

// Project groups todos. TodoList holds todo ids as a set; it is a
// back-reference maintained by the todo handlers, not an ownership link.
type Project struct {
	ID        string    `json:"_id"`
	UID       string    `json:"uid"`
	Name      string    `json:"name"`
	TodoList  []string  `json:"todoList"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProject creates an empty project owned by uid
func NewProject(uid, name string) *Project {
	now := time.Now().UTC()
	return &Project{
		ID:        uuid.New().String(),
		UID:       uid,
		Name:      name,
		TodoList:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddTodo inserts todoID unless already present. Reports whether the list changed.
func (p *Project) AddTodo(todoID string) bool {
	for _, id := range p.TodoList {
		if id == todoID {
			return false
		}
	}
	p.TodoList = append(p.TodoList, todoID)
	return true
}

// RemoveTodo filters todoID out of the list. Reports whether the list changed.
func (p *Project) RemoveTodo(todoID string) bool {
	kept := make([]string, 0, len(p.TodoList))
	for _, id := range p.TodoList {
		if id != todoID {
			kept = append(kept, id)
		}
	}
	changed := len(kept) != len(p.TodoList)
	p.TodoList = kept
	return changed
}
