package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/todoserver/internal/model"
	"github.com/google/uuid"
)

const projectColumns = `id, uid, name, todo_list, created_at, updated_at`

func scanProject(row scanner) (*model.Project, error) {
	var (
		p                    model.Project
		todoList             string
		createdAt, updatedAt string
	)

	if err := row.Scan(&p.ID, &p.UID, &p.Name, &todoList, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(todoList), &p.TodoList); err != nil {
		return nil, fmt.Errorf("invalid todo list for project %s: %w", p.ID, err)
	}
	if p.TodoList == nil {
		p.TodoList = []string{}
	}

	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &p, nil
}

func encodeTodoList(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode todo list: %w", err)
	}
	return string(data), nil
}

// CreateProject inserts a project. ID and timestamps are filled in when empty.
func (db *DB) CreateProject(ctx context.Context, p *model.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	p.UpdatedAt = p.CreatedAt

	todoList, err := encodeTodoList(p.TodoList)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, db.rebind(`
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`),
		p.ID, p.UID, p.Name, todoList, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// ListProjects returns all projects owned by uid, oldest first
func (db *DB) ListProjects(ctx context.Context, uid string) ([]model.Project, error) {
	rows, err := db.QueryContext(ctx, db.rebind(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE uid = ?
		ORDER BY created_at ASC`),
		uid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// GetProject returns the project with id owned by uid
func (db *DB) GetProject(ctx context.Context, uid, id string) (*model.Project, error) {
	row := db.QueryRowContext(ctx, db.rebind(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = ? AND uid = ?`),
		id, uid,
	)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

// AddTodoToProject adds todoID to the project's todo list if absent.
// A project that does not exist is left alone.
func (db *DB) AddTodoToProject(ctx context.Context, uid, projectID, todoID string) error {
	return db.editTodoList(ctx, uid, projectID, func(p *model.Project) bool {
		return p.AddTodo(todoID)
	})
}

// RemoveTodoFromProject filters todoID out of the project's todo list.
// A project that does not exist is left alone.
func (db *DB) RemoveTodoFromProject(ctx context.Context, uid, projectID, todoID string) error {
	return db.editTodoList(ctx, uid, projectID, func(p *model.Project) bool {
		return p.RemoveTodo(todoID)
	})
}

// editTodoList rewrites one project's todo list inside a transaction
func (db *DB) editTodoList(ctx context.Context, uid, projectID string, edit func(*model.Project) bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, db.rebind(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = ? AND uid = ?`+db.forUpdate()),
		projectID, uid,
	)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	if !edit(p) {
		return nil
	}

	todoList, err := encodeTodoList(p.TodoList)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, db.rebind(`
		UPDATE projects SET todo_list = ?, updated_at = ? WHERE id = ?`),
		todoList, formatTime(time.Now()), p.ID,
	); err != nil {
		return fmt.Errorf("failed to update project todo list: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit todo list: %w", err)
	}

	return nil
}
