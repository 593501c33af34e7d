package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/existflow/todoserver/internal/model"
	"github.com/google/uuid"
)

const todoColumns = `id, uid, title, completed, due_date, description, priority, project_id, expire_at, created_at, updated_at`

func scanTodo(row scanner) (*model.Todo, error) {
	var (
		t                    model.Todo
		dueDate, expireAt    sql.NullString
		description, project sql.NullString
		priority             sql.NullInt64
		createdAt, updatedAt string
	)

	if err := row.Scan(&t.ID, &t.UID, &t.Title, &t.Completed, &dueDate, &description,
		&priority, &project, &expireAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, err
	}
	if t.ExpireAt, err = parseNullTime(expireAt); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	t.Description = stringPtr(description)
	t.Priority = intPtr(priority)
	t.ProjectID = stringPtr(project)

	return &t, nil
}

// ListTodos returns all live todos owned by uid, oldest first
func (db *DB) ListTodos(ctx context.Context, uid string) ([]model.Todo, error) {
	rows, err := db.QueryContext(ctx, db.rebind(`
		SELECT `+todoColumns+`
		FROM todos
		WHERE uid = ? AND (expire_at IS NULL OR expire_at > ?)
		ORDER BY created_at ASC`),
		uid, formatTime(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, nil
}

// CreateTodo inserts a todo. ID and timestamps are filled in when empty.
func (db *DB) CreateTodo(ctx context.Context, t *model.Todo) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = t.CreatedAt

	res, err := db.ExecContext(ctx, db.rebind(`
		INSERT INTO todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.UID, t.Title, t.Completed, nullTime(t.DueDate), nullString(t.Description),
		nullInt(t.Priority), nullString(t.ProjectID), nullTime(t.ExpireAt),
		formatTime(t.CreatedAt), formatTime(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return ErrNotCreated
	}

	return nil
}

// GetTodo returns the todo with id owned by uid. Expired todos are not found.
func (db *DB) GetTodo(ctx context.Context, uid, id string) (*model.Todo, error) {
	row := db.QueryRowContext(ctx, db.rebind(`
		SELECT `+todoColumns+`
		FROM todos
		WHERE id = ? AND uid = ?`),
		id, uid,
	)

	t, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	if t.IsExpired(time.Now()) {
		return nil, ErrNotFound
	}

	return t, nil
}

// UpdateTodo overwrites every mutable field of the stored todo
func (db *DB) UpdateTodo(ctx context.Context, t *model.Todo) error {
	t.UpdatedAt = time.Now().UTC()

	res, err := db.ExecContext(ctx, db.rebind(`
		UPDATE todos
		SET title = ?, completed = ?, due_date = ?, description = ?,
		    priority = ?, project_id = ?, updated_at = ?
		WHERE id = ? AND uid = ?`),
		t.Title, t.Completed, nullTime(t.DueDate), nullString(t.Description),
		nullInt(t.Priority), nullString(t.ProjectID), formatTime(t.UpdatedAt),
		t.ID, t.UID,
	)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteTodo removes the todo with id owned by uid
func (db *DB) DeleteTodo(ctx context.Context, uid, id string) error {
	res, err := db.ExecContext(ctx, db.rebind(`DELETE FROM todos WHERE id = ? AND uid = ?`), id, uid)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// PurgeExpiredTodos deletes todos whose expiration is at or before the given time
func (db *DB) PurgeExpiredTodos(ctx context.Context, before time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, db.rebind(`
		DELETE FROM todos
		WHERE expire_at IS NOT NULL AND expire_at <= ?`),
		formatTime(before),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired todos: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired todos: %w", err)
	}

	return n, nil
}
