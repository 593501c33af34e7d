package db

import "fmt"

// migrate runs all database migrations. The DDL is shared by sqlite and postgres.
func (db *DB) migrate() error {
	migrations := []string{
		migrationCreateProjects,
		migrationCreateTodos,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

// todo_list stores the project's todo ids as a JSON array
const migrationCreateProjects = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    name TEXT NOT NULL,
    todo_list TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_uid ON projects(uid);
`

const migrationCreateTodos = `
CREATE TABLE IF NOT EXISTS todos (
    id TEXT PRIMARY KEY,
    uid TEXT NOT NULL,
    title TEXT NOT NULL,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    due_date TEXT,
    description TEXT,
    priority INTEGER,
    project_id TEXT,
    expire_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_todos_uid ON todos(uid);
CREATE INDEX IF NOT EXISTS idx_todos_expire ON todos(expire_at);
`
